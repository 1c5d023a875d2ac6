package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Boundary dispute", "Boundary dispute"},
		{"ampersand", "Smith & Sons", "Smith & Sons"},
		{"apostrophe", "O'Brien", "O'Brien"},
		{"quotes", `The "Lakeview" lease`, `The "Lakeview" lease`},
		{"markup stripped", "State v. <b>Doe</b>", "State v. Doe"},
		{"script dropped", "<script>alert(1)</script>Notes", "Notes"},
		{"trimmed", "  spaced out  ", "spaced out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"A & B", "C"}, CleanList([]string{" A & B ", "", "<i></i>", "C"}))
}
