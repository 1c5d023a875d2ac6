package pages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.50 KB", formatFileSize(1536))
	assert.Equal(t, "50.00 MB", formatFileSize(50<<20))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", formatRelativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatRelativeTime(now.Add(-time.Minute), now))
	assert.Equal(t, "3 hours ago", formatRelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", formatRelativeTime(now.Add(-48*time.Hour), now))
	assert.Equal(t, "Feb 1, 2026", formatRelativeTime(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), now))
}
