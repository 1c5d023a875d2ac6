package services

import (
	"fmt"
	"strings"
	"unicode"
)

// Password length bounds. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// PasswordProblems lists every rule the password breaks, empty when it is acceptable
func PasswordProblems(password string) []string {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes long", MaxPasswordLength))
	}
	if !strings.ContainsFunc(password, unicode.IsLetter) {
		problems = append(problems, "must contain at least one letter")
	}
	if !strings.ContainsFunc(password, unicode.IsNumber) {
		problems = append(problems, "must contain at least one number")
	}
	return problems
}

// ValidatePassword returns a ValidationError keyed by field when the password is too weak
func ValidatePassword(field, password string) error {
	problems := PasswordProblems(password)
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{
		Message: "password " + problems[0],
		Fields:  map[string][]string{field: problems},
	}
}
