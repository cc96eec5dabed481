package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
)

// usernamePattern: строчные латинские буквы, цифры, '_', '.', '-';
// начинается с буквы или цифры
var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// ErrInvalidUsername is wrapped by every username validation error
var ErrInvalidUsername = errors.New("invalid username")

// NormalizeUsername приводит username к каноническому виду.
// Usernames are case-insensitive: "Alice" and "alice" are one account.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername проверяет нормализованный username
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: cannot be empty", ErrInvalidUsername)
	case len(username) < MinUsernameLen:
		return fmt.Errorf("%w: must be at least %d characters long", ErrInvalidUsername, MinUsernameLen)
	case len(username) > MaxUsernameLen:
		return fmt.Errorf("%w: must not exceed %d characters", ErrInvalidUsername, MaxUsernameLen)
	case username != NormalizeUsername(username):
		return fmt.Errorf("%w: must be lowercase without surrounding spaces", ErrInvalidUsername)
	case !usernamePattern.MatchString(username):
		return fmt.Errorf("%w: only a-z, 0-9, '_', '.' and '-' are allowed, starting with a letter or digit", ErrInvalidUsername)
	}
	return nil
}
