// Package password represents a plain text password before it is hashed.
package password

import (
	"errors"
	"unicode/utf8"
)

// Password length bounds. bcrypt ignores bytes past 72.
const (
	minLength = 8
	maxLength = 72
)

var (
	ErrTooShort = errors.New("password must be at least 8 characters")
	ErrTooLong  = errors.New("password must be at most 72 bytes")
)

// Password represents a password in the system.
type Password struct {
	value string
}

// String returns the value of the password.
func (p Password) String() string {
	return p.value
}

// Equal provides support for the go-cmp package and testing.
func (p Password) Equal(p2 Password) bool {
	return p.value == p2.value
}

// MarshalText never exposes the value.
func (p Password) MarshalText() ([]byte, error) {
	return []byte("********"), nil
}

// =============================================================================

// Parse parses the string value and returns a password if the value complies
// with the rules for a password.
func Parse(value string) (Password, error) {
	if utf8.RuneCountInString(value) < minLength {
		return Password{}, ErrTooShort
	}

	if len(value) > maxLength {
		return Password{}, ErrTooLong
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password if the value
// complies with the rules. If an error occurs the function panics.
func MustParse(value string) Password {
	pass, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return pass
}
