// Package phone represents an optional contact phone number.
package phone

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// An optional leading + followed by 7 to 15 digits, once separators are gone.
var phoneRegEx = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Null represents a phone number that may be absent. Identities rarely carry
// one, so only the nullable form exists.
type Null struct {
	value string
	valid bool
}

// ParseNull normalizes and validates value. The empty string yields an
// absent number.
func ParseNull(value string) (Null, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Null{}, nil
	}

	normalized := separators.Replace(value)
	if !phoneRegEx.MatchString(normalized) {
		return Null{}, fmt.Errorf("invalid phone %q", value)
	}

	return Null{value: normalized, valid: true}, nil
}

// MustParseNull calls ParseNull and panics on error.
func MustParseNull(value string) Null {
	phone, err := ParseNull(value)
	if err != nil {
		panic(err)
	}

	return phone
}

// ToSQLNullString converts a Null value to a sql NullString.
func ToSQLNullString(n Null) sql.NullString {
	return sql.NullString{
		String: n.value,
		Valid:  n.valid,
	}
}

// Valid reports whether a number is present.
func (n Null) Valid() bool {
	return n.valid
}

// String returns the number, or the empty string when absent.
func (n Null) String() string {
	return n.value
}

// Equal provides support for the go-cmp package and testing.
func (n Null) Equal(n2 Null) bool {
	return n.value == n2.value && n.valid == n2.valid
}

// MarshalText provides support for logging and any marshal needs.
func (n Null) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}
