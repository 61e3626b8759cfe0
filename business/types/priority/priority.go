// Package priority represents the urgency of a maintenance ticket.
package priority

import "fmt"

// The set of priorities that can be used.
var (
	Low    = newPriority("low")
	Medium = newPriority("medium")
	High   = newPriority("high")
	Urgent = newPriority("urgent")
)

var priorities = make(map[string]Priority)

// Priority represents a ticket priority in the system.
type Priority struct {
	value string
}

func newPriority(priority string) Priority {
	p := Priority{priority}
	priorities[priority] = p
	return p
}

// String returns the name of the priority.
func (p Priority) String() string {
	return p.value
}

// Equal provides support for the go-cmp package and testing.
func (p Priority) Equal(p2 Priority) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// Parse parses the string value and returns a priority if one exists. An
// empty value yields Medium.
func Parse(value string) (Priority, error) {
	if value == "" {
		return Medium, nil
	}

	priority, exists := priorities[value]
	if !exists {
		return Priority{}, fmt.Errorf("invalid priority %q", value)
	}

	return priority, nil
}

// MustParse parses the string value and returns a priority if one exists.
// If an error occurs the function panics.
func MustParse(value string) Priority {
	priority, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return priority
}
