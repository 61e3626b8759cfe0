// Package tenancystatus represents the lifecycle status of a ledger entry.
package tenancystatus

import "fmt"

// The set of statuses that can be used.
var (
	Pending  = newStatus("pending")
	Active   = newStatus("active")
	Inactive = newStatus("inactive")
)

// transitions lists the statuses each status may move to.
var transitions = map[string][]Status{
	"pending":  {Active, Inactive},
	"active":   {Inactive},
	"inactive": {},
}

// =============================================================================

var statuses = make(map[string]Status)

// Status represents a ledger status in the system.
type Status struct {
	value string
}

func newStatus(status string) Status {
	s := Status{status}
	statuses[status] = s
	return s
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Status) Equal(s2 Status) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// Live reports whether the entry still occupies the apartment.
func (s Status) Live() bool {
	return s.value != Inactive.value
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s.value] {
		if t.Equal(next) {
			return true
		}
	}

	return false
}

// =============================================================================

// Parse parses the string value and returns a status if one exists.
func Parse(value string) (Status, error) {
	status, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid tenancy status %q", value)
	}

	return status, nil
}

// MustParse parses the string value and returns a status if one exists. If
// an error occurs the function panics.
func MustParse(value string) Status {
	status, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return status
}
