// Package issuestatus represents the workflow status of a maintenance ticket.
package issuestatus

import "fmt"

// The set of statuses that can be used.
var (
	Open       = newStatus("open")
	InProgress = newStatus("in_progress")
	Resolved   = newStatus("resolved")
	Closed     = newStatus("closed")
)

// order ranks the statuses; a ticket only moves forward.
var order = map[string]int{
	"open":        0,
	"in_progress": 1,
	"resolved":    2,
	"closed":      3,
}

// =============================================================================

var statuses = make(map[string]Status)

// Status represents a ticket status in the system.
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

// CanTransitionTo reports whether the ticket may move from s to next.
// Reopening a resolved ticket is allowed, a closed ticket is final.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Equal(Closed) {
		return false
	}

	if s.Equal(Resolved) && next.Equal(Open) {
		return true
	}

	return order[next.value] > order[s.value]
}

// =============================================================================

// Parse parses the string value and returns a status if one exists.
func Parse(value string) (Status, error) {
	status, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid issue status %q", value)
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
