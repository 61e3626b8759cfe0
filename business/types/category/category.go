// Package category represents the trade a maintenance ticket belongs to.
package category

import "fmt"

// The set of categories that can be used.
var (
	Plumbing   = newCategory("plumbing")
	Electrical = newCategory("electrical")
	Heating    = newCategory("heating")
	Appliance  = newCategory("appliance")
	Structural = newCategory("structural")
	Pest       = newCategory("pest")
	CommonArea = newCategory("common_area")
	Other      = newCategory("other")
)

var categories = make(map[string]Category)

// Category represents a ticket category in the system.
type Category struct {
	value string
}

func newCategory(category string) Category {
	c := Category{category}
	categories[category] = c
	return c
}

// String returns the name of the category.
func (c Category) String() string {
	return c.value
}

// Equal provides support for the go-cmp package and testing.
func (c Category) Equal(c2 Category) bool {
	return c.value == c2.value
}

// MarshalText provides support for logging and any marshal needs.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// Parse parses the string value and returns a category if one exists. An
// empty value yields Other.
func Parse(value string) (Category, error) {
	if value == "" {
		return Other, nil
	}

	category, exists := categories[value]
	if !exists {
		return Category{}, fmt.Errorf("invalid category %q", value)
	}

	return category, nil
}

// MustParse parses the string value and returns a category if one exists.
// If an error occurs the function panics.
func MustParse(value string) Category {
	category, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return category
}
