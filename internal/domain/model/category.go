package model

import "fmt"

// Category names one of the per-statistic-type tables on the source site.
type Category string

// Supported categories.
const (
	Standard Category = "standard"
	Shooting Category = "shooting"
	Passing  Category = "passing"
	Misc     Category = "misc"
)

// Categories lists every category in join precedence order. Earlier
// categories win column collisions.
var Categories = []Category{Standard, Shooting, Passing, Misc}

// ContainerID returns the id of the element wrapping the category's table.
func (c Category) ContainerID() string {
	return fmt.Sprintf("div_stats_%s", c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
