package models

import (
	"strings"

	dErrors "loot/pkg/domain-errors"
)

// Category is an equipment slot. Its upper-case name doubles as the salt
// mixed into trait derivation.
type Category string

const (
	CategoryWeapon Category = "WEAPON"
	CategoryChest  Category = "CHEST"
	CategoryHead   Category = "HEAD"
	CategoryWaist  Category = "WAIST"
	CategoryFoot   Category = "FOOT"
	CategoryHand   Category = "HAND"
	CategoryNeck   Category = "NECK"
	CategoryRing   Category = "RING"
)

// Categories lists every slot in display order.
var Categories = []Category{
	CategoryWeapon,
	CategoryChest,
	CategoryHead,
	CategoryWaist,
	CategoryFoot,
	CategoryHand,
	CategoryNeck,
	CategoryRing,
}

// ParseCategory accepts a slot name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown category: "+s)
	}
	return c, nil
}

// IsValid checks if the category is one of the eight slots.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Salt returns the derivation salt for the slot.
func (c Category) Salt() string {
	return string(c)
}

// Trait is one derived slot value.
type Trait struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

// Traits holds the eight derived slot values in display order.
type Traits []Trait

// Get returns the value for c, or "" when the slot is absent.
func (t Traits) Get(c Category) string {
	for _, tr := range t {
		if tr.Category == c {
			return tr.Value
		}
	}
	return ""
}

// Values returns trait strings in display order.
func (t Traits) Values() []string {
	out := make([]string, len(t))
	for i, tr := range t {
		out[i] = tr.Value
	}
	return out
}
