// Package traits holds the immutable trait tables bags are derived from.
//
// The default tables are embedded at build time. A deployment may replace
// them with a YAML file of the same shape, loaded once at startup; after
// that the tables are shared read-only by every request.
package traits

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"loot/internal/bag/models"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables is the complete set of ordered trait lists.
// Slices returned by its methods must not be modified.
type Tables struct {
	Weapons      []string `yaml:"weapons"`
	Chest        []string `yaml:"chest"`
	Head         []string `yaml:"head"`
	Waist        []string `yaml:"waist"`
	Foot         []string `yaml:"foot"`
	Hand         []string `yaml:"hand"`
	Neck         []string `yaml:"neck"`
	Ring         []string `yaml:"ring"`
	Suffixes     []string `yaml:"suffixes"`
	NamePrefixes []string `yaml:"namePrefixes"`
	NameSuffixes []string `yaml:"nameSuffixes"`
}

// Default returns the embedded tables. It panics only if the embedded file
// is malformed, which the package tests rule out.
func Default() *Tables {
	t, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("traits: embedded tables invalid: %v", err))
	}
	return t
}

// Load reads tables from path, or returns the defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read trait tables: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML table document.
func Parse(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode trait tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects empty lists; a modulus over an empty table is undefined.
func (t *Tables) Validate() error {
	lists := map[string][]string{
		"weapons":      t.Weapons,
		"chest":        t.Chest,
		"head":         t.Head,
		"waist":        t.Waist,
		"foot":         t.Foot,
		"hand":         t.Hand,
		"neck":         t.Neck,
		"ring":         t.Ring,
		"suffixes":     t.Suffixes,
		"namePrefixes": t.NamePrefixes,
		"nameSuffixes": t.NameSuffixes,
	}
	var errs []error
	for name, list := range lists {
		if len(list) == 0 {
			errs = append(errs, fmt.Errorf("trait table %q is empty", name))
		}
	}
	return errors.Join(errs...)
}

// For returns the base table of a category, or nil for an unknown one.
func (t *Tables) For(c models.Category) []string {
	switch c {
	case models.CategoryWeapon:
		return t.Weapons
	case models.CategoryChest:
		return t.Chest
	case models.CategoryHead:
		return t.Head
	case models.CategoryWaist:
		return t.Waist
	case models.CategoryFoot:
		return t.Foot
	case models.CategoryHand:
		return t.Hand
	case models.CategoryNeck:
		return t.Neck
	case models.CategoryRing:
		return t.Ring
	default:
		return nil
	}
}
