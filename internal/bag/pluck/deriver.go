package pluck

import (
	"loot/internal/bag/models"
	"loot/internal/bag/traits"
	"loot/pkg/domain"
	dErrors "loot/pkg/domain-errors"
)

// Observer is notified of every derivation. Metrics implement it.
type Observer interface {
	ObserveDerivation(category string, tier int)
}

// Deriver binds a scheme to a set of tables.
type Deriver struct {
	tables   *traits.Tables
	scheme   Scheme
	observer Observer
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithObserver reports each derivation's category and tier.
func WithObserver(o Observer) Option {
	return func(d *Deriver) {
		d.observer = o
	}
}

// New creates a Deriver. A nil tables value selects the embedded defaults.
func New(tables *traits.Tables, scheme Scheme, opts ...Option) *Deriver {
	if tables == nil {
		tables = traits.Default()
	}
	if scheme == "" {
		scheme = SchemeSHA256
	}
	d := &Deriver{tables: tables, scheme: scheme}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scheme reports the configured scheme.
func (d *Deriver) Scheme() Scheme {
	return d.scheme
}

// Derive returns the trait for one category.
func (d *Deriver) Derive(credential domain.Credential, category models.Category) (string, error) {
	base := d.tables.For(category)
	if base == nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown category: "+string(category))
	}
	rand := Rand(d.scheme, credential, category.Salt())
	if d.observer != nil {
		d.observer.ObserveDerivation(string(category), Tier(rand))
	}
	return DeriveTrait(rand, base, d.tables), nil
}

// DeriveAll returns the eight traits in display order.
func (d *Deriver) DeriveAll(credential domain.Credential) (models.Traits, error) {
	out := make(models.Traits, 0, len(models.Categories))
	for _, c := range models.Categories {
		v, err := d.Derive(credential, c)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Trait{Category: c, Value: v})
	}
	return out, nil
}
