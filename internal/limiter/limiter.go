// Package limiter windows ordered collections: the rows of a menu and the
// tiles of each row.
package limiter

import (
	"errors"
	"fmt"
)

// Config holds the windowing parameters.
type Config struct {
	Limit  int `yaml:"limit" toml:"limit" json:"limit"`    // keep only this many items (0 = unlimited)
	Offset int `yaml:"offset" toml:"offset" json:"offset"` // skip the first N items (0 = no skip)
	Tail   int `yaml:"tail" toml:"tail" json:"tail"`       // keep only the last N items (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting combinations. name prefixes every
// message, e.g. "menu.rows".
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All values must be non-negative
func (c Config) Validate(name string) error {
	var errs []error
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("%s.limit must be non-negative, got %d", name, c.Limit))
	}
	if c.Offset < 0 {
		errs = append(errs, fmt.Errorf("%s.offset must be non-negative, got %d", name, c.Offset))
	}
	if c.Tail < 0 {
		errs = append(errs, fmt.Errorf("%s.tail must be non-negative, got %d", name, c.Tail))
	}
	if c.Limit > 0 && c.Tail > 0 {
		errs = append(errs, fmt.Errorf("%s.limit and %s.tail are mutually exclusive", name, name))
	}
	return errors.Join(errs...)
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Bounds returns the half-open range [start, end) of a collection of
// length n that the window keeps.
func (c Config) Bounds(n int) (start, end int) {
	if c.Tail > 0 {
		return max(n-c.Tail, 0), n
	}
	start = min(max(c.Offset, 0), n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Apply returns the window of items. The result shares the backing array.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}
