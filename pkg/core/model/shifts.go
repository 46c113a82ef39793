package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownShiftCode is returned when a code is not part of the unit's shift catalog
var ErrUnknownShiftCode = errors.New("unknown shift code")

// ShiftCode is a short opaque code such as "D", "E", "N" or "OFF"
type ShiftCode string

// ShiftDefinition describes one shift code of a unit
type ShiftDefinition struct {
	Code              ShiftCode `yaml:"code" validate:"required"`
	Name              string    `yaml:"name" validate:"required"`
	IsRest            bool      `yaml:"isRest"`
	CountsTowardStats bool      `yaml:"countsTowardStats"`
	SortOrder         int       `yaml:"sortOrder"`
}

// ShiftCatalog is the ordered, immutable set of shift definitions of a unit
type ShiftCatalog struct {
	defs     []ShiftDefinition
	byCode   map[ShiftCode]ShiftDefinition
	order    map[ShiftCode]int
	restCode ShiftCode
}

// NewShiftCatalog builds a catalog ordered by SortOrder (ties broken by code).
// At least one rest code is required; the first rest code in order is the primary one.
func NewShiftCatalog(defs []ShiftDefinition) (*ShiftCatalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("shift catalog must not be empty")
	}

	sorted := make([]ShiftDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].Code < sorted[j].Code
	})

	catalog := &ShiftCatalog{
		defs:   sorted,
		byCode: make(map[ShiftCode]ShiftDefinition, len(sorted)),
		order:  make(map[ShiftCode]int, len(sorted)),
	}

	for i, def := range sorted {
		if def.Code == "" {
			return nil, fmt.Errorf("shift definition %d has an empty code", i)
		}
		if _, exists := catalog.byCode[def.Code]; exists {
			return nil, fmt.Errorf("duplicate shift code %q", def.Code)
		}
		catalog.byCode[def.Code] = def
		catalog.order[def.Code] = i
		if def.IsRest && catalog.restCode == "" {
			catalog.restCode = def.Code
		}
	}

	if catalog.restCode == "" {
		return nil, fmt.Errorf("shift catalog must contain a rest code")
	}

	return catalog, nil
}

// Definitions returns the definitions in catalog order
func (c *ShiftCatalog) Definitions() []ShiftDefinition {
	out := make([]ShiftDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition for code
func (c *ShiftCatalog) Lookup(code ShiftCode) (ShiftDefinition, bool) {
	def, ok := c.byCode[code]
	return def, ok
}

// Contains reports whether code is defined
func (c *ShiftCatalog) Contains(code ShiftCode) bool {
	_, ok := c.byCode[code]
	return ok
}

// Validate returns ErrUnknownShiftCode (wrapped) for codes outside the catalog
func (c *ShiftCatalog) Validate(code ShiftCode) error {
	if !c.Contains(code) {
		return fmt.Errorf("%w: %q", ErrUnknownShiftCode, code)
	}
	return nil
}

// IsRest reports whether code means "no shift worked". Unknown codes are not rest codes.
func (c *ShiftCatalog) IsRest(code ShiftCode) bool {
	return c.byCode[code].IsRest
}

// RestCode returns the primary rest code, used for dates without an explicit wish or assignment
func (c *ShiftCatalog) RestCode() ShiftCode {
	return c.restCode
}

// Less orders two codes by catalog position; unknown codes sort last by code
func (c *ShiftCatalog) Less(a, b ShiftCode) bool {
	ia, okA := c.order[a]
	ib, okB := c.order[b]
	switch {
	case okA && okB:
		return ia < ib
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// SortCodes sorts codes in catalog order
func (c *ShiftCatalog) SortCodes(codes []ShiftCode) {
	sort.Slice(codes, func(i, j int) bool {
		return c.Less(codes[i], codes[j])
	})
}

// SortedCodes sorts codes in catalog order and returns them
func (c *ShiftCatalog) SortedCodes(codes []ShiftCode) []ShiftCode {
	c.SortCodes(codes)
	return codes
}

// NightPair holds the two night-type codes (evening and overnight coverage)
// that may not be prioritised together
type NightPair struct {
	Evening   ShiftCode `yaml:"evening" validate:"required"`
	Overnight ShiftCode `yaml:"overnight" validate:"required,nefield=Evening"`
}

// Contains reports whether code is one of the pair
func (p NightPair) Contains(code ShiftCode) bool {
	return code != "" && (code == p.Evening || code == p.Overnight)
}

// Other returns the opposite night code of code
func (p NightPair) Other(code ShiftCode) (ShiftCode, bool) {
	switch code {
	case p.Evening:
		return p.Overnight, true
	case p.Overnight:
		return p.Evening, true
	default:
		return "", false
	}
}

// ValidateAgainst checks that both codes are worked shifts of the catalog
func (p NightPair) ValidateAgainst(catalog *ShiftCatalog) error {
	for _, code := range []ShiftCode{p.Evening, p.Overnight} {
		if err := catalog.Validate(code); err != nil {
			return fmt.Errorf("night shift code: %w", err)
		}
		if catalog.IsRest(code) {
			return fmt.Errorf("night shift code %q is a rest code", code)
		}
	}
	if p.Evening == p.Overnight {
		return fmt.Errorf("night shift codes must differ, got %q twice", p.Evening)
	}
	return nil
}
