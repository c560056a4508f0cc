// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catalog holds the descriptor variants of a module, each applicable
// to a range of host API generations, and picks the one a generation builds
// with.
package catalog

import (
	"fmt"
	"slices"
	"sort"

	"github.com/qiniu/x/errors"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/flags"
	"github.com/goplus/modrules/internal/generation"
)

// Range is the half-open interval [Min, Max) of host versions a variant
// applies to. An empty bound is unbounded. Bounds are generation minimums.
type Range struct {
	Min string
	Max string
}

func (r Range) String() string {
	lo, hi := r.Min, r.Max
	if lo == "" {
		lo = "-inf"
	}
	if hi == "" {
		hi = "+inf"
	}
	return "[" + lo + ", " + hi + ")"
}

// Variant is a named override fragment for one generation range.
type Variant struct {
	ID    string
	Range Range
	descriptor.Fragment
}

// TieBreak says how variants of equal width covering the same generation
// are ordered.
type TieBreak string

const (
	// TieBreakStrict rejects such variants when the catalog is built.
	TieBreakStrict TieBreak = "strict"
	// TieBreakDeclarationOrder prefers the variant declared first.
	TieBreakDeclarationOrder TieBreak = "declaration-order"
)

// ParseTieBreak parses a tie break policy; the empty string is strict.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakStrict:
		return TieBreakStrict, nil
	case TieBreakDeclarationOrder:
		return TieBreakDeclarationOrder, nil
	}
	return "", fmt.Errorf("unknown tie break %q: want %q or %q", s, TieBreakStrict, TieBreakDeclarationOrder)
}

// Options tune catalog validation.
type Options struct {
	Module    string // module name, informational
	TieBreak  TieBreak
	AllowGaps bool // allow generations no variant covers
}

// Catalog is an ordered, validated set of variants. It is read-only after
// New returns and safe for concurrent use.
type Catalog struct {
	opts     Options
	det      *generation.Detector
	base     descriptor.Base
	registry *flags.Registry
	variants []Variant
	slots    []span // slots[i] belongs to variants[i]
}

// span is a variant range in generation slots: generation i covers slot i,
// slot -1 stands for every version below the first generation and slot n
// for every version past the last. A span with an unbounded side is
// infinitely wide, however many generations it covers.
type span struct {
	lo, hi    int
	unbounded bool
}

// narrower reports whether s is strictly narrower than o.
func (s span) narrower(o span) bool {
	if s.unbounded || o.unbounded {
		return !s.unbounded
	}
	return s.hi-s.lo < o.hi-o.lo
}

func (s span) sameWidth(o span) bool {
	return !s.narrower(o) && !o.narrower(s)
}

func (s span) covers(i int) bool {
	return s.lo <= i && i < s.hi
}

func (s span) overlaps(o span) bool {
	return max(s.lo, o.lo, 0) < min(s.hi, o.hi)
}

// InvalidError lists every problem found while building a catalog.
// errors.Is matches any of them.
type InvalidError struct {
	errors.List
}

func (e *InvalidError) Unwrap() []error {
	return e.List
}

// New validates variants against det and returns the catalog. All problems
// are reported together in an *InvalidError.
func New(det *generation.Detector, base descriptor.Base, registry *flags.Registry, variants []Variant, opts Options) (*Catalog, error) {
	if det == nil {
		return nil, fmt.Errorf("catalog: nil generation detector")
	}
	if registry == nil {
		var err error
		if registry, err = flags.WithBuiltins(); err != nil {
			return nil, err
		}
	}
	if opts.TieBreak == "" {
		opts.TieBreak = TieBreakStrict
	}
	c := &Catalog{
		opts:     opts,
		det:      det,
		base:     base,
		registry: registry,
		variants: slices.Clone(variants),
		slots:    make([]span, len(variants)),
	}

	var errs errors.List
	if err := base.Fragment.Validate(); err != nil {
		errs.Add(descriptor.WithContext(err, "", "base"))
	}
	if err := base.Editor.Validate(); err != nil {
		errs.Add(descriptor.WithContext(err, "", "editor"))
	}
	ids := make(map[string]bool, len(variants))
	for i, v := range c.variants {
		if v.ID == "" {
			errs.Add(&descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Detail: fmt.Sprintf("variant #%d has no id", i+1)})
		} else if ids[v.ID] {
			errs.Add(&descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Variant: v.ID, Detail: "duplicate variant id"})
		}
		ids[v.ID] = true
		if err := v.Fragment.Validate(); err != nil {
			errs.Add(descriptor.WithContext(err, "", v.ID))
		}
		s, err := c.span(v)
		if err != nil {
			errs.Add(err)
			s = span{}
		}
		c.slots[i] = s
	}
	if len(errs) == 0 {
		c.checkOverlaps(&errs)
		if !opts.AllowGaps {
			c.checkCoverage(&errs)
		}
	}
	if len(errs) > 0 {
		return nil, &InvalidError{List: errs}
	}
	return c, nil
}

func (c *Catalog) span(v Variant) (span, error) {
	n := c.det.Len()
	s := span{lo: -1, hi: n + 1, unbounded: v.Range.Min == "" || v.Range.Max == ""}
	bound := func(version string) (int, error) {
		i, ok := c.det.IndexOfMin(version)
		if !ok {
			return 0, &descriptor.Error{
				Kind: descriptor.ErrInvalidRange, Variant: v.ID, Entry: version,
				Detail: "bound is not the minimum of a generation",
			}
		}
		return i, nil
	}
	var err error
	if v.Range.Min != "" {
		if s.lo, err = bound(v.Range.Min); err != nil {
			return span{}, err
		}
	}
	if v.Range.Max != "" {
		if s.hi, err = bound(v.Range.Max); err != nil {
			return span{}, err
		}
	}
	if s.lo >= s.hi || !s.overlaps(span{0, n}) {
		return span{}, &descriptor.Error{
			Kind: descriptor.ErrInvalidRange, Variant: v.ID, Entry: v.Range.String(),
			Detail: "range covers no generation",
		}
	}
	return s, nil
}

func (c *Catalog) checkOverlaps(errs *errors.List) {
	if c.opts.TieBreak == TieBreakDeclarationOrder {
		return
	}
	for i := range c.variants {
		for j := i + 1; j < len(c.variants); j++ {
			a, b := c.slots[i], c.slots[j]
			if !a.overlaps(b) || !a.sameWidth(b) {
				continue
			}
			errs.Add(&descriptor.Error{
				Kind:    descriptor.ErrAmbiguousVariants,
				Variant: c.variants[i].ID,
				Entry:   c.variants[j].ID,
				Detail: fmt.Sprintf("%s and %s overlap with the same width",
					c.variants[i].Range, c.variants[j].Range),
			})
		}
	}
}

func (c *Catalog) checkCoverage(errs *errors.List) {
	for i, b := range c.det.Boundaries() {
		if !slices.ContainsFunc(c.slots, func(s span) bool { return s.covers(i) }) {
			errs.Add(&descriptor.Error{Kind: descriptor.ErrUncoveredGeneration, Generation: b.Tag})
		}
	}
}

// Module returns the module name the catalog describes.
func (c *Catalog) Module() string {
	return c.opts.Module
}

// Options returns the options the catalog was built with.
func (c *Catalog) Options() Options {
	return c.opts
}

// Detector returns the generation detector of the catalog.
func (c *Catalog) Detector() *generation.Detector {
	return c.det
}

// Base returns the base descriptor shared by every variant.
func (c *Catalog) Base() descriptor.Base {
	return c.base
}

// Registry returns the feature flags the catalog declares.
func (c *Catalog) Registry() *flags.Registry {
	return c.registry
}

// Variants returns the variants in declaration order.
func (c *Catalog) Variants() []Variant {
	return slices.Clone(c.variants)
}

// Candidates returns the variants applicable to the generation tag,
// narrowest range first. Variants of equal width, including any two with an
// unbounded side, keep declaration order.
func (c *Catalog) Candidates(tag string) []Variant {
	gen, ok := c.det.Index(tag)
	if !ok {
		return nil
	}
	var idx []int
	for i, s := range c.slots {
		if s.covers(gen) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return c.slots[idx[a]].narrower(c.slots[idx[b]])
	})
	out := make([]Variant, len(idx))
	for k, i := range idx {
		out[k] = c.variants[i]
	}
	return out
}

// Select returns the first of Candidates(tag), or fails with
// descriptor.ErrNoMatchingVariant.
func (c *Catalog) Select(tag string) (Variant, error) {
	cands := c.Candidates(tag)
	if len(cands) == 0 {
		return Variant{}, &descriptor.Error{
			Kind: descriptor.ErrNoMatchingVariant, Generation: tag,
			Detail: fmt.Sprintf("catalog %s declares no variant for this generation", c.opts.Module),
		}
	}
	return cands[0], nil
}
