// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"errors"
	"strings"
)

// Resolution failures. Every one of them is fatal for the target being
// resolved; none is ever downgraded to a warning.
var (
	ErrUnsupportedVersion    = errors.New("unsupported host version")
	ErrNoMatchingVariant     = errors.New("no matching variant")
	ErrDuplicatePath         = errors.New("duplicate include path")
	ErrConflictingVisibility = errors.New("conflicting dependency visibility")
	ErrInternalInvariant     = errors.New("internal invariant violation")
	ErrInvalidFlag           = errors.New("invalid feature flag value")
)

// Catalog authoring failures, reported when a catalog is loaded.
var (
	ErrInvalidCatalog      = errors.New("invalid catalog")
	ErrInvalidRange        = errors.New("invalid variant range")
	ErrAmbiguousVariants   = errors.New("ambiguous variants")
	ErrUncoveredGeneration = errors.New("generation not covered by any variant")
)

// Error carries one of the sentinel errors above together with the context
// a catalog author needs to fix the data. errors.Is matches the sentinel.
type Error struct {
	Kind       error
	Generation string // generation tag, if known
	Variant    string // variant id, if known
	Entry      string // offending path, module, macro or flag
	Detail     string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entry != "" {
		b.WriteString(" ")
		b.WriteString(quote(e.Entry))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	var ctx []string
	if e.Generation != "" {
		ctx = append(ctx, "generation "+e.Generation)
	}
	if e.Variant != "" {
		ctx = append(ctx, "variant "+e.Variant)
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// WithContext fills in the generation and variant of err when it is an
// *Error that does not name them yet. Other errors are returned unchanged.
func WithContext(err error, generation, variant string) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	cp := *de
	if cp.Generation == "" {
		cp.Generation = generation
	}
	if cp.Variant == "" {
		cp.Variant = variant
	}
	return &cp
}

func quote(s string) string {
	return `"` + s + `"`
}
