// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve composes the base descriptor of a module, the variant of
// the detected host generation and the effects of the feature flags into one
// resolved descriptor.
package resolve

import (
	"errors"
	"log/slog"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/catalog"
	"github.com/goplus/modrules/internal/flags"
)

// Resolve resolves the descriptor of one build target.
//
// Layers are merged base, variant, enabled flags, then the editor fragment
// for editor builds. Paths keep that order. Dependencies keep the most
// restrictive visibility. Definitions and settings of later layers override
// earlier ones. Flag definitions, and the settings of flags the caller set,
// are applied last of all.
//
// Nothing is returned on failure. Detection and variant selection run
// before any composition.
func Resolve(host descriptor.HostEnvironment, set flags.Set, base descriptor.Base, cat *catalog.Catalog) (*descriptor.Resolved, error) {
	gen, err := cat.Detector().Detect(host.Version)
	if err != nil {
		return nil, err
	}
	variant, err := cat.Select(gen.Tag)
	if err != nil {
		return nil, err
	}
	eff, err := cat.Registry().Apply(set)
	if err != nil {
		return nil, descriptor.WithContext(err, gen.Tag, variant.ID)
	}

	layers := []layer{
		{"base", base.Fragment},
		{"variant " + variant.ID, variant.Fragment},
	}
	for _, c := range eff.Contributions() {
		layers = append(layers, layer{"flag " + c.Flag, c.Fragment})
	}
	if host.Kind == descriptor.Editor {
		layers = append(layers, layer{"editor", descriptor.Fragment{Deps: base.Editor}})
	}

	r := &descriptor.Resolved{
		Generation:  gen.Tag,
		Variant:     variant.ID,
		Definitions: descriptor.DefinitionSet{},
	}
	for _, l := range layers {
		if err = merge(r, l); err != nil {
			return nil, descriptor.WithContext(err, gen.Tag, variant.ID)
		}
	}
	r.Definitions = r.Definitions.Override(eff.Definitions())
	if r.Settings, err = eff.ApplySettings(r.Settings); err != nil {
		return nil, descriptor.WithContext(err, gen.Tag, variant.ID)
	}
	return r, nil
}

type layer struct {
	name string
	descriptor.Fragment
}

// merge applies l on top of r. l must be valid on its own.
func merge(r *descriptor.Resolved, l layer) error {
	if err := l.Validate(); err != nil {
		return l.wrap(err)
	}
	paths, err := r.Paths.Merge(l.Paths)
	if err != nil {
		return l.wrap(err)
	}
	r.Paths = paths
	r.Deps = r.Deps.Merge(l.Deps)
	r.Definitions = r.Definitions.Override(l.Definitions)
	r.Settings = r.Settings.Override(l.Settings)
	return nil
}

// wrap names the layer in errors that do not explain themselves.
func (l layer) wrap(err error) error {
	var de *descriptor.Error
	if errors.As(err, &de) && de.Detail == "" {
		cp := *de
		cp.Detail = "introduced by " + l.name
		return &cp
	}
	return err
}

// -----------------------------------------------------------------------------

// Resolver resolves build targets against one catalog. It is safe for
// concurrent use.
type Resolver struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger resolutions are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New returns a Resolver for cat.
func New(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{cat: cat, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog r resolves against.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.cat
}

// Resolve resolves host with the flags in set against the catalog and its
// own base descriptor.
func (r *Resolver) Resolve(host descriptor.HostEnvironment, set flags.Set) (*descriptor.Resolved, error) {
	logger := r.logger.With("module", r.cat.Module(), "version", host.Version, "kind", host.Kind.String())
	if eff, err := r.cat.Registry().Apply(set); err == nil {
		for _, name := range eff.Ignored() {
			logger.Debug("ignoring unknown feature flag", "flag", name)
		}
	}
	res, err := Resolve(host, set, r.cat.Base(), r.cat)
	if err != nil {
		logger.Error("resolution failed", "error", err)
		return nil, err
	}
	logger.Debug("resolved descriptor",
		"generation", res.Generation,
		"variant", res.Variant,
		"paths", len(res.Paths.Public)+len(res.Paths.Private),
		"modules", res.Deps.Len(),
		"definitions", len(res.Definitions))
	return res, nil
}
