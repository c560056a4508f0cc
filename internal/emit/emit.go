// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit converts resolved descriptors to the shape consumed by the
// external build tool and renders that shape as JSON, YAML, a ModuleRules
// class or a table.
package emit

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/goplus/modrules/descriptor"
)

// ModuleDirVar is replaced by the module directory in emitted include paths.
const ModuleDirVar = "{ModuleDir}"

type config struct {
	moduleDir string
	logger    *slog.Logger
}

// Option configures Emit.
type Option func(*config)

// WithModuleDir expands ModuleDirVar in include paths to dir. Without it
// the placeholder is kept.
func WithModuleDir(dir string) Option {
	return func(c *config) {
		c.moduleDir = dir
	}
}

// WithLogger sets the logger invariant violations are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Emit converts r to the external descriptor. It does not modify r and
// returns the same descriptor for the same input.
//
// The result is checked once more for duplicate paths and modules listed
// under two visibilities. Either one is a resolver bug and fails with
// descriptor.ErrInternalInvariant.
func Emit(r *descriptor.Resolved, opts ...Option) (*descriptor.External, error) {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	if r == nil {
		return nil, &descriptor.Error{Kind: descriptor.ErrInternalInvariant, Detail: "nil resolved descriptor"}
	}

	ext := &descriptor.External{
		PublicIncludePaths:           c.expand(r.Paths.Public),
		PrivateIncludePaths:          c.expand(r.Paths.Private),
		PublicDependencyModuleNames:  nonNil(r.Deps.Public),
		PrivateDependencyModuleNames: nonNil(r.Deps.Private),
		DynamicallyLoadedModuleNames: nonNil(r.Deps.Dynamic),
		Definitions:                  r.Definitions.Clone(),
	}
	if !r.Settings.IsZero() {
		s := descriptor.Settings{}.Override(r.Settings)
		ext.Settings = &s
	}

	if err := check(ext); err != nil {
		err = &descriptor.Error{
			Kind:       descriptor.ErrInternalInvariant,
			Generation: r.Generation,
			Variant:    r.Variant,
			Entry:      entryOf(err),
			Detail:     err.Error(),
		}
		c.logger.Error("resolved descriptor violates its invariants",
			"error", err,
			"generation", r.Generation,
			"variant", r.Variant,
			"publicIncludePaths", r.Paths.Public,
			"privateIncludePaths", r.Paths.Private,
			"publicModules", r.Deps.Public,
			"privateModules", r.Deps.Private,
			"dynamicModules", r.Deps.Dynamic,
			"definitions", r.Definitions.Pairs())
		return nil, err
	}
	return ext, nil
}

func check(ext *descriptor.External) error {
	paths := descriptor.PathSet{Public: ext.PublicIncludePaths, Private: ext.PrivateIncludePaths}
	if err := paths.Validate(); err != nil {
		return err
	}
	deps := descriptor.DependencySet{
		Public:  ext.PublicDependencyModuleNames,
		Private: ext.PrivateDependencyModuleNames,
		Dynamic: ext.DynamicallyLoadedModuleNames,
	}
	if err := deps.Validate(); err != nil {
		return err
	}
	for _, v := range []descriptor.Visibility{descriptor.Public, descriptor.Dynamic, descriptor.Private} {
		names := deps.Names(v)
		for i, name := range names {
			if slices.Contains(names[:i], name) {
				return &descriptor.Error{Kind: descriptor.ErrConflictingVisibility, Entry: name, Detail: "listed twice as " + v.String()}
			}
		}
	}
	return nil
}

func entryOf(err error) string {
	var de *descriptor.Error
	if errors.As(err, &de) {
		return de.Entry
	}
	return ""
}

func (c *config) expand(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if c.moduleDir != "" {
			p = strings.ReplaceAll(p, ModuleDirVar, c.moduleDir)
		}
		out[i] = p
	}
	return out
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return slices.Clone(names)
}
