// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix expands host versions, build kinds and flag values into
// build targets and resolves them concurrently.
package matrix

import (
	"slices"
	"sort"

	"github.com/sourcegraph/conc/iter"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/flags"
)

// Matrix describes a set of build targets.
type Matrix struct {
	Versions []string
	Kinds    []descriptor.BuildKind // empty means Runtime only
	Options  map[string][]string    // flag name -> values
}

// Target is one combination of the matrix.
type Target struct {
	Key   string
	Host  descriptor.HostEnvironment
	Flags flags.Set
}

type option struct {
	key   string
	flags flags.Set
}

// Targets returns the cartesian product of the matrix. Option names are
// sorted; versions and kinds keep their order. A key joins version and kind
// with "-" and appends the options after "|", e.g.
// "4.18-Editor|optionalTextShapingEnabled=true".
func (m *Matrix) Targets() []Target {
	if len(m.Versions) == 0 {
		return nil
	}
	kinds := m.Kinds
	if len(kinds) == 0 {
		kinds = []descriptor.BuildKind{descriptor.Runtime}
	}

	names := make([]string, 0, len(m.Options))
	for name, values := range m.Options {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// options are combined layer by layer, one flag per layer
	opts := []option{{flags: flags.Set{}}}
	for _, name := range names {
		next := make([]option, 0, len(opts)*len(m.Options[name]))
		for _, prev := range opts {
			for _, v := range m.Options[name] {
				key := name + "=" + v
				if prev.key != "" {
					key = prev.key + "-" + key
				}
				set := make(flags.Set, len(prev.flags)+1)
				for k, fv := range prev.flags {
					set[k] = fv
				}
				set[name] = flags.ParseValue(v)
				next = append(next, option{key: key, flags: set})
			}
		}
		opts = next
	}

	targets := make([]Target, 0, m.Count())
	for _, ver := range m.Versions {
		for _, kind := range kinds {
			base := ver + "-" + kind.String()
			for _, o := range opts {
				key := base
				if o.key != "" {
					key += "|" + o.key
				}
				targets = append(targets, Target{
					Key:   key,
					Host:  descriptor.HostEnvironment{Version: ver, Kind: kind},
					Flags: o.flags,
				})
			}
		}
	}
	return targets
}

// Count returns len(m.Targets()) without building them.
func (m *Matrix) Count() int {
	n := len(m.Versions) * max(len(m.Kinds), 1)
	for _, values := range m.Options {
		if len(values) > 0 {
			n *= len(values)
		}
	}
	return n
}

// -----------------------------------------------------------------------------

// Outcome is the result of resolving one target.
type Outcome struct {
	Target
	Resolved *descriptor.Resolved
	Err      error
}

// ResolveFunc resolves a single target.
type ResolveFunc func(host descriptor.HostEnvironment, set flags.Set) (*descriptor.Resolved, error)

// ResolveAll resolves targets with at most workers goroutines (0 means one
// per CPU) and returns the outcomes in target order. One failing target does
// not affect the others.
func ResolveAll(targets []Target, workers int, fn ResolveFunc) []Outcome {
	mapper := iter.Mapper[Target, Outcome]{MaxGoroutines: workers}
	return mapper.Map(targets, func(t *Target) Outcome {
		r, err := fn(t.Host, t.Flags)
		return Outcome{Target: *t, Resolved: r, Err: err}
	})
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	return slices.DeleteFunc(slices.Clone(outcomes), func(o Outcome) bool { return o.Err == nil })
}
