// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"path"
	"slices"
)

// PathSet holds ordered include search paths. Order is search precedence.
type PathSet struct {
	Public  []string
	Private []string
}

// Clone returns a deep copy of p.
func (p PathSet) Clone() PathSet {
	return PathSet{Public: slices.Clone(p.Public), Private: slices.Clone(p.Private)}
}

// Validate fails with ErrDuplicatePath if a list names the same directory
// twice. A directory may appear once in each list.
func (p PathSet) Validate() error {
	for _, list := range [][]string{p.Public, p.Private} {
		seen := make(map[string]bool, len(list))
		for _, dir := range list {
			if dir == "" {
				return &Error{Kind: ErrInvalidCatalog, Detail: "empty include path"}
			}
			key := path.Clean(dir)
			if seen[key] {
				return &Error{Kind: ErrDuplicatePath, Entry: dir}
			}
			seen[key] = true
		}
	}
	return nil
}

// Merge appends the entries of o after those of p, keeping relative order.
// A path already present in the same list is an ErrDuplicatePath.
func (p PathSet) Merge(o PathSet) (PathSet, error) {
	out := p.Clone()
	var err error
	if out.Public, err = appendPaths(out.Public, o.Public); err != nil {
		return PathSet{}, err
	}
	if out.Private, err = appendPaths(out.Private, o.Private); err != nil {
		return PathSet{}, err
	}
	return out, nil
}

func appendPaths(dst, src []string) ([]string, error) {
	for _, dir := range src {
		if slices.ContainsFunc(dst, func(d string) bool { return path.Clean(d) == path.Clean(dir) }) {
			return nil, &Error{Kind: ErrDuplicatePath, Entry: dir}
		}
		dst = append(dst, dir)
	}
	return dst, nil
}

// -----------------------------------------------------------------------------

// Visibility says how far a dependency propagates to downstream modules.
// Values are ordered from least to most restrictive.
type Visibility int

const (
	Public Visibility = iota
	Dynamic
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Dynamic:
		return "dynamic"
	case Private:
		return "private"
	}
	return "unknown"
}

// DependencySet groups module names by visibility. A name belongs to at most
// one group; each group keeps insertion order.
type DependencySet struct {
	Public  []string
	Private []string
	Dynamic []string
}

// Clone returns a deep copy of d.
func (d DependencySet) Clone() DependencySet {
	return DependencySet{
		Public:  slices.Clone(d.Public),
		Private: slices.Clone(d.Private),
		Dynamic: slices.Clone(d.Dynamic),
	}
}

// Names returns the group of the given visibility.
func (d DependencySet) Names(v Visibility) []string {
	return *d.group(v)
}

func (d *DependencySet) group(v Visibility) *[]string {
	switch v {
	case Private:
		return &d.Private
	case Dynamic:
		return &d.Dynamic
	}
	return &d.Public
}

// Visibility returns the group name belongs to.
func (d DependencySet) Visibility(name string) (Visibility, bool) {
	for _, v := range []Visibility{Public, Dynamic, Private} {
		if slices.Contains(d.Names(v), name) {
			return v, true
		}
	}
	return 0, false
}

// Len returns the number of distinct module names in d.
func (d DependencySet) Len() int {
	return len(d.Public) + len(d.Private) + len(d.Dynamic)
}

// Validate fails with ErrConflictingVisibility if a module is listed under
// two visibilities. Repeating a name in the same group is allowed.
func (d DependencySet) Validate() error {
	seen := make(map[string]Visibility)
	for _, v := range []Visibility{Public, Dynamic, Private} {
		for _, name := range d.Names(v) {
			if name == "" {
				return &Error{Kind: ErrInvalidCatalog, Detail: "empty module name"}
			}
			if prev, ok := seen[name]; ok && prev != v {
				return &Error{
					Kind:   ErrConflictingVisibility,
					Entry:  name,
					Detail: "listed as both " + prev.String() + " and " + v.String(),
				}
			}
			seen[name] = v
		}
	}
	return nil
}

// Add inserts name with visibility v. If name is already present with a less
// restrictive visibility it moves to v; otherwise d is unchanged.
func (d *DependencySet) Add(name string, v Visibility) {
	cur, ok := d.Visibility(name)
	if ok && cur >= v {
		return
	}
	if ok {
		g := d.group(cur)
		*g = slices.DeleteFunc(*g, func(n string) bool { return n == name })
	}
	g := d.group(v)
	*g = append(*g, name)
}

// Merge returns the union of d and o. When both name a module with different
// visibilities the more restrictive one wins (private > dynamic > public).
func (d DependencySet) Merge(o DependencySet) DependencySet {
	out := d.Clone()
	for _, v := range []Visibility{Public, Dynamic, Private} {
		for _, name := range o.Names(v) {
			out.Add(name, v)
		}
	}
	return out
}
