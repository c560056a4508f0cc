// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package generation classifies host version tokens into API generations.
package generation

import (
	"fmt"
	"slices"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/mod/module"
)

// Boundary is the lowest host version of one generation.
type Boundary struct {
	Tag string
	Min string
}

// Detector maps host version tokens to generations. It is immutable and
// safe for concurrent use.
type Detector struct {
	host   string
	cmp    module.VersionComparator
	bounds []Boundary // ascending by Min
}

// New creates a Detector for host. bounds must be listed oldest first with
// strictly ascending minimums and unique tags.
func New(host string, cmp module.VersionComparator, bounds []Boundary) (*Detector, error) {
	if cmp == nil {
		return nil, fmt.Errorf("generation: nil version comparator")
	}
	if len(bounds) == 0 {
		return nil, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Detail: "no generations declared"}
	}
	d := &Detector{host: host, cmp: cmp, bounds: slices.Clone(bounds)}
	tags := make(map[string]bool, len(bounds))
	for i, b := range d.bounds {
		if b.Tag == "" || b.Min == "" {
			return nil, &descriptor.Error{
				Kind: descriptor.ErrInvalidCatalog, Entry: b.Tag, Detail: "generation needs a tag and a minimum version",
			}
		}
		if tags[b.Tag] {
			return nil, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Entry: b.Tag, Detail: "duplicate generation tag"}
		}
		tags[b.Tag] = true
		if i > 0 && d.Compare(d.bounds[i-1].Min, b.Min) >= 0 {
			return nil, &descriptor.Error{
				Kind:  descriptor.ErrInvalidCatalog,
				Entry: b.Tag,
				Detail: fmt.Sprintf("minimum %s is not above %s of generation %s",
					b.Min, d.bounds[i-1].Min, d.bounds[i-1].Tag),
			}
		}
	}
	return d, nil
}

// Host returns the host identifier passed to New.
func (d *Detector) Host() string {
	return d.host
}

// Compare orders two version tokens of the host.
func (d *Detector) Compare(a, b string) int {
	return d.cmp(module.Version{Path: d.host, Version: a}, module.Version{Path: d.host, Version: b})
}

// Boundaries returns the generations, oldest first.
func (d *Detector) Boundaries() []Boundary {
	return slices.Clone(d.bounds)
}

// Len returns the number of generations.
func (d *Detector) Len() int {
	return len(d.bounds)
}

// Index returns the position of the generation tagged tag.
func (d *Detector) Index(tag string) (int, bool) {
	i := slices.IndexFunc(d.bounds, func(b Boundary) bool { return b.Tag == tag })
	return i, i >= 0
}

// IndexOfMin returns the position of the generation whose minimum equals
// version under the host ordering.
func (d *Detector) IndexOfMin(version string) (int, bool) {
	i := slices.IndexFunc(d.bounds, func(b Boundary) bool { return d.Compare(b.Min, version) == 0 })
	return i, i >= 0
}

// Latest returns the newest generation.
func (d *Detector) Latest() Boundary {
	return d.bounds[len(d.bounds)-1]
}

// Detect returns the highest generation whose minimum is <= token. Tokens
// newer than every boundary belong to the latest generation; tokens older
// than the lowest boundary fail with descriptor.ErrUnsupportedVersion.
func (d *Detector) Detect(token string) (Boundary, error) {
	found := -1
	for i, b := range d.bounds {
		if d.Compare(b.Min, token) > 0 {
			break
		}
		found = i
	}
	if found < 0 {
		lowest := d.bounds[0]
		return Boundary{}, &descriptor.Error{
			Kind:   descriptor.ErrUnsupportedVersion,
			Entry:  token,
			Detail: fmt.Sprintf("%s supports %s (generation %s) and later", d.host, lowest.Min, lowest.Tag),
		}
	}
	return d.bounds[found], nil
}
