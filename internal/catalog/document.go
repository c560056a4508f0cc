// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/flags"
	"github.com/goplus/modrules/internal/generation"
	"github.com/goplus/modrules/internal/versioncmp"
)

// document is the format-neutral form of a catalog file.
type document struct {
	Module      string          `json:"module" yaml:"module"`
	Host        string          `json:"host,omitempty" yaml:"host,omitempty"`
	Comparator  string          `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	TieBreak    string          `json:"tieBreak,omitempty" yaml:"tieBreak,omitempty"`
	AllowGaps   bool            `json:"allowGaps,omitempty" yaml:"allowGaps,omitempty"`
	Generations []generationDoc `json:"generations" yaml:"generations"`
	Flags       []flagDoc       `json:"flags,omitempty" yaml:"flags,omitempty"`
	Base        fragmentDoc     `json:"base" yaml:"base"`
	Editor      fragmentDoc     `json:"editor" yaml:"editor"`
	Variants    []variantDoc    `json:"variants" yaml:"variants"`
}

type generationDoc struct {
	Tag string `json:"tag" yaml:"tag"`
	Min string `json:"min" yaml:"min"`
}

type flagDoc struct {
	Name        string       `json:"name" yaml:"name"`
	Kind        string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Default     any          `json:"default,omitempty" yaml:"default,omitempty"`
	Choices     []string     `json:"choices,omitempty" yaml:"choices,omitempty"`
	Macro       string       `json:"macro,omitempty" yaml:"macro,omitempty"`
	Setting     string       `json:"setting,omitempty" yaml:"setting,omitempty"`
	WhenEnabled *fragmentDoc `json:"whenEnabled,omitempty" yaml:"whenEnabled,omitempty"`
}

type fragmentDoc struct {
	PublicIncludePaths  []string            `json:"publicIncludePaths,omitempty" yaml:"publicIncludePaths,omitempty"`
	PrivateIncludePaths []string            `json:"privateIncludePaths,omitempty" yaml:"privateIncludePaths,omitempty"`
	PublicModules       []string            `json:"publicModules,omitempty" yaml:"publicModules,omitempty"`
	PrivateModules      []string            `json:"privateModules,omitempty" yaml:"privateModules,omitempty"`
	DynamicModules      []string            `json:"dynamicModules,omitempty" yaml:"dynamicModules,omitempty"`
	Definitions         map[string]any      `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Settings            descriptor.Settings `json:"settings" yaml:"settings"`
}

type variantDoc struct {
	ID          string `json:"id" yaml:"id"`
	Min         string `json:"min,omitempty" yaml:"min,omitempty"`
	Max         string `json:"max,omitempty" yaml:"max,omitempty"`
	fragmentDoc `yaml:",inline"`
}

// build turns the document into a validated catalog. Relative comparator
// classfiles are looked up in dir.
func (d *document) build(dir string) (*Catalog, error) {
	if d.Module == "" {
		return nil, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Detail: "module name is required"}
	}
	cmp, err := versioncmp.Load(d.Comparator, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparator of %s: %w", d.Module, err)
	}
	bounds := make([]generation.Boundary, len(d.Generations))
	for i, g := range d.Generations {
		bounds[i] = generation.Boundary{Tag: g.Tag, Min: g.Min}
	}
	det, err := generation.New(d.Host, cmp, bounds)
	if err != nil {
		return nil, err
	}
	tieBreak, err := ParseTieBreak(d.TieBreak)
	if err != nil {
		return nil, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Detail: err.Error()}
	}

	declared := make([]flags.Flag, 0, len(d.Flags))
	for _, fd := range d.Flags {
		f, err := fd.flag()
		if err != nil {
			return nil, err
		}
		declared = append(declared, f)
	}
	registry, err := flags.WithBuiltins(declared...)
	if err != nil {
		return nil, err
	}

	base, err := d.Base.fragment()
	if err != nil {
		return nil, descriptor.WithContext(err, "", "base")
	}
	editor, err := d.Editor.fragment()
	if err != nil {
		return nil, descriptor.WithContext(err, "", "editor")
	}
	variants := make([]Variant, len(d.Variants))
	for i, vd := range d.Variants {
		frag, err := vd.fragment()
		if err != nil {
			return nil, descriptor.WithContext(err, "", vd.ID)
		}
		variants[i] = Variant{ID: vd.ID, Range: Range{Min: vd.Min, Max: vd.Max}, Fragment: frag}
	}
	return New(det, descriptor.Base{Fragment: base, Editor: editor.Deps}, registry, variants, Options{
		Module:    d.Module,
		TieBreak:  tieBreak,
		AllowGaps: d.AllowGaps,
	})
}

func (fd *flagDoc) flag() (flags.Flag, error) {
	fail := func(detail string) error {
		return &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Entry: fd.Name, Detail: detail}
	}
	kind, err := flags.ParseKind(fd.Kind)
	if err != nil {
		return flags.Flag{}, fail(err.Error())
	}
	f := flags.Flag{
		Name:    fd.Name,
		Kind:    kind,
		Choices: fd.Choices,
		Macro:   fd.Macro,
		Setting: fd.Setting,
	}
	def := ""
	if fd.Default != nil {
		def = fmt.Sprint(fd.Default)
	}
	switch kind {
	case flags.KindBool:
		b := false
		if def != "" {
			if b, err = strconv.ParseBool(def); err != nil {
				return flags.Flag{}, fail(fmt.Sprintf("default %q is not a bool", def))
			}
		}
		f.Default = flags.Bool(b)
	case flags.KindEnum:
		if def == "" && len(fd.Choices) > 0 {
			def = fd.Choices[0]
		}
		f.Default = flags.Enum(def)
	}
	if fd.WhenEnabled != nil {
		if f.WhenEnabled, err = fd.WhenEnabled.fragment(); err != nil {
			return flags.Flag{}, descriptor.WithContext(err, "", "flag "+fd.Name)
		}
	}
	return f, nil
}

func (fd *fragmentDoc) fragment() (descriptor.Fragment, error) {
	f := descriptor.Fragment{
		Paths: descriptor.PathSet{
			Public:  fd.PublicIncludePaths,
			Private: fd.PrivateIncludePaths,
		},
		Deps: descriptor.DependencySet{
			Public:  fd.PublicModules,
			Private: fd.PrivateModules,
			Dynamic: fd.DynamicModules,
		},
		Settings: fd.Settings,
	}
	if len(fd.Definitions) > 0 {
		f.Definitions = make(descriptor.DefinitionSet, len(fd.Definitions))
	}
	for name, raw := range fd.Definitions {
		v, err := definitionValue(raw)
		if err != nil {
			return descriptor.Fragment{}, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Entry: name, Detail: err.Error()}
		}
		f.Definitions[name] = v
	}
	return f, nil
}

// definitionValue converts a decoded scalar to a definition value. Booleans
// become 1 or 0.
func definitionValue(raw any) (descriptor.Value, error) {
	switch v := raw.(type) {
	case string:
		return descriptor.StringValue(v), nil
	case bool:
		return descriptor.BoolValue(v), nil
	case int:
		return descriptor.IntValue(int64(v)), nil
	case int64:
		return descriptor.IntValue(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return descriptor.Value{}, fmt.Errorf("value %d out of range", v)
		}
		return descriptor.IntValue(int64(v)), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return descriptor.Value{}, fmt.Errorf("value %v is not an integer", v)
		}
		return descriptor.IntValue(int64(v)), nil
	}
	return descriptor.Value{}, fmt.Errorf("unsupported definition value %v (%T)", raw, raw)
}
