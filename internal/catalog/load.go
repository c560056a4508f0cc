// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/goplus/modrules/descriptor"
)

//go:embed defaults
var defaults embed.FS

// DefaultFile is the name of the embedded catalog returned by Default.
const DefaultFile = "defaults/imgui.hcl"

// Default returns the embedded catalog of the ImGui plugin.
func Default() (*Catalog, error) {
	data, err := defaults.ReadFile(DefaultFile)
	if err != nil {
		return nil, err
	}
	return Parse(DefaultFile, data)
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	return Parse(path, nil)
}

// Parse parses a catalog from data, or from file when data is nil. The
// format follows the file extension: .hcl, .json, .yaml or .yml.
func Parse(file string, data []byte) (*Catalog, error) {
	if data == nil {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, err
		}
	}

	var (
		doc *document
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".hcl":
		doc, err = decodeHCL(file, data)
	case ".json":
		doc = new(document)
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	case ".yaml", ".yml":
		doc = new(document)
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(doc)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q: %s", ext, file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", file, err)
	}
	c, err := doc.build(filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", file, err)
	}
	return c, nil
}

// -----------------------------------------------------------------------------

type hclFile struct {
	Module      string          `hcl:"module"`
	Host        string          `hcl:"host,optional"`
	Comparator  string          `hcl:"comparator,optional"`
	TieBreak    string          `hcl:"tie_break,optional"`
	AllowGaps   bool            `hcl:"allow_gaps,optional"`
	Generations []hclGeneration `hcl:"generation,block"`
	Flags       []hclFlag       `hcl:"flag,block"`
	Base        *hclFragment    `hcl:"base,block"`
	Editor      *hclFragment    `hcl:"editor,block"`
	Variants    []hclVariant    `hcl:"variant,block"`
}

type hclGeneration struct {
	Tag string `hcl:"tag,label"`
	Min string `hcl:"min"`
}

type hclFlag struct {
	Name        string       `hcl:"name,label"`
	Kind        string       `hcl:"kind,optional"`
	Default     string       `hcl:"default,optional"`
	Choices     []string     `hcl:"choices,optional"`
	Macro       string       `hcl:"macro,optional"`
	Setting     string       `hcl:"setting,optional"`
	WhenEnabled *hclFragment `hcl:"when_enabled,block"`
}

type hclFragment struct {
	PublicIncludePaths  []string     `hcl:"public_include_paths,optional"`
	PrivateIncludePaths []string     `hcl:"private_include_paths,optional"`
	PublicModules       []string     `hcl:"public_modules,optional"`
	PrivateModules      []string     `hcl:"private_modules,optional"`
	DynamicModules      []string     `hcl:"dynamic_modules,optional"`
	Definitions         cty.Value    `hcl:"definitions,optional"`
	Settings            *hclSettings `hcl:"settings,block"`
}

type hclSettings struct {
	PCHUsage                 string `hcl:"pch_usage,optional"`
	PrivatePCHHeaderFile     string `hcl:"private_pch_header_file,optional"`
	CppStandard              string `hcl:"cpp_standard,optional"`
	EnforceIWYU              *bool  `hcl:"enforce_iwyu,optional"`
	FasterWithoutUnity       *bool  `hcl:"faster_without_unity,optional"`
	LegacyPublicIncludePaths *bool  `hcl:"legacy_public_include_paths,optional"`
}

type hclVariant struct {
	ID   string   `hcl:"id,label"`
	Min  string   `hcl:"min,optional"`
	Max  string   `hcl:"max,optional"`
	Body hcl.Body `hcl:",remain"`
}

func decodeHCL(file string, data []byte) (*document, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, file)
	if diags.HasErrors() {
		return nil, diags
	}
	var raw hclFile
	if diags = gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	doc := &document{
		Module:     raw.Module,
		Host:       raw.Host,
		Comparator: raw.Comparator,
		TieBreak:   raw.TieBreak,
		AllowGaps:  raw.AllowGaps,
	}
	for _, g := range raw.Generations {
		doc.Generations = append(doc.Generations, generationDoc{Tag: g.Tag, Min: g.Min})
	}
	for _, fl := range raw.Flags {
		fd := flagDoc{
			Name:    fl.Name,
			Kind:    fl.Kind,
			Choices: fl.Choices,
			Macro:   fl.Macro,
			Setting: fl.Setting,
		}
		if fl.Default != "" {
			fd.Default = fl.Default
		}
		if fl.WhenEnabled != nil {
			frag, err := fl.WhenEnabled.doc()
			if err != nil {
				return nil, err
			}
			fd.WhenEnabled = &frag
		}
		doc.Flags = append(doc.Flags, fd)
	}
	var err error
	if raw.Base != nil {
		if doc.Base, err = raw.Base.doc(); err != nil {
			return nil, err
		}
	}
	if raw.Editor != nil {
		if doc.Editor, err = raw.Editor.doc(); err != nil {
			return nil, err
		}
	}
	for _, v := range raw.Variants {
		var body hclFragment
		if diags = gohcl.DecodeBody(v.Body, nil, &body); diags.HasErrors() {
			return nil, diags
		}
		frag, err := body.doc()
		if err != nil {
			return nil, err
		}
		doc.Variants = append(doc.Variants, variantDoc{ID: v.ID, Min: v.Min, Max: v.Max, fragmentDoc: frag})
	}
	return doc, nil
}

func (h *hclFragment) doc() (fragmentDoc, error) {
	fd := fragmentDoc{
		PublicIncludePaths:  h.PublicIncludePaths,
		PrivateIncludePaths: h.PrivateIncludePaths,
		PublicModules:       h.PublicModules,
		PrivateModules:      h.PrivateModules,
		DynamicModules:      h.DynamicModules,
	}
	if s := h.Settings; s != nil {
		fd.Settings = descriptor.Settings{
			PCHUsage:                 s.PCHUsage,
			PrivatePCHHeaderFile:     s.PrivatePCHHeaderFile,
			CppStandard:              s.CppStandard,
			EnforceIWYU:              s.EnforceIWYU,
			FasterWithoutUnity:       s.FasterWithoutUnity,
			LegacyPublicIncludePaths: s.LegacyPublicIncludePaths,
		}
	}
	defs, err := ctyDefinitions(h.Definitions)
	if err != nil {
		return fragmentDoc{}, err
	}
	fd.Definitions = defs
	return fd, nil
}

// ctyDefinitions converts an HCL object of scalars to plain Go values.
func ctyDefinitions(v cty.Value) (map[string]any, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("definitions must be an object, got %s", ty.FriendlyName())
	}
	out := make(map[string]any)
	for name, val := range v.AsValueMap() {
		if val.IsNull() {
			return nil, fmt.Errorf("definition %s has no value", name)
		}
		switch val.Type() {
		case cty.String:
			out[name] = val.AsString()
		case cty.Bool:
			out[name] = val.True()
		case cty.Number:
			bf := val.AsBigFloat()
			i, acc := bf.Int64()
			if !bf.IsInt() || acc != 0 {
				return nil, fmt.Errorf("definition %s must be an integer, got %s", name, bf.String())
			}
			out[name] = i
		default:
			return nil, fmt.Errorf("definition %s has unsupported type %s", name, val.Type().FriendlyName())
		}
	}
	return out, nil
}
