// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/goplus/modrules/descriptor"
)

// Output formats understood by Render.
const (
	FormatJSON        = "json"
	FormatYAML        = "yaml"
	FormatModuleRules = "modulerules"
	FormatTable       = "table"
)

// Formats lists the output formats in the order they are documented.
var Formats = []string{FormatJSON, FormatYAML, FormatModuleRules, FormatTable}

// Render writes ext to w in format. module names the ModuleRules class.
func Render(w io.Writer, format, module string, ext *descriptor.External) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON(w, ext)
	case FormatYAML:
		return YAML(w, ext)
	case FormatModuleRules, "cs":
		return ModuleRules(w, module, ext)
	case FormatTable:
		return Table(w, ext)
	}
	return fmt.Errorf("unknown output format %q: want one of %s", format, strings.Join(Formats, ", "))
}

// JSON writes ext as indented JSON. Definitions are sorted by name.
func JSON(w io.Writer, ext *descriptor.External) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ext)
}

// YAML writes ext as a YAML document.
func YAML(w io.Writer, ext *descriptor.External) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ext); err != nil {
		return err
	}
	return enc.Close()
}

var moduleRulesTmpl = template.Must(template.New("ModuleRules").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"deref": func(b *bool) string { return strconv.FormatBool(*b) },
}).Parse(`// Generated by modrules. DO NOT EDIT.

using System.IO;
using UnrealBuildTool;

public class {{.Name}} : ModuleRules
{
	public {{.Name}}(ReadOnlyTargetRules Target) : base(Target)
	{
{{- with .Settings}}
{{- if .PCHUsage}}
		PCHUsage = PCHUsageMode.{{.PCHUsage}};
{{- end}}
{{- if .PrivatePCHHeaderFile}}
		PrivatePCHHeaderFile = {{quote .PrivatePCHHeaderFile}};
{{- end}}
{{- if .CppStandard}}
		CppStandard = CppStandardVersion.{{.CppStandard}};
{{- end}}
{{- if .EnforceIWYU}}
		bEnforceIWYU = {{deref .EnforceIWYU}};
{{- end}}
{{- if .FasterWithoutUnity}}
		bFasterWithoutUnity = {{deref .FasterWithoutUnity}};
{{- end}}
{{- if .LegacyPublicIncludePaths}}
		bLegacyPublicIncludePaths = {{deref .LegacyPublicIncludePaths}};
{{- end}}
{{- end}}
{{- range .Lists}}
{{- if .Items}}

		{{.Field}}.AddRange(new string[] {
{{- range .Items}}
			{{.}},
{{- end}}
		});
{{- end}}
{{- end}}
{{- if .Definitions}}
{{range .Definitions}}
		PublicDefinitions.Add({{quote .}});
{{- end}}
{{- end}}
	}
}
`))

type moduleRulesList struct {
	Field string
	Items []string
}

type moduleRulesData struct {
	Name        string
	Settings    *descriptor.Settings
	Lists       []moduleRulesList
	Definitions []string
}

// ModuleRules writes ext as an Unreal ModuleRules class named module.
// Include paths containing ModuleDirVar are written relative to
// ModuleDirectory.
func ModuleRules(w io.Writer, module string, ext *descriptor.External) error {
	if module == "" {
		return fmt.Errorf("ModuleRules output needs a module name")
	}
	data := moduleRulesData{
		Name:     module,
		Settings: ext.Settings,
		Lists: []moduleRulesList{
			{"PublicIncludePaths", csPaths(ext.PublicIncludePaths)},
			{"PrivateIncludePaths", csPaths(ext.PrivateIncludePaths)},
			{"PublicDependencyModuleNames", csStrings(ext.PublicDependencyModuleNames)},
			{"PrivateDependencyModuleNames", csStrings(ext.PrivateDependencyModuleNames)},
			{"DynamicallyLoadedModuleNames", csStrings(ext.DynamicallyLoadedModuleNames)},
		},
		Definitions: ext.Definitions.Pairs(),
	}
	return moduleRulesTmpl.Execute(w, data)
}

func csPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if rest, ok := strings.CutPrefix(p, ModuleDirVar); ok {
			rest = strings.TrimPrefix(rest, "/")
			out[i] = "Path.Combine(ModuleDirectory, " + strconv.Quote(rest) + ")"
			continue
		}
		out[i] = strconv.Quote(p)
	}
	return out
}

func csStrings(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Quote(n)
	}
	return out
}

// Table writes ext as a human-readable table.
func Table(w io.Writer, ext *descriptor.External) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})))
	table.Header("Section", "Visibility", "Entry")

	var rows [][]string
	add := func(section, visibility string, entries []string) {
		for _, e := range entries {
			rows = append(rows, []string{section, visibility, e})
		}
	}
	add("include path", "public", ext.PublicIncludePaths)
	add("include path", "private", ext.PrivateIncludePaths)
	add("module", "public", ext.PublicDependencyModuleNames)
	add("module", "private", ext.PrivateDependencyModuleNames)
	add("module", "dynamic", ext.DynamicallyLoadedModuleNames)
	add("definition", "", ext.Definitions.Pairs())
	if s := ext.Settings; s != nil {
		add("setting", "", settingPairs(s))
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func settingPairs(s *descriptor.Settings) []string {
	var out []string
	str := func(name, v string) {
		if v != "" {
			out = append(out, name+"="+v)
		}
	}
	flag := func(name string, v *bool) {
		if v != nil {
			out = append(out, name+"="+strconv.FormatBool(*v))
		}
	}
	str("pchUsage", s.PCHUsage)
	str("privatePCHHeaderFile", s.PrivatePCHHeaderFile)
	str("cppStandard", s.CppStandard)
	flag("enforceIWYU", s.EnforceIWYU)
	flag("fasterWithoutUnity", s.FasterWithoutUnity)
	flag("legacyPublicIncludePaths", s.LegacyPublicIncludePaths)
	return out
}
