// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package descriptor defines the build descriptor of a native module: include
// search paths, module dependencies grouped by visibility, preprocessor
// definitions and module settings, together with the merge rules used to
// compose them.
package descriptor

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------

// BuildKind is the kind of target a module is built for.
type BuildKind int

const (
	Runtime BuildKind = iota
	Editor
	Program
)

var buildKindNames = [...]string{
	Runtime: "Runtime",
	Editor:  "Editor",
	Program: "Program",
}

func (k BuildKind) String() string {
	if k < 0 || int(k) >= len(buildKindNames) {
		return fmt.Sprintf("BuildKind(%d)", int(k))
	}
	return buildKindNames[k]
}

// ParseBuildKind parses a build kind name, ignoring case.
func ParseBuildKind(s string) (BuildKind, error) {
	for k, name := range buildKindNames {
		if strings.EqualFold(name, s) {
			return BuildKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown build kind %q", s)
}

func (k BuildKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BuildKind) UnmarshalText(text []byte) error {
	v, err := ParseBuildKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// HostEnvironment describes the host a module is being built against.
type HostEnvironment struct {
	Version string    // opaque host version token, e.g. "4.18"
	Kind    BuildKind // target kind
}

// -----------------------------------------------------------------------------

// Settings are scalar module rules. Zero fields are unset and never override
// a value set by an earlier layer.
type Settings struct {
	PCHUsage                 string `json:"pchUsage,omitempty" yaml:"pchUsage,omitempty"`
	PrivatePCHHeaderFile     string `json:"privatePCHHeaderFile,omitempty" yaml:"privatePCHHeaderFile,omitempty"`
	CppStandard              string `json:"cppStandard,omitempty" yaml:"cppStandard,omitempty"`
	EnforceIWYU              *bool  `json:"enforceIWYU,omitempty" yaml:"enforceIWYU,omitempty"`
	FasterWithoutUnity       *bool  `json:"fasterWithoutUnity,omitempty" yaml:"fasterWithoutUnity,omitempty"`
	LegacyPublicIncludePaths *bool  `json:"legacyPublicIncludePaths,omitempty" yaml:"legacyPublicIncludePaths,omitempty"`
}

// Bool returns a pointer to b, for use in Settings literals.
func Bool(b bool) *bool {
	return &b
}

// Override returns s with every field set in o applied on top of it.
func (s Settings) Override(o Settings) Settings {
	if o.PCHUsage != "" {
		s.PCHUsage = o.PCHUsage
	}
	if o.PrivatePCHHeaderFile != "" {
		s.PrivatePCHHeaderFile = o.PrivatePCHHeaderFile
	}
	if o.CppStandard != "" {
		s.CppStandard = o.CppStandard
	}
	if o.EnforceIWYU != nil {
		s.EnforceIWYU = Bool(*o.EnforceIWYU)
	}
	if o.FasterWithoutUnity != nil {
		s.FasterWithoutUnity = Bool(*o.FasterWithoutUnity)
	}
	if o.LegacyPublicIncludePaths != nil {
		s.LegacyPublicIncludePaths = Bool(*o.LegacyPublicIncludePaths)
	}
	return s
}

// IsZero reports whether no field of s is set.
func (s Settings) IsZero() bool {
	return s.PCHUsage == "" && s.PrivatePCHHeaderFile == "" && s.CppStandard == "" &&
		s.EnforceIWYU == nil && s.FasterWithoutUnity == nil && s.LegacyPublicIncludePaths == nil
}

// SetBool sets the boolean setting called name ("enforce_iwyu",
// "faster_without_unity" or "legacy_public_include_paths").
func (s *Settings) SetBool(name string, v bool) error {
	switch name {
	case "enforce_iwyu":
		s.EnforceIWYU = Bool(v)
	case "faster_without_unity":
		s.FasterWithoutUnity = Bool(v)
	case "legacy_public_include_paths":
		s.LegacyPublicIncludePaths = Bool(v)
	default:
		return fmt.Errorf("unknown boolean setting %q", name)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Fragment is one layer of a descriptor: the base, a variant, the editor
// additions or the additions of an enabled feature flag.
type Fragment struct {
	Paths       PathSet
	Deps        DependencySet
	Definitions DefinitionSet
	Settings    Settings
}

// Validate reports the first internal inconsistency of f.
func (f Fragment) Validate() error {
	if err := f.Paths.Validate(); err != nil {
		return err
	}
	if err := f.Deps.Validate(); err != nil {
		return err
	}
	for name := range f.Definitions {
		if name == "" || strings.ContainsAny(name, " \t=") {
			return &Error{Kind: ErrInvalidCatalog, Entry: name, Detail: "invalid macro name"}
		}
	}
	return nil
}

// Base is the descriptor shared by every variant, plus the dependency
// fragment merged into editor builds.
type Base struct {
	Fragment
	Editor DependencySet
}

// Resolved is the result of resolving one build target. It must be treated
// as immutable once returned.
type Resolved struct {
	Generation  string // detected generation tag
	Variant     string // selected variant id
	Paths       PathSet
	Deps        DependencySet
	Definitions DefinitionSet
	Settings    Settings
}

// External is the descriptor in the shape the external build tool consumes.
type External struct {
	PublicIncludePaths           []string      `json:"publicIncludePaths" yaml:"publicIncludePaths"`
	PrivateIncludePaths          []string      `json:"privateIncludePaths" yaml:"privateIncludePaths"`
	PublicDependencyModuleNames  []string      `json:"publicDependencyModuleNames" yaml:"publicDependencyModuleNames"`
	PrivateDependencyModuleNames []string      `json:"privateDependencyModuleNames" yaml:"privateDependencyModuleNames"`
	DynamicallyLoadedModuleNames []string      `json:"dynamicallyLoadedModuleNames" yaml:"dynamicallyLoadedModuleNames"`
	Definitions                  DefinitionSet `json:"definitions" yaml:"definitions"`
	Settings                     *Settings     `json:"settings,omitempty" yaml:"settings,omitempty"`
}
