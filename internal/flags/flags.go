// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flags declares the feature toggles of a module and turns the
// toggles chosen by a caller into definitions, settings and extra
// dependencies.
package flags

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/goplus/modrules/descriptor"
)

// NoMacro as Flag.Macro suppresses the definition of a flag.
const NoMacro = "-"

// EnforceStrictIncludes is the built-in flag that drives the enforce_iwyu
// setting.
const EnforceStrictIncludes = "enforceStrictIncludes"

// Flag declares a feature toggle.
type Flag struct {
	Name    string
	Kind    Kind
	Default Value
	Choices []string // allowed enum values; empty allows any

	// Macro is the definition the value materializes as. Empty derives it
	// from Name (featureX -> FEATURE_X); NoMacro disables it.
	Macro string

	// Setting names a boolean descriptor setting that follows the flag.
	Setting string

	// WhenEnabled is merged into the descriptor when a bool flag is true.
	WhenEnabled descriptor.Fragment
}

// MacroName returns the macro the flag materializes as, or "".
func (f Flag) MacroName() string {
	switch f.Macro {
	case NoMacro:
		return ""
	case "":
		return MacroOf(f.Name)
	}
	return f.Macro
}

// MacroOf converts a camelCase flag name to an UPPER_SNAKE macro name.
func MacroOf(name string) string {
	rs := []rune(name)
	var b strings.Builder
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		if r == '-' || r == '.' {
			r = '_'
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func (f Flag) validate() error {
	fail := func(detail string) error {
		return &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Entry: f.Name, Detail: detail}
	}
	if f.Name == "" {
		return fail("flag without a name")
	}
	if f.Default.Kind() != f.Kind {
		return fail(fmt.Sprintf("default %q is not a %s", f.Default, f.Kind))
	}
	if f.Kind == KindEnum && len(f.Choices) > 0 && !slices.Contains(f.Choices, f.Default.String()) {
		return fail(fmt.Sprintf("default %q is not one of %v", f.Default, f.Choices))
	}
	if f.Setting != "" {
		if f.Kind != KindBool {
			return fail("only bool flags can drive a setting")
		}
		var s descriptor.Settings
		if err := s.SetBool(f.Setting, true); err != nil {
			return fail(err.Error())
		}
	}
	if err := f.WhenEnabled.Validate(); err != nil {
		return err
	}
	return nil
}

// Builtin returns the flags every catalog knows about. Module specific
// toggles are declared by the catalog itself.
func Builtin() []Flag {
	return []Flag{
		{
			Name:    EnforceStrictIncludes,
			Kind:    KindBool,
			Default: Bool(false),
			Macro:   NoMacro,
			Setting: "enforce_iwyu",
		},
	}
}

// -----------------------------------------------------------------------------

// Registry is an ordered, immutable collection of flag declarations.
type Registry struct {
	flags []Flag
}

// NewRegistry validates flags and returns a registry in declaration order.
func NewRegistry(flags ...Flag) (*Registry, error) {
	seen := make(map[string]bool, len(flags))
	macros := make(map[string]string, len(flags))
	for _, f := range flags {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, &descriptor.Error{Kind: descriptor.ErrInvalidCatalog, Entry: f.Name, Detail: "duplicate flag"}
		}
		seen[f.Name] = true
		if m := f.MacroName(); m != "" {
			if other, ok := macros[m]; ok {
				return nil, &descriptor.Error{
					Kind: descriptor.ErrInvalidCatalog, Entry: f.Name,
					Detail: fmt.Sprintf("macro %s is already driven by flag %s", m, other),
				}
			}
			macros[m] = f.Name
		}
	}
	return &Registry{flags: slices.Clone(flags)}, nil
}

// WithBuiltins returns a registry of the built-in flags followed by
// declared. A declared flag replaces the built-in flag of the same name.
func WithBuiltins(declared ...Flag) (*Registry, error) {
	all := Builtin()
	for _, f := range declared {
		if i := slices.IndexFunc(all, func(b Flag) bool { return b.Name == f.Name }); i >= 0 {
			all[i] = f
			continue
		}
		all = append(all, f)
	}
	return NewRegistry(all...)
}

// Flags returns the declarations in order.
func (r *Registry) Flags() []Flag {
	return slices.Clone(r.flags)
}

// Lookup returns the declaration of name.
func (r *Registry) Lookup(name string) (Flag, bool) {
	i := slices.IndexFunc(r.flags, func(f Flag) bool { return f.Name == name })
	if i < 0 {
		return Flag{}, false
	}
	return r.flags[i], true
}

// Apply fills in defaults for the flags set does not mention and checks the
// ones it does. Names unknown to the registry are ignored.
func (r *Registry) Apply(set Set) (*Effective, error) {
	e := &Effective{flags: r.flags, values: make([]Value, len(r.flags)), explicit: make([]bool, len(r.flags))}
	for i, f := range r.flags {
		v, ok := set[f.Name]
		if !ok {
			e.values[i] = f.Default
			continue
		}
		e.explicit[i] = true
		if f.Kind == KindEnum && v.Kind() == KindBool {
			v = Enum(v.String())
		}
		if v.Kind() != f.Kind {
			return nil, &descriptor.Error{
				Kind: descriptor.ErrInvalidFlag, Entry: f.Name,
				Detail: fmt.Sprintf("%q is not a %s", v, f.Kind),
			}
		}
		if f.Kind == KindEnum && len(f.Choices) > 0 && !slices.Contains(f.Choices, v.String()) {
			return nil, &descriptor.Error{
				Kind: descriptor.ErrInvalidFlag, Entry: f.Name,
				Detail: fmt.Sprintf("%q is not one of %v", v, f.Choices),
			}
		}
		e.values[i] = v
	}
	for name := range set {
		if _, ok := r.Lookup(name); !ok {
			e.ignored = append(e.ignored, name)
		}
	}
	sort.Strings(e.ignored)
	return e, nil
}

// -----------------------------------------------------------------------------

// Effective holds the value of every declared flag for one resolution.
type Effective struct {
	flags    []Flag
	values   []Value
	explicit []bool // set by the caller rather than defaulted
	ignored  []string
}

// Contribution is the fragment an enabled flag adds to a descriptor.
type Contribution struct {
	Flag     string
	Fragment descriptor.Fragment
}

// Value returns the effective value of name.
func (e *Effective) Value(name string) (Value, bool) {
	for i, f := range e.flags {
		if f.Name == name {
			return e.values[i], true
		}
	}
	return Value{}, false
}

// Ignored returns the names the caller set that no flag declares.
func (e *Effective) Ignored() []string {
	return slices.Clone(e.ignored)
}

// Definitions materializes every flag with a macro: booleans as 1 or 0,
// enums as their string value.
func (e *Effective) Definitions() descriptor.DefinitionSet {
	defs := make(descriptor.DefinitionSet)
	for i, f := range e.flags {
		macro := f.MacroName()
		if macro == "" {
			continue
		}
		v := e.values[i]
		if v.Kind() == KindBool {
			defs[macro] = descriptor.BoolValue(v.Enabled())
		} else {
			defs[macro] = descriptor.StringValue(v.String())
		}
	}
	return defs
}

// Contributions returns the fragments of the enabled bool flags, in
// declaration order.
func (e *Effective) Contributions() []Contribution {
	var out []Contribution
	for i, f := range e.flags {
		if e.values[i].Enabled() {
			out = append(out, Contribution{Flag: f.Name, Fragment: f.WhenEnabled})
		}
	}
	return out
}

// ApplySettings sets every setting driven by a flag the caller set to the
// flag's value. Settings of defaulted flags keep what the descriptor says.
func (e *Effective) ApplySettings(s descriptor.Settings) (descriptor.Settings, error) {
	for i, f := range e.flags {
		if f.Setting == "" || !e.explicit[i] {
			continue
		}
		if err := s.SetBool(f.Setting, e.values[i].Enabled()); err != nil {
			return descriptor.Settings{}, &descriptor.Error{Kind: descriptor.ErrInvalidFlag, Entry: f.Name, Detail: err.Error()}
		}
	}
	return s, nil
}
