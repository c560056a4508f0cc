// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flags

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type of a feature flag.
type Kind int

const (
	KindBool Kind = iota
	KindEnum
)

func (k Kind) String() string {
	if k == KindEnum {
		return "enum"
	}
	return "bool"
}

// ParseKind parses "bool" or "enum"; the empty string means bool.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "bool":
		return KindBool, nil
	case "enum":
		return KindEnum, nil
	}
	return 0, fmt.Errorf("unknown flag kind %q", s)
}

// Value is the value of a feature flag.
type Value struct {
	kind Kind
	b    bool
	s    string
}

// Bool returns a boolean flag value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Enum returns an enum flag value.
func Enum(s string) Value {
	return Value{kind: KindEnum, s: s}
}

// ParseValue reads "true"/"false" (and the other spellings accepted by
// strconv.ParseBool) as booleans and anything else as an enum choice.
func ParseValue(s string) Value {
	if b, err := strconv.ParseBool(s); err == nil {
		return Bool(b)
	}
	return Enum(s)
}

func (v Value) Kind() Kind {
	return v.kind
}

// Enabled reports whether v is the boolean true.
func (v Value) Enabled() bool {
	return v.kind == KindBool && v.b
}

func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// Set is the caller-supplied mapping of flag names to values.
type Set map[string]Value

// ParseSet parses "name=value" pairs. A bare "name" means name=true.
func ParseSet(pairs []string) (Set, error) {
	set := make(Set, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid flag %q: want name=value", pair)
		}
		if !ok {
			set[name] = Bool(true)
			continue
		}
		set[name] = ParseValue(strings.TrimSpace(val))
	}
	return set, nil
}
