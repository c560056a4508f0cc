// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package descriptor

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

// Value is the value of a preprocessor definition: a string or an integer.
type Value struct {
	isInt bool
	i     int64
	s     string
}

// IntValue returns an integer definition value.
func IntValue(i int64) Value {
	return Value{isInt: true, i: i}
}

// StringValue returns a string definition value.
func StringValue(s string) Value {
	return Value{s: s}
}

// BoolValue materializes a boolean as 1 or 0.
func BoolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool {
	return v.isInt
}

// Int returns the integer held by v, or 0 for string values.
func (v Value) Int() int64 {
	return v.i
}

// String returns the literal written after "MACRO=".
func (v Value) String() string {
	if v.isInt {
		return strconv.FormatInt(v.i, 10)
	}
	return v.s
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return json.Marshal(v.i)
	}
	return json.Marshal(v.s)
}

func (v Value) MarshalYAML() (any, error) {
	if v.isInt {
		return v.i, nil
	}
	return v.s, nil
}

// DefinitionSet maps macro names to values.
type DefinitionSet map[string]Value

// Clone returns a copy of d; the copy of a nil set is an empty set.
func (d DefinitionSet) Clone() DefinitionSet {
	out := make(DefinitionSet, len(d))
	maps.Copy(out, d)
	return out
}

// Override returns d with every entry of o applied on top of it.
func (d DefinitionSet) Override(o DefinitionSet) DefinitionSet {
	out := d.Clone()
	maps.Copy(out, o)
	return out
}

// Names returns the macro names in sorted order.
func (d DefinitionSet) Names() []string {
	return slices.Sorted(maps.Keys(d))
}

// Pairs returns "NAME=value" strings in name order.
func (d DefinitionSet) Pairs() []string {
	names := d.Names()
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name+"="+d[name].String())
	}
	return out
}
