// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package module defines the module.Version type along with support code.
package module

import "fmt"

// A Version identifies one release of a host API, for example
// {Path: "UnrealEngine", Version: "5.1"}.
type Version struct {
	Path    string // Host identifier, e.g. "UnrealEngine"
	Version string // Opaque, totally ordered version token (e.g. "4.18")
}

// String returns "path@version".
func (v Version) String() string {
	if v.Path == "" {
		return v.Version
	}
	return fmt.Sprintf("%s@%s", v.Path, v.Version)
}

// VersionComparator compares two versions of the same host and returns:
//   - a negative value if v1 < v2
//   - zero if v1 == v2
//   - a positive value if v1 > v2
type VersionComparator func(v1, v2 Version) int
