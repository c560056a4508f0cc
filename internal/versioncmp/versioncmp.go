// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package versioncmp provides the orderings a catalog may choose for its
// host version tokens.
package versioncmp

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"unsafe"

	"github.com/goplus/ixgo"
	"github.com/goplus/ixgo/xgobuild"
	"golang.org/x/mod/semver"

	classfile "github.com/goplus/modrules/internal/ixgo"
	"github.com/goplus/modrules/mod/module"
	"github.com/goplus/modrules/pkgs/gnu"
)

// Built-in comparator schemes.
const (
	SchemeGNU    = "gnu"
	SchemeSemver = "semver"
)

// GNU orders versions like GNU strverscmp. It accepts any token.
func GNU(v1, v2 module.Version) int {
	return gnu.Compare(v1.Version, v2.Version)
}

// Semver orders versions by semantic versioning. The leading "v" is
// optional and "4.18" is read as "v4.18.0". Invalid tokens sort below every
// valid one.
func Semver(v1, v2 module.Version) int {
	return semver.Compare(canonical(v1.Version), canonical(v2.Version))
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Load returns the comparator described by spec: "gnu" (also the default
// for an empty spec), "semver", or the path of a *_cmp.gox classfile.
// Relative classfile paths are resolved against baseDir.
func Load(spec, baseDir string) (module.VersionComparator, error) {
	switch spec {
	case "", SchemeGNU:
		return GNU, nil
	case SchemeSemver:
		return Semver, nil
	}
	if !strings.HasSuffix(spec, classfile.ComparatorExt) {
		return nil, fmt.Errorf("unknown version comparator %q: want %q, %q or a *%s file",
			spec, SchemeGNU, SchemeSemver, classfile.ComparatorExt)
	}
	path := spec
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	return loadClassfile(path)
}

// loadClassfile interprets a *_cmp.gox file and returns the comparator it
// registers through compareVer.
func loadClassfile(path string) (comparator module.VersionComparator, err error) {
	ctx := ixgo.NewContext(0)

	source, err := xgobuild.BuildFile(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	pkgs, err := ctx.LoadFile("main.go", source)
	if err != nil {
		return nil, err
	}
	interp, err := ctx.NewInterp(pkgs)
	if err != nil {
		return nil, err
	}
	if err = interp.RunInit(); err != nil {
		return nil, err
	}
	structName, _, ok := strings.Cut(filepath.Base(path), "_")
	if !ok {
		return nil, fmt.Errorf("failed to load comparator: file name is not valid: %s", path)
	}
	typ, ok := interp.GetType(structName)
	if !ok {
		return nil, fmt.Errorf("failed to load comparator: struct name not found: %s", structName)
	}
	val := reflect.New(typ)

	val.Interface().(interface{ Main() }).Main()

	fn, _ := valueOf(val.Elem(), "fCompareVer").(module.VersionComparator)
	if fn == nil {
		return nil, fmt.Errorf("failed to load comparator: %s does not call compareVer", path)
	}
	return fn, nil
}

// unexportValueOf makes an unexported field readable.
func unexportValueOf(field reflect.Value) reflect.Value {
	return reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
}

func valueOf(elem reflect.Value, name string) any {
	return unexportValueOf(elem.FieldByName(name)).Interface()
}
