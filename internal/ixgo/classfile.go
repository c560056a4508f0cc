// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ixgo registers the classfiles understood by modrules and the
// packages they may use with the ixgo interpreter. Import it for side
// effects before building a classfile.
package ixgo

import (
	"github.com/goplus/ixgo/xgobuild"
	"github.com/goplus/mod/modfile"

	_ "github.com/goplus/modrules/internal/ixgo/pkg/github.com/goplus/modrules/cmp"
	_ "github.com/goplus/modrules/internal/ixgo/pkg/github.com/goplus/modrules/mod/module"
	_ "github.com/goplus/modrules/internal/ixgo/pkg/github.com/goplus/modrules/pkgs/gnu"
	_ "github.com/goplus/modrules/internal/ixgo/pkg/golang.org/x/mod/semver"
)

// ComparatorExt is the file suffix of version comparator classfiles.
const ComparatorExt = "_cmp.gox"

func init() {
	xgobuild.RegisterProject(&modfile.Project{
		Ext:   ComparatorExt,
		Class: "CmpApp",
		PkgPaths: []string{
			"github.com/goplus/modrules/cmp",
		},
		Import: []*modfile.Import{
			{
				Name: "semver",
				Path: "golang.org/x/mod/semver",
			},
			{
				Name: "gnu",
				Path: "github.com/goplus/modrules/pkgs/gnu",
			},
		},
	})
}
