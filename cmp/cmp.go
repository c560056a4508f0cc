// Copyright 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmp is the classfile base of *_cmp.gox files, which let a catalog
// author describe how the host's version tokens are ordered:
//
//	compareVer (v1, v2) => {
//		return gnu.Compare(v1.Version, v2.Version)
//	}
package cmp

import "github.com/goplus/modrules/mod/module"

const GopPackage = true

// CmpApp is the class of a version comparator classfile.
type CmpApp struct {
	fCompareVer module.VersionComparator
}

// CompareVer sets the comparator used to order host version tokens.
func (f *CmpApp) CompareVer(fn module.VersionComparator) {
	f.fCompareVer = fn
}

// Comparator returns the comparator set by the classfile, or nil.
func (f *CmpApp) Comparator() module.VersionComparator {
	return f.fCompareVer
}

func Gopt_CmpApp_Main(this interface{ MainEntry() }) {
	this.MainEntry()
}
