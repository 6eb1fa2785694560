// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

// DefaultSpec migrates Zig std.ArrayList values that take an allocator at
// every call to the context-bound List(T) wrapper, which is given its
// allocator once:
//
//	var xs = std.ArrayList(u8).init(alloc);   var xs = List(u8).with(alloc);
//	defer xs.deinit(alloc);              =>   defer xs.deinit();
//	try xs.append(alloc, 'a');                try xs.append('a');
//
// The literal and .empty declaration forms carry no allocator, so they are
// only migrated when a release call in scope names it.
var DefaultSpec = TableSpec{
	Version: "v1.0.0",
	Scope:   ScopeBlock,
	Rules: []RuleSpec{
		{
			ID:       "arraylist-init",
			Kind:     Declaration,
			Pattern:  `var\s+(?P<name>[A-Za-z_]\w*)\s*=\s*(?:std\.)?ArrayList\(\s*(?P<type>[^()]+?)\s*\)\.init\(\s*(?P<alloc>[A-Za-z_][\w.]*)\s*\)\s*;`,
			Template: `var ${name} = List(${type}).with(${alloc});`,
		},
		{
			ID:       "arraylist-literal",
			Kind:     Declaration,
			Pattern:  `var\s+(?P<name>[A-Za-z_]\w*)\s*=\s*(?:std\.)?ArrayList\(\s*(?P<type>[^()]+?)\s*\)\s*\{\s*\}\s*;`,
			Template: `var ${name} = List(${type}).with(${alloc});`,
			Release:  `(?:err)?defer\s+${name}\.deinit\(\s*(?P<alloc>[A-Za-z_][\w.]*)\s*\)\s*;`,
		},
		{
			ID:       "arraylist-empty",
			Kind:     Declaration,
			Pattern:  `var\s+(?P<name>[A-Za-z_]\w*)\s*:\s*(?:std\.)?ArrayList(?:Unmanaged)?\(\s*(?P<type>[^()]+?)\s*\)\s*=\s*\.(?:empty|\{\s*\})\s*;`,
			Template: `var ${name} = List(${type}).with(${alloc});`,
			Release:  `(?:err)?defer\s+${name}\.deinit\(\s*(?P<alloc>[A-Za-z_][\w.]*)\s*\)\s*;`,
		},
		{
			ID:       "append",
			Kind:     CallSite,
			Pattern:  `${name}\.append\(\s*${alloc}\s*,\s*`,
			Template: `${name}.append(`,
		},
		{
			ID:       "append-slice",
			Kind:     CallSite,
			Pattern:  `${name}\.appendSlice\(\s*${alloc}\s*,\s*`,
			Template: `${name}.appendSlice(`,
		},
		{
			ID:       "writer",
			Kind:     CallSite,
			Pattern:  `${name}\.writer\(\s*${alloc}\s*\)`,
			Template: `${name}.writer()`,
		},
		{
			ID:       "to-owned-slice",
			Kind:     CallSite,
			Pattern:  `${name}\.toOwnedSlice\(\s*${alloc}\s*\)`,
			Template: `${name}.toOwnedSlice()`,
		},
		{
			ID:       "deinit",
			Kind:     CallSite,
			Pattern:  `${name}\.deinit\(\s*${alloc}\s*\)`,
			Template: `${name}.deinit()`,
		},
	},
}

// Default returns the compiled DefaultSpec.
func Default() *Table {
	t, err := NewTable(DefaultSpec)
	if err != nil {
		panic("rewrite: default table: " + err.Error())
	}
	return t
}
