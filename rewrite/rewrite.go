// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rewrite implements a structural source migration engine.
//
// A rule Table holds declaration rules and call-site rules. Rewriting a file
// is two strict phases. The scan/rebuild pass (Table.Scan) rewrites every
// declaration and records a Binding for it. Then, for each binding, the
// call-site rules are applied to the uses of the bound name inside the
// binding's scope. Bindings whose scopes collide, or whose call sites
// cannot be rewritten without touching other rewritten text, are flagged
// for review and handled according to an UnresolvedPolicy.
//
// The engine does not parse the migrated language. Scope is approximated
// textually by a ScopePolicy.
package rewrite

import (
	"bytes"
	"fmt"
)

// Options control a rewrite.
type Options struct {
	// Unresolved says what to do with conflicting or partially
	// rewritable bindings. The zero value means Rollback.
	Unresolved UnresolvedPolicy
}

// A Result is the outcome of rewriting one file.
type Result struct {
	Path      string
	Original  []byte
	Rewritten []byte
	Bindings  []*Binding
	Changed   bool
	Problems  []*Problem

	// Replaced holds the spans of Rewritten produced by rules,
	// in increasing order.
	Replaced []Span
}

// Resolved returns the number of bindings whose call sites were all rewritten.
func (r *Result) Resolved() int {
	n := 0
	for _, b := range r.Bindings {
		if b.Resolved {
			n++
		}
	}
	return n
}

// Conflicted returns the number of bindings in conflict with another binding.
func (r *Result) Conflicted() int {
	n := 0
	for _, b := range r.Bindings {
		if b.Conflict {
			n++
		}
	}
	return n
}

// PartiallyResolved returns the number of bindings with call sites left alone.
func (r *Result) PartiallyResolved() int {
	n := 0
	for _, b := range r.Bindings {
		if b.Partial && !b.Conflict {
			n++
		}
	}
	return n
}

// NeedsReview reports whether any binding is unresolved.
func (r *Result) NeedsReview() bool {
	return len(r.Problems) > 0
}

// Rewrite rewrites src, the content of the file named path.
//
// The only errors are configuration errors in t and ErrNotIdempotent,
// returned when the rewritten text would be changed again by another pass.
// Problems with individual bindings are reported in the Result.
func (t *Table) Rewrite(path string, src []byte, opts Options) (*Result, error) {
	res, err := t.pass(path, src, opts)
	if err != nil {
		return nil, err
	}
	if res.Changed {
		again, err := t.pass(path, res.Rewritten, opts)
		if err != nil {
			return nil, err
		}
		if again.Changed {
			return nil, fmt.Errorf("%s: %w", path, ErrNotIdempotent)
		}
	}
	return res, nil
}

func (t *Table) pass(path string, src []byte, opts Options) (*Result, error) {
	policy := opts.Unresolved
	if policy == "" {
		policy = Rollback
	}
	if !policy.Valid() {
		return nil, configErrorf("", "unknown unresolved policy %q", policy)
	}

	scanned, bindings, err := t.Scan(src)
	if err != nil {
		return nil, err
	}
	pos := func(off int) Position {
		return position(path, src, originalOffset(bindings, off))
	}
	out, spans, probs, err := t.propagate(scanned, bindings, policy, pos)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:      path,
		Original:  src,
		Rewritten: out,
		Bindings:  bindings,
		Changed:   !bytes.Equal(src, out),
		Problems:  probs,
		Replaced:  spans,
	}, nil
}

// originalOffset maps an offset in the output of Scan back to the
// original text. Offsets inside a rewritten declaration map to its start.
func originalOffset(bindings []*Binding, off int) int {
	delta := 0
	for _, b := range bindings {
		switch {
		case off >= b.Emitted.End:
			delta += b.Decl.Len() - b.Emitted.Len()
		case off >= b.Emitted.Start:
			return b.Decl.Start
		default:
			return off + delta
		}
	}
	return off + delta
}
