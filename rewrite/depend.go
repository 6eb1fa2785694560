// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"
	"sort"

	"rsc.io/unalloc/edit"
)

// An UnresolvedPolicy decides what happens to a binding whose call sites
// cannot all be rewritten: one in conflict with another binding, or one
// with a call site that overlaps other rewritten text.
type UnresolvedPolicy string

const (
	// Rollback restores the original declaration and rewrites none of
	// the binding's call sites.
	Rollback UnresolvedPolicy = "rollback"
	// Keep leaves the declaration rewritten, along with every call site
	// that could be rewritten safely.
	Keep UnresolvedPolicy = "keep"
)

func (p UnresolvedPolicy) Valid() bool {
	return p == Rollback || p == Keep
}

// A callEdit is a pending call-site rewrite of the declaration-rewritten text.
type callEdit struct {
	span  Span
	text  string
	owner *Binding
	rule  string
}

// propagate rewrites the call sites of every binding in buf, the output of
// Scan. Bindings are processed in declaration order and, for each binding,
// call-site rules in table order; an edit never overlaps one collected
// before it.
//
// It returns the final text and the spans of replacement text in it.
// Problems are positioned by pos, which maps offsets of buf to the original text.
func (t *Table) propagate(buf []byte, bindings []*Binding, policy UnresolvedPolicy, pos func(int) Position) ([]byte, []Span, []*Problem, error) {
	for _, b := range bindings {
		if err := t.setScope(buf, b); err != nil {
			return nil, nil, nil, err
		}
	}
	probs := markConflicts(bindings, pos)

	// Collect every binding's edits before deciding anything: a call site
	// of one binding can make another binding unresolved.
	pending := make([][]callEdit, len(bindings))
	var all []callEdit
	for i, b := range bindings {
		if b.Conflict {
			continue
		}
		var err error
		pending[i], probs, err = t.callEdits(buf, b, bindings, all, probs, pos)
		if err != nil {
			return nil, nil, nil, err
		}
		all = append(all, pending[i]...)
	}

	eb := edit.NewBuffer(buf)
	var done []callEdit
	for i, b := range bindings {
		b.Resolved = !b.Conflict && !b.Partial
		if !b.Resolved && policy == Rollback {
			if err := eb.Replace(b.Emitted.Start, b.Emitted.End, b.original); err != nil {
				return nil, nil, nil, fmt.Errorf("restoring %s: %v", b.Var, err)
			}
			b.RolledBack = true
			continue
		}
		for _, e := range pending[i] {
			if err := eb.Replace(e.span.Start, e.span.End, e.text); err != nil {
				return nil, nil, nil, fmt.Errorf("rewriting %s: %v", b.Var, err)
			}
		}
		b.Rewrites = len(pending[i])
		done = append(done, pending[i]...)
	}

	var spans []Span
	for _, b := range bindings {
		if !b.RolledBack {
			start := eb.Map(b.Emitted.Start)
			spans = append(spans, Span{start, start + b.Emitted.Len()})
		}
	}
	for _, e := range done {
		start := eb.Map(e.span.Start)
		spans = append(spans, Span{start, start + len(e.text)})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return eb.Bytes(), spans, probs, nil
}

// callEdits collects the call-site rewrites of b inside its scope.
// Matches that overlap a rewritten declaration or an edit in prior are
// skipped and mark b partial. The binding on the other side of the overlap
// is marked partial too: a declaration holding a call site of b, or the
// owner of the edit in prior. Restoring one side but not the other would
// leave text that a later pass rewrites differently.
func (t *Table) callEdits(buf []byte, b *Binding, bindings []*Binding, prior []callEdit, probs []*Problem, pos func(int) Position) ([]callEdit, []*Problem, error) {
	var pending []callEdit
	partial := func(x *Binding, s Span, msg string) {
		x.Partial = true
		probs = append(probs, &Problem{Pos: pos(s.Start), Kind: Partial, Var: x.Var, Msg: x.Var + ": " + msg})
	}

	for _, r := range t.calls {
		if !r.pattern.has(b.Params) {
			continue
		}
		re, err := t.compile(r, r.pattern, b.Params)
		if err != nil {
			return nil, nil, err
		}
	Matches:
		for _, m := range findAll(re, buf, b.Scope.Start, b.Scope.End) {
			for _, d := range bindings {
				if m.Span.Overlaps(d.Emitted) {
					partial(b, m.Span, fmt.Sprintf("%s call overlaps rewritten declaration of %s", r.ID(), d.Var))
					if d != b {
						partial(d, d.Emitted, fmt.Sprintf("declaration contains a %s call of %s", r.ID(), b.Var))
					}
					continue Matches
				}
			}
			vals := merge(m.Captures, b.Params)
			if !r.repl.has(vals) {
				continue
			}
			text, err := r.repl.expand(vals, false)
			if err != nil {
				return nil, nil, configErrorf(r.ID(), "%v", err)
			}
			if text == string(m.Span.In(buf)) {
				continue
			}
			if e := overlapping(prior, m.Span); e != nil {
				partial(b, m.Span, fmt.Sprintf("%s call overlaps a %s call of %s", r.ID(), e.rule, e.owner.Var))
				partial(e.owner, e.span, fmt.Sprintf("%s call overlaps a %s call of %s", e.rule, r.ID(), b.Var))
				continue
			}
			if overlapping(pending, m.Span) != nil {
				partial(b, m.Span, r.ID()+" call overlaps an earlier rewrite")
				continue
			}
			pending = append(pending, callEdit{m.Span, text, b, r.ID()})
		}
	}
	return pending, probs, nil
}

// overlapping returns the first edit overlapping s, or nil.
func overlapping(edits []callEdit, s Span) *callEdit {
	for i := range edits {
		if edits[i].span.Overlaps(s) {
			return &edits[i]
		}
	}
	return nil
}
