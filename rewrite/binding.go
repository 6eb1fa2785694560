// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "fmt"

// A Binding links a rewritten declaration to the call sites in its scope.
//
// Decl is a span of the original text. Emitted and Scope are spans of the
// text produced by the scan/rebuild pass, before call sites are rewritten.
type Binding struct {
	Var     string
	Params  map[string]string
	Rule    string
	Decl    Span
	Emitted Span
	Scope   Span

	Resolved   bool
	Conflict   bool
	Partial    bool
	RolledBack bool
	Rewrites   int // call sites rewritten

	rule     *Rule
	original string
}

func (b *Binding) String() string {
	state := "resolved"
	switch {
	case b.Conflict:
		state = "conflict"
	case b.Partial:
		state = "partial"
	}
	return fmt.Sprintf("%s %s %s rewrites=%d", b.Var, b.Rule, state, b.Rewrites)
}

// setScope computes b.Scope in buf, the declaration-rewritten text.
func (t *Table) setScope(buf []byte, b *Binding) error {
	start := b.Emitted.End
	end := len(buf)
	switch b.rule.scope {
	case ScopeBlock:
		end = blockEnd(buf, start)
	case ScopeMarker:
		re, err := t.compile(b.rule, b.rule.scopeEnd, b.Params)
		if err != nil {
			return err
		}
		if m := findFirst(re, buf, start, end); m != nil {
			end = m.Span.End
		}
	}
	b.Scope = Span{start, end}
	return nil
}

// sharesScope reports whether a and b, bound to the same name, could be
// referenced by the same call site.
func sharesScope(a, b *Binding) bool {
	if a.Var != b.Var {
		return false
	}
	return a.Scope.Overlaps(b.Scope) ||
		a.Scope.Contains(b.Emitted.Start) ||
		b.Scope.Contains(a.Emitted.Start)
}

// markConflicts flags every pair of bindings that share a name and scope.
// It returns one problem per conflicting binding, positioned by pos at
// its declaration.
func markConflicts(bindings []*Binding, pos func(off int) Position) []*Problem {
	var probs []*Problem
	for i, a := range bindings {
		for _, b := range bindings[i+1:] {
			if !sharesScope(a, b) {
				continue
			}
			for _, x := range [...]struct{ self, other *Binding }{{a, b}, {b, a}} {
				x.self.Conflict = true
				probs = append(probs, &Problem{
					Pos:  pos(x.self.Emitted.Start),
					Kind: Conflict,
					Var:  x.self.Var,
					Msg:  fmt.Sprintf("%s: scope overlaps declaration at %s", x.self.Var, lineCol(pos(x.other.Emitted.Start))),
				})
			}
		}
	}
	return probs
}

func lineCol(p Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
