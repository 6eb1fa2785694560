// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

// Scan runs the scan/rebuild pass over src. It returns src with every
// declaration rewritten and one Binding per rewritten declaration, in
// order.
//
// The pass is a single left-to-right walk. Each step finds the leftmost
// declaration match in the unconsumed suffix, copies the text before it,
// emits the rewritten declaration and resumes after the match, so the
// engine never looks at its own output.
func (t *Table) Scan(src []byte) ([]byte, []*Binding, error) {
	var (
		out      []byte
		bindings []*Binding
		pos      int // copied up to here
		from     int // searching from here
		skip     map[*Rule]int
	)
	for {
		r, m, err := t.nextDecl(src, from, skip)
		if err != nil {
			return nil, nil, err
		}
		if m == nil {
			out = append(out, src[pos:]...)
			break
		}

		params := m.Captures
		if r.release != nil {
			rel, err := t.findRelease(src, r, m)
			if err != nil {
				return nil, nil, err
			}
			if rel == nil {
				// Not paired with a release call: leave it alone.
				// Other rules may still match inside it.
				if skip == nil {
					skip = make(map[*Rule]int)
				}
				skip[r] = m.Span.End
				from = m.Span.Start + 1
				continue
			}
			params = merge(m.Captures, rel.Captures)
		}

		text, err := r.repl.expand(params, false)
		if err != nil {
			return nil, nil, configErrorf(r.ID(), "%v", err)
		}
		out = append(out, src[pos:m.Span.Start]...)
		start := len(out)
		out = append(out, text...)
		bindings = append(bindings, &Binding{
			Var:      params[r.bind],
			Params:   params,
			Rule:     r.ID(),
			Decl:     m.Span,
			Emitted:  Span{start, len(out)},
			rule:     r,
			original: string(m.Span.In(src)),
		})
		pos, from = m.Span.End, m.Span.End
	}
	return out, bindings, nil
}

// nextDecl returns the leftmost declaration match at or after from.
// Ties go to the earlier rule. A rule in skip is searched from no earlier
// than its entry, the end of its last rejected match.
func (t *Table) nextDecl(src []byte, from int, skip map[*Rule]int) (*Rule, *Match, error) {
	var (
		best     *Match
		bestRule *Rule
	)
	for _, r := range t.decls {
		start := max(from, skip[r])
		if start > len(src) {
			continue
		}
		m := r.Match(src, start)
		if m == nil {
			continue
		}
		if m.Span.Empty() {
			return nil, nil, configErrorf(r.ID(), "pattern matched the empty string at offset %d", m.Span.Start)
		}
		if best == nil || m.Span.Start < best.Span.Start {
			best, bestRule = m, r
		}
	}
	return bestRule, best, nil
}

// findRelease looks for the release call paired with declaration match m,
// within the declaration's scope in src.
func (t *Table) findRelease(src []byte, r *Rule, m *Match) (*Match, error) {
	re, err := t.compile(r, r.release, m.Captures)
	if err != nil {
		return nil, err
	}
	end := len(src)
	if r.scope == ScopeBlock {
		end = blockEnd(src, m.Span.End)
	}
	return findFirst(re, src, m.Span.End, end), nil
}

// merge returns the union of a and b. Keys in a win.
func merge(a, b map[string]string) map[string]string {
	m := make(map[string]string, len(a)+len(b))
	for k, v := range b {
		m[k] = v
	}
	for k, v := range a {
		m[k] = v
	}
	return m
}
