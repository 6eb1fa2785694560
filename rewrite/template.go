// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// A template is text with ${name} placeholders.
// $$ stands for a single $. A $ not followed by $ or { is kept as is,
// so a pattern template can still use it as the end-of-text anchor.
// A malformed ${...} placeholder is an error.
type template struct {
	src  string
	segs []segment
}

// A segment is either literal text or, when name is set, a placeholder.
type segment struct {
	lit  string
	name string
}

var isName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func parseTemplate(s string) (*template, error) {
	t := &template{src: s}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{lit: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' {
			lit.WriteByte(c)
			continue
		}
		switch {
		case i+1 < len(s) && s[i+1] == '$':
			lit.WriteByte('$')
			i++
		case i+1 < len(s) && s[i+1] == '{':
			j := strings.IndexByte(s[i:], '}')
			if j < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			name := s[i+2 : i+j]
			if !isName.MatchString(name) {
				return nil, fmt.Errorf("invalid placeholder ${%s}", name)
			}
			flush()
			t.segs = append(t.segs, segment{name: name})
			i += j
		default:
			// A bare $ is the end-of-text anchor when the template is a pattern.
			lit.WriteByte('$')
		}
	}
	flush()
	return t, nil
}

// names returns the placeholder names in order of first use.
func (t *template) names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, seg := range t.segs {
		if seg.name != "" && !seen[seg.name] {
			seen[seg.name] = true
			names = append(names, seg.name)
		}
	}
	return names
}

// has reports whether every placeholder of t is a key of vals.
func (t *template) has(vals map[string]string) bool {
	for _, seg := range t.segs {
		if seg.name == "" {
			continue
		}
		if _, ok := vals[seg.name]; !ok {
			return false
		}
	}
	return true
}

// expand substitutes vals into t. If quote is set the values are
// quoted as regular expression literals.
func (t *template) expand(vals map[string]string, quote bool) (string, error) {
	var b strings.Builder
	for _, seg := range t.segs {
		if seg.name == "" {
			b.WriteString(seg.lit)
			continue
		}
		v, ok := vals[seg.name]
		if !ok {
			return "", fmt.Errorf("template %q: no value for ${%s}", t.src, seg.name)
		}
		if quote {
			v = regexp.QuoteMeta(v)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// probe returns t with every placeholder replaced by a plain identifier,
// so a pattern template can be compiled and checked before it is used.
func (t *template) probe() string {
	var b strings.Builder
	for _, seg := range t.segs {
		if seg.name == "" {
			b.WriteString(seg.lit)
		} else {
			b.WriteString("x")
		}
	}
	return b.String()
}
