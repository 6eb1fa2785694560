// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"regexp"
)

// A RuleKind says how the engine applies a rule.
type RuleKind string

const (
	// Declaration rules introduce bindings. They run in the scan/rebuild pass.
	Declaration RuleKind = "declaration"
	// CallSite rules run once per binding, inside that binding's scope.
	CallSite RuleKind = "callsite"
)

// A ScopePolicy decides how far a binding's call-site rewrites reach.
type ScopePolicy string

const (
	// ScopeBlock ends the scope at the brace closing the block that
	// encloses the declaration, or at the end of the buffer.
	ScopeBlock ScopePolicy = "block"
	// ScopeBuffer extends the scope to the end of the buffer.
	ScopeBuffer ScopePolicy = "buffer"
	// ScopeMarker ends the scope after the first match of the rule's
	// scope_end pattern, or at the end of the buffer.
	ScopeMarker ScopePolicy = "marker"
)

func (p ScopePolicy) valid() bool {
	switch p {
	case ScopeBlock, ScopeBuffer, ScopeMarker:
		return true
	}
	return false
}

// A RuleSpec is the declarative form of a rule, as written in a rule file.
//
// Declaration rules have a regular expression Pattern with named captures.
// Call-site rules have a pattern template: ${name} placeholders are filled
// with the binding's parameters, quoted, before the pattern is compiled.
// In both kinds Template is the replacement text, with ${name} placeholders
// for captures and binding parameters.
type RuleSpec struct {
	ID       string   `yaml:"id"`
	Kind     RuleKind `yaml:"kind"`
	Pattern  string   `yaml:"pattern"`
	Template string   `yaml:"template"`

	// Declaration rules only.
	Bind     string      `yaml:"bind,omitempty"`      // capture naming the variable; default "name"
	Release  string      `yaml:"release,omitempty"`   // pattern template of the paired release call
	Scope    ScopePolicy `yaml:"scope,omitempty"`     // default: the table's scope
	ScopeEnd string      `yaml:"scope_end,omitempty"` // pattern template, with ScopeMarker
}

// A Rule is a compiled RuleSpec. Rules are immutable and safe for
// concurrent use.
type Rule struct {
	spec     RuleSpec
	re       *regexp.Regexp // declaration pattern
	pattern  *template      // call-site pattern
	captures []string
	repl     *template
	release  *template
	scopeEnd *template
	scope    ScopePolicy
	bind     string
}

func (r *Rule) ID() string { return r.spec.ID }

func (r *Rule) Kind() RuleKind { return r.spec.Kind }

// Spec returns the declarative form r was compiled from.
func (r *Rule) Spec() RuleSpec { return r.spec }

// Captures returns the names of the rule's own capture groups, in order.
func (r *Rule) Captures() []string {
	return append([]string(nil), r.captures...)
}

// Scope returns the effective scope policy of a declaration rule.
func (r *Rule) Scope() ScopePolicy { return r.scope }

// zeroWidthProbes are inputs on which a usable pattern must not produce an
// empty match. Catching that at load time keeps the scan loop from spinning.
var zeroWidthProbes = []string{"", " ", "\n", "x", "x = 1;\n", "}\n"}

func matchesEmpty(re *regexp.Regexp) bool {
	for _, p := range zeroWidthProbes {
		for _, loc := range re.FindAllStringIndex(p, -1) {
			if loc[0] == loc[1] {
				return true
			}
		}
	}
	return false
}

func namedCaptures(re *regexp.Regexp) []string {
	var names []string
	for _, n := range re.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// compileRule compiles the parts of spec that do not depend on the rest
// of the table. Placeholder checks that need the whole table are done by NewTable.
func compileRule(spec RuleSpec, scope ScopePolicy) (*Rule, error) {
	r := &Rule{spec: spec}
	if spec.ID == "" {
		return nil, configErrorf("", "rule with pattern %q has no id", spec.Pattern)
	}
	if spec.Pattern == "" {
		return nil, configErrorf(spec.ID, "empty pattern")
	}
	var err error
	if r.repl, err = parseTemplate(spec.Template); err != nil {
		return nil, configErrorf(spec.ID, "template: %v", err)
	}

	switch spec.Kind {
	case Declaration:
		if r.re, err = regexp.Compile(spec.Pattern); err != nil {
			return nil, configErrorf(spec.ID, "pattern: %v", err)
		}
		if matchesEmpty(r.re) {
			return nil, configErrorf(spec.ID, "pattern %q can match the empty string", spec.Pattern)
		}
		r.captures = namedCaptures(r.re)
		r.bind = spec.Bind
		if r.bind == "" {
			r.bind = "name"
		}
		if !contains(r.captures, r.bind) {
			return nil, configErrorf(spec.ID, "bind: pattern has no capture named %q", r.bind)
		}
		r.scope = spec.Scope
		if r.scope == "" {
			r.scope = scope
		}
		if !r.scope.valid() {
			return nil, configErrorf(spec.ID, "unknown scope policy %q", r.scope)
		}
		if spec.Release != "" {
			if r.release, err = compilePatternTemplate(spec.ID, "release", spec.Release); err != nil {
				return nil, err
			}
		}
		switch {
		case r.scope == ScopeMarker && spec.ScopeEnd == "":
			return nil, configErrorf(spec.ID, "scope %q needs scope_end", ScopeMarker)
		case r.scope != ScopeMarker && spec.ScopeEnd != "":
			return nil, configErrorf(spec.ID, "scope_end is only used with scope %q", ScopeMarker)
		case spec.ScopeEnd != "":
			if r.scopeEnd, err = compilePatternTemplate(spec.ID, "scope_end", spec.ScopeEnd); err != nil {
				return nil, err
			}
		}

	case CallSite:
		if spec.Bind != "" || spec.Release != "" || spec.Scope != "" || spec.ScopeEnd != "" {
			return nil, configErrorf(spec.ID, "bind, release, scope and scope_end apply to declaration rules only")
		}
		if r.pattern, err = compilePatternTemplate(spec.ID, "pattern", spec.Pattern); err != nil {
			return nil, err
		}
		if len(r.pattern.names()) == 0 {
			return nil, configErrorf(spec.ID, "pattern %q does not reference the binding", spec.Pattern)
		}
		re := regexp.MustCompile(r.pattern.probe())
		r.captures = namedCaptures(re)

	default:
		return nil, configErrorf(spec.ID, "unknown kind %q", spec.Kind)
	}
	return r, nil
}

// compilePatternTemplate parses a pattern template and checks that it
// compiles and cannot match the empty string once its placeholders are filled.
func compilePatternTemplate(id, field, src string) (*template, error) {
	t, err := parseTemplate(src)
	if err != nil {
		return nil, configErrorf(id, "%s: %v", field, err)
	}
	re, err := regexp.Compile(t.probe())
	if err != nil {
		return nil, configErrorf(id, "%s: %v", field, err)
	}
	if matchesEmpty(re) {
		return nil, configErrorf(id, "%s %q can match the empty string", field, src)
	}
	return t, nil
}

// A Match is one match of a rule: its span and its named captures.
type Match struct {
	Span     Span
	Captures map[string]string
}

// Match returns the leftmost match of a declaration rule in buf at or
// after from, or nil. Only buf[from:] is examined.
func (r *Rule) Match(buf []byte, from int) *Match {
	return find(r.re, buf, from, len(buf))
}

// find returns the leftmost match of re in buf[from:to], in buf coordinates.
func find(re *regexp.Regexp, buf []byte, from, to int) *Match {
	loc := re.FindSubmatchIndex(buf[from:to])
	if loc == nil {
		return nil
	}
	return newMatch(re, buf, from, loc)
}

func newMatch(re *regexp.Regexp, buf []byte, base int, loc []int) *Match {
	m := &Match{
		Span:     Span{base + loc[0], base + loc[1]},
		Captures: make(map[string]string),
	}
	for i, name := range re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		m.Captures[name] = string(buf[base+loc[2*i] : base+loc[2*i+1]])
	}
	return m
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
