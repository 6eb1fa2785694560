// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/mod/semver"
)

// A TableSpec is the declarative form of a rule table.
type TableSpec struct {
	// Version is the semantic version of the table, such as "v1.2.0".
	Version string `yaml:"version"`
	// Scope is the default scope policy of declaration rules.
	Scope ScopePolicy `yaml:"scope,omitempty"`
	// Rules in application order. Declaration rules are tried leftmost
	// first with ties going to the earlier rule; call-site rules apply in
	// this order to each binding.
	Rules []RuleSpec `yaml:"rules"`
}

// A Table is a compiled, immutable rule table. It is safe for concurrent
// use by any number of file workers.
type Table struct {
	version string
	decls   []*Rule
	calls   []*Rule

	// patterns caches call-site and release patterns after expansion
	// with binding parameters. The cache is internally synchronized.
	patterns *lru.Cache[string, *regexp.Regexp]
}

const patternCacheSize = 1024

// NewTable compiles spec. Every problem with spec is reported as a *ConfigError.
func NewTable(spec TableSpec) (*Table, error) {
	if spec.Version == "" {
		return nil, configErrorf("", "missing version")
	}
	if !semver.IsValid(spec.Version) {
		return nil, configErrorf("", "version %q is not a semantic version", spec.Version)
	}
	scope := spec.Scope
	if scope == "" {
		scope = ScopeBlock
	}
	if !scope.valid() {
		return nil, configErrorf("", "unknown scope policy %q", scope)
	}

	t := &Table{version: semver.Canonical(spec.Version)}
	seen := make(map[string]bool)
	for _, rs := range spec.Rules {
		r, err := compileRule(rs, scope)
		if err != nil {
			return nil, err
		}
		if seen[r.ID()] {
			return nil, configErrorf(r.ID(), "duplicate rule id")
		}
		seen[r.ID()] = true
		if r.Kind() == Declaration {
			t.decls = append(t.decls, r)
		} else {
			t.calls = append(t.calls, r)
		}
	}
	if len(t.decls) == 0 {
		return nil, configErrorf("", "no declaration rules")
	}
	if err := t.checkPlaceholders(); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, *regexp.Regexp](patternCacheSize)
	if err != nil {
		return nil, err
	}
	t.patterns = cache
	return t, nil
}

// checkPlaceholders checks that every placeholder names something that
// will have a value when the template is expanded.
func (t *Table) checkPlaceholders() error {
	// Parameters any binding may carry.
	params := make(map[string]bool)
	for _, r := range t.decls {
		own := r.params()
		for _, tm := range []*template{r.repl, r.scopeEnd} {
			if tm == nil {
				continue
			}
			for _, name := range tm.names() {
				if !own[name] {
					return configErrorf(r.ID(), "template %q references undefined capture ${%s}", tm.src, name)
				}
			}
		}
		if r.release != nil {
			for _, name := range r.release.names() {
				if !contains(r.captures, name) {
					return configErrorf(r.ID(), "release %q references undefined capture ${%s}", r.release.src, name)
				}
			}
		}
		for name := range own {
			params[name] = true
		}
	}
	for _, r := range t.calls {
		for _, name := range r.pattern.names() {
			if !params[name] {
				return configErrorf(r.ID(), "pattern %q references ${%s}, which no declaration rule captures", r.pattern.src, name)
			}
		}
		for _, name := range r.repl.names() {
			if !params[name] && !contains(r.captures, name) {
				return configErrorf(r.ID(), "template %q references undefined capture ${%s}", r.repl.src, name)
			}
		}
	}
	return nil
}

// params returns the names a binding made by declaration rule r can carry:
// its own captures and those of its release pattern.
func (r *Rule) params() map[string]bool {
	m := make(map[string]bool)
	for _, c := range r.captures {
		m[c] = true
	}
	if r.release != nil {
		re := regexp.MustCompile(r.release.probe())
		for _, c := range namedCaptures(re) {
			m[c] = true
		}
	}
	return m
}

// Version returns the table's canonical semantic version.
func (t *Table) Version() string { return t.version }

// AtLeast reports whether the table's version is v or later.
func (t *Table) AtLeast(v string) bool {
	return semver.Compare(t.version, v) >= 0
}

// Declarations returns the declaration rules in table order.
func (t *Table) Declarations() []*Rule { return append([]*Rule(nil), t.decls...) }

// CallSites returns the call-site rules in table order.
func (t *Table) CallSites() []*Rule { return append([]*Rule(nil), t.calls...) }

// compile expands pattern template tm with vals and compiles the result,
// consulting the table's cache first.
func (t *Table) compile(r *Rule, tm *template, vals map[string]string) (*regexp.Regexp, error) {
	expr, err := tm.expand(vals, true)
	if err != nil {
		return nil, configErrorf(r.ID(), "%v", err)
	}
	if re, ok := t.patterns.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, configErrorf(r.ID(), "expanded pattern: %v", err)
	}
	t.patterns.Add(expr, re)
	return re, nil
}
