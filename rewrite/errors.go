// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// A ConfigError reports a defect in a rule table. Configuration errors are
// independent of the files being rewritten and abort a run before any file
// is touched.
type ConfigError struct {
	Rule string // rule ID, or "" for table-level errors
	Msg  string
}

func configErrorf(rule, format string, args ...interface{}) *ConfigError {
	return &ConfigError{rule, fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Rule == "" {
		return "rule table: " + e.Msg
	}
	return "rule " + e.Rule + ": " + e.Msg
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ErrNotIdempotent is returned when a second pass over a rewritten file
// would change it again, which means the rule table rewrites its own output.
var ErrNotIdempotent = errors.New("rewrite is not idempotent")

// A Kind classifies a Problem.
type Kind string

const (
	// Conflict: two declarations bind the same name with overlapping scopes.
	Conflict Kind = "conflict"
	// Partial: a call site could not be rewritten safely.
	Partial Kind = "partial"
)

// A Position is a location in a source file.
type Position struct {
	Filename string `json:"file,omitempty" yaml:"file,omitempty"`
	Offset   int    `json:"offset" yaml:"offset"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	s := p.Filename
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// position returns the Position of byte offset off in src.
func position(filename string, src []byte, off int) Position {
	line, col := 1, 1
	for i := 0; i < off && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Filename: filename, Offset: off, Line: line, Column: col}
}

// A Problem is a binding that needs manual review.
type Problem struct {
	Pos  Position
	Kind Kind
	Var  string
	Msg  string
}

func (p *Problem) Error() string {
	if p.Pos.IsValid() || p.Pos.Filename != "" {
		return fmt.Sprintf("%s: %s", p.Pos, p.Msg)
	}
	return p.Msg
}

type problemKey struct {
	pos Position
	msg string
}

// ProblemList is a set of Problems. It is also an error itself. The zero
// value is an empty list, ready to use.
type ProblemList struct {
	probs []*Problem
	set   map[problemKey]bool
}

// Add adds p to l unless an identical problem is already present.
func (l *ProblemList) Add(p *Problem) {
	k := problemKey{p.Pos, p.Msg}
	if l.set[k] {
		return
	}
	if l.set == nil {
		l.set = make(map[problemKey]bool)
	}
	l.probs = append(l.probs, p)
	l.set[k] = true
}

// AddAll adds every problem in ps.
func (l *ProblemList) AddAll(ps []*Problem) {
	for _, p := range ps {
		l.Add(p)
	}
}

func (l *ProblemList) Len() int { return len(l.probs) }

// Problems returns the problems sorted by file and offset.
func (l *ProblemList) Problems() []*Problem {
	sort.SliceStable(l.probs, func(i, j int) bool {
		p1, p2 := l.probs[i].Pos, l.probs[j].Pos
		if p1.Filename != p2.Filename {
			return p1.Filename < p2.Filename
		}
		return p1.Offset < p2.Offset
	})
	return l.probs
}

// Error sorts and returns a "\n" separated list of formatted problems.
// Messages repeated in more than three places are printed once with a count.
// The result does not end in "\n".
func (l *ProblemList) Error() string {
	if len(l.probs) == 0 {
		return "no problems"
	}
	probs := l.Problems()

	count := make(map[string]int)
	for _, p := range probs {
		count[p.Msg]++
	}

	buf := new(strings.Builder)
	for _, p := range probs {
		msg := p.Msg
		switch {
		case count[msg] > 3:
			n := count[msg]
			count[msg] = -1
			msg += fmt.Sprintf(" [× %d]", n)
		case count[msg] < 0:
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(buf, "%s: %s", p.Pos, msg)
	}
	return buf.String()
}

// Err returns an error equivalent to this list.
// If the list is empty, Err returns nil.
func (l *ProblemList) Err() error {
	if len(l.probs) == 0 {
		return nil
	}
	return l
}
