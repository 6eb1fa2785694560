// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apply

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"rsc.io/unalloc/rewrite"
)

// A Status summarizes what happened to one file.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusChanged   Status = "changed"
	StatusReview    Status = "review"   // bindings need manual review
	StatusError     Status = "error"    // the file could not be read, rewritten, or written
	StatusCanceled  Status = "canceled" // the batch was canceled before the file started
)

// A FileReport records the outcome for one file.
type FileReport struct {
	File    string `json:"file" yaml:"file"`
	Changed bool   `json:"changed" yaml:"changed"`

	// Binding counts. A conflicting binding counts as conflicted only.
	Resolved   int `json:"bindings_resolved" yaml:"bindings_resolved"`
	Conflicted int `json:"bindings_conflicted" yaml:"bindings_conflicted"`
	Partial    int `json:"bindings_partial" yaml:"bindings_partial"`

	Status   Status          `json:"status" yaml:"status"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
	Backup   string          `json:"backup,omitempty" yaml:"backup,omitempty"`
	Bindings []BindingReport `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Problems []string        `json:"problems,omitempty" yaml:"problems,omitempty"`

	// Diff is the unified diff of a changed file, when requested.
	Diff []byte `json:"-" yaml:"-"`

	err      error
	problems []*rewrite.Problem
}

// Err returns the error that stopped the file, if any.
func (f *FileReport) Err() error { return f.err }

func (f *FileReport) fail(err error) {
	f.Status = StatusError
	f.Error = err.Error()
	f.err = err
}

// A BindingReport describes one binding found in a file.
// Span is the declaration's byte range in the original text.
type BindingReport struct {
	Var      string            `json:"variable" yaml:"variable"`
	Rule     string            `json:"rule" yaml:"rule"`
	Params   map[string]string `json:"params" yaml:"params"`
	Span     rewrite.Span      `json:"span" yaml:"span"`
	Resolved bool              `json:"resolved" yaml:"resolved"`
	Conflict bool              `json:"conflict,omitempty" yaml:"conflict,omitempty"`
	Partial  bool              `json:"partial,omitempty" yaml:"partial,omitempty"`
	Rewrites int               `json:"rewrites" yaml:"rewrites"`
}

// newFileReport fills in a report from a completed rewrite.
func newFileReport(res *rewrite.Result) *FileReport {
	f := &FileReport{
		File:       res.Path,
		Changed:    res.Changed,
		Resolved:   res.Resolved(),
		Conflicted: res.Conflicted(),
		Partial:    res.PartiallyResolved(),
	}
	for _, b := range res.Bindings {
		f.Bindings = append(f.Bindings, BindingReport{
			Var:      b.Var,
			Rule:     b.Rule,
			Params:   b.Params,
			Span:     b.Decl,
			Resolved: b.Resolved,
			Conflict: b.Conflict,
			Partial:  b.Partial,
			Rewrites: b.Rewrites,
		})
	}
	for _, p := range res.Problems {
		f.Problems = append(f.Problems, p.Error())
	}
	f.problems = res.Problems
	switch {
	case res.NeedsReview():
		f.Status = StatusReview
	case res.Changed:
		f.Status = StatusChanged
	default:
		f.Status = StatusUnchanged
	}
	return f
}

// A Report is the outcome of a batch, one FileReport per input path,
// in input order.
type Report struct {
	Files []*FileReport
}

// Count returns the number of files with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}
	return n
}

// Changed returns the number of files whose text changed.
func (r *Report) Changed() int {
	n := 0
	for _, f := range r.Files {
		if f.Changed {
			n++
		}
	}
	return n
}

// Problems returns the problems of every file in one list.
func (r *Report) Problems() *rewrite.ProblemList {
	l := new(rewrite.ProblemList)
	for _, f := range r.Files {
		l.AddAll(f.problems)
	}
	return l
}

// A Format is a report encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Encode writes the file reports to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	files := r.Files
	if files == nil {
		files = []*FileReport{}
	}
	switch format {
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(files)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(files); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteDiffs writes the diffs of the changed files to w, in input order.
func (r *Report) WriteDiffs(w io.Writer) error {
	for _, f := range r.Files {
		if len(f.Diff) == 0 {
			continue
		}
		if _, err := w.Write(f.Diff); err != nil {
			return err
		}
	}
	return nil
}
