// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// TestRewrite runs the archives in testdata. Each archive holds:
//
//	in.zig      the input
//	out.zig     the expected output
//	bindings    one Binding.String per line (optional)
//	problems    one Problem.Error per line (optional)
//	rules.yaml  the rule table (optional; default DefaultSpec)
//
// The archive comment may say "unresolved=keep".
func TestRewrite(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			sections := make(map[string][]byte)
			for _, f := range ar.Files {
				sections[f.Name] = f.Data
			}

			table := Default()
			if data, ok := sections["rules.yaml"]; ok {
				table, err = Parse(data)
				if err != nil {
					t.Fatal(err)
				}
			}
			var opts Options
			if strings.Contains(string(ar.Comment), "unresolved=keep") {
				opts.Unresolved = Keep
			}

			in, ok := sections["in.zig"]
			if !ok {
				t.Fatal("missing in.zig")
			}
			res, err := table.Rewrite("in.zig", in, opts)
			if err != nil {
				t.Fatal(err)
			}

			cmp := func(name string, have, want []byte) {
				t.Helper()
				if !bytes.Equal(have, want) {
					t.Errorf("%s:\n%s", name, have)
					t.Errorf("want:\n%s", want)
				}
			}
			cmp("out.zig", res.Rewritten, sections["out.zig"])
			if res.Changed != !bytes.Equal(in, sections["out.zig"]) {
				t.Errorf("Changed = %v", res.Changed)
			}

			var bindings, problems bytes.Buffer
			for _, b := range res.Bindings {
				bindings.WriteString(b.String() + "\n")
			}
			for _, p := range res.Problems {
				problems.WriteString(p.Error() + "\n")
			}
			if want, ok := sections["bindings"]; ok {
				cmp("bindings", bindings.Bytes(), want)
			}
			cmp("problems", problems.Bytes(), sections["problems"])
			if res.NeedsReview() != (len(sections["problems"]) > 0) {
				t.Errorf("NeedsReview = %v", res.NeedsReview())
			}

			// The replaced spans are ordered and disjoint.
			end := 0
			for _, s := range res.Replaced {
				if !s.Valid(len(res.Rewritten)) || s.Start < end {
					t.Errorf("replaced spans overlap or are out of range: %v", res.Replaced)
					break
				}
				end = s.End
			}

			// A second run changes nothing.
			again, err := table.Rewrite("in.zig", res.Rewritten, opts)
			if err != nil {
				t.Fatal(err)
			}
			if again.Changed {
				t.Errorf("second run changed output:\n%s", again.Rewritten)
			}
		})
	}
}

func TestRewriteUnchanged(t *testing.T) {
	src := []byte("const x = 1;\nvar ys = List(u8).with(al);\n")
	res, err := Default().Rewrite("x.zig", src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed || len(res.Bindings) != 0 || !bytes.Equal(res.Rewritten, src) {
		t.Errorf("Rewrite changed clean input: %+v", res)
	}
}

func TestRewriteNotIdempotent(t *testing.T) {
	// The template re-creates the text its own pattern matches,
	// one level deeper each time.
	table, err := NewTable(TableSpec{
		Version: "v1.0.0",
		Rules: []RuleSpec{{
			ID:       "grow",
			Kind:     Declaration,
			Pattern:  `var (?P<name>\w+) = Old;`,
			Template: `var ${name} = Old; var ${name}x = Old;`,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = table.Rewrite("x.zig", []byte("var a = Old;\n"), Options{})
	if !errors.Is(err, ErrNotIdempotent) {
		t.Errorf("Rewrite error = %v, want ErrNotIdempotent", err)
	}
}

func TestBadUnresolvedPolicy(t *testing.T) {
	_, err := Default().Rewrite("x.zig", nil, Options{Unresolved: "maybe"})
	if !IsConfigError(err) {
		t.Errorf("Rewrite error = %v, want ConfigError", err)
	}
}

func TestOriginalOffset(t *testing.T) {
	// "aaaa XX bb" was rewritten to "a XXXX bb" by two declarations.
	bindings := []*Binding{
		{Decl: Span{0, 4}, Emitted: Span{0, 1}},
		{Decl: Span{5, 7}, Emitted: Span{2, 6}},
	}
	for _, tt := range []struct{ off, want int }{
		{0, 0},
		{1, 4},
		{3, 5},
		{6, 7},
		{8, 9},
	} {
		if got := originalOffset(bindings, tt.off); got != tt.want {
			t.Errorf("originalOffset(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}
