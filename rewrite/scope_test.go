// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

var blockEndTests = []struct {
	in  string // | marks from; the result is the offset of ^ or len(in)
	out string
}{
	{"fn f() {| a; }", "fn f() {| a; ^}"},
	{"| top level", ""},
	{"{| { inner } x }", "{| { inner } x ^}"},
	{`{| "}" }`, `{| "}" ^}`},
	{`{| '}' }`, `{| '}' ^}`},
	{`{| "\"}" }`, `{| "\"}" ^}`},
	{"{| // } not here\n }", "{| // } not here\n ^}"},
	{"{| \\\\ } multiline\n }", "{| \\\\ } multiline\n ^}"},
	{"{| \"unterminated\n }", "{| \"unterminated\n ^}"},
}

func TestBlockEnd(t *testing.T) {
	for _, tt := range blockEndTests {
		from := strings.Index(tt.in, "|")
		buf := []byte(strings.Replace(tt.in, "|", " ", 1))
		want := len(buf)
		if tt.out != "" {
			want = strings.Index(tt.out, "^")
		}
		if got := blockEnd(buf, from); got != want {
			t.Errorf("blockEnd(%q, %d) = %d, want %d", tt.in, from, got, want)
		}
	}
}

func TestFindAll(t *testing.T) {
	buf := []byte("xs.append(a, 1); myxs.append(a, 2); self.xs.append(a, 3); (xs.append(a, 4));")
	re := regexp.MustCompile(`xs\.append\(a, `)
	ms := findAll(re, buf, 0, len(buf))
	var got []int
	for _, m := range ms {
		got = append(got, m.Span.Start)
	}
	want := []int{0, strings.Index(string(buf), "(xs") + 1}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("findAll starts = %v, want %v", got, want)
	}
	if m := findFirst(re, buf, 1, len(buf)); m == nil || m.Span.Start != want[1] {
		t.Errorf("findFirst from 1 = %v, want start %d", m, want[1])
	}
}

func TestProblemListCollapse(t *testing.T) {
	var l ProblemList
	for i := 4; i >= 1; i-- {
		l.Add(&Problem{Pos: Position{Filename: "a.zig", Offset: i, Line: i, Column: 1}, Msg: "same"})
	}
	l.Add(&Problem{Pos: Position{Filename: "a.zig", Offset: 2, Line: 2, Column: 1}, Msg: "same"})
	l.Add(&Problem{Pos: Position{Filename: "a.zig", Offset: 0, Line: 1, Column: 1}, Msg: "other"})
	if l.Len() != 5 {
		t.Fatalf("Len = %d, want 5", l.Len())
	}
	want := "a.zig:1:1: other\na.zig:1:1: same [× 4]"
	if got := l.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var empty ProblemList
	if empty.Err() != nil {
		t.Errorf("empty list Err() != nil")
	}
}
