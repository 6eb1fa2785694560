// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edit

import (
	"errors"
	"testing"
)

func TestEdit(t *testing.T) {
	b := NewBuffer([]byte("0123456789"))
	must(t, b.Replace(8, 8, ",7½,"))
	must(t, b.Replace(9, 10, "the-end"))
	must(t, b.Replace(10, 10, "!"))
	must(t, b.Replace(4, 4, "3.14,"))
	must(t, b.Replace(4, 4, "π,"))
	must(t, b.Replace(4, 4, "3.15,"))
	must(t, b.Replace(3, 4, "three,"))
	want := "012three,3.14,π,3.15,4567,7½,8the-end!"

	s := b.String()
	if s != want {
		t.Errorf("b.String() = %q, want %q", s, want)
	}
	sb := b.Bytes()
	if string(sb) != want {
		t.Errorf("b.Bytes() = %q, want %q", sb, want)
	}
}

func TestOverlap(t *testing.T) {
	b := NewBuffer([]byte("abcdefgh"))
	must(t, b.Replace(2, 5, "X"))

	var oe *OverlapError
	for _, r := range [][2]int{{4, 6}, {0, 3}, {2, 5}, {3, 3}, {1, 7}} {
		err := b.Replace(r[0], r[1], "Y")
		if !errors.As(err, &oe) {
			t.Errorf("Replace(%d, %d) = %v, want OverlapError", r[0], r[1], err)
		}
	}
	// Touching ranges and boundary insertions are fine.
	must(t, b.Replace(5, 6, "Z"))
	must(t, b.Replace(2, 2, "<"))
	must(t, b.Replace(0, 2, ""))
	if b.Len() != 4 {
		t.Errorf("b.Len() = %d, want 4", b.Len())
	}
	if s, want := b.String(), "<XZgh"; s != want {
		t.Errorf("b.String() = %q, want %q", s, want)
	}
}

func TestMap(t *testing.T) {
	b := NewBuffer([]byte("aaa bbb ccc"))
	must(t, b.Replace(0, 3, "a"))
	must(t, b.Replace(4, 4, ">>"))
	must(t, b.Replace(8, 11, "CCCCC"))
	out := b.String()
	if out != "a >>bbb CCCCC" {
		t.Fatalf("b.String() = %q", out)
	}
	for _, tt := range []struct{ off, want int }{
		{3, 1},
		{4, 4},
		{5, 5},
		{8, 8},
	} {
		if got := b.Map(tt.off); got != tt.want {
			t.Errorf("b.Map(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
