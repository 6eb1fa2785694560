// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import "testing"

var diffTests = []struct {
	old, new string
	want     string
}{
	{
		"abc\ndef\nghi\n",
		"ABC\ndef\nGHI\n",
		"diff a/b/c d/e/f\n--- a/b/c\n+++ d/e/f\n@@ -1,3 +1,3 @@\n-abc\n+ABC\n def\n-ghi\n+GHI\n",
	},
	{
		"var xs = std.ArrayList(u8).init(a);\ndefer xs.deinit(a);\n",
		"var xs = List(u8).with(a);\ndefer xs.deinit();\n",
		"diff a/b/c d/e/f\n--- a/b/c\n+++ d/e/f\n@@ -1,2 +1,2 @@\n" +
			"-var xs = std.ArrayList(u8).init(a);\n-defer xs.deinit(a);\n" +
			"+var xs = List(u8).with(a);\n+defer xs.deinit();\n",
	},
	{"same\n", "same\n", ""},
}

func TestDiff(t *testing.T) {
	for _, tt := range diffTests {
		out, err := Diff("a/b/c", []byte(tt.old), "d/e/f", []byte(tt.new))
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != tt.want {
			t.Errorf("Diff: have:\n%s", out)
			t.Errorf("Diff: want:\n%s", tt.want)
		}
	}
}
