// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "fmt"

// A Span is a half-open byte range [Start, End) into a text buffer.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) Empty() bool { return s.Start == s.End }

// Valid reports whether s indexes a buffer of length n.
func (s Span) Valid(n int) bool {
	return 0 <= s.Start && s.Start <= s.End && s.End <= n
}

// Contains reports whether off lies inside s.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off < s.End
}

// Overlaps reports whether s and t share at least one byte.
func (s Span) Overlaps(t Span) bool {
	return s.Start < t.End && t.Start < s.End
}

// In returns the text of buf covered by s.
func (s Span) In(buf []byte) []byte {
	return buf[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
