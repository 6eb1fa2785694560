// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package edit implements buffered position-based editing of byte slices.
//
// Edits are queued against the original text and applied all at once by
// Bytes. Unlike a sequence of in-place substitutions, queued edits can never
// see each other's output, and overlapping edits are refused when queued.
package edit

import (
	"fmt"
	"sort"
)

// A Buffer is a queue of edits to apply to a given byte slice.
type Buffer struct {
	old []byte
	q   edits
}

// An edit records a single text modification: change the bytes in [start,end) to new.
type edit struct {
	start int
	end   int
	new   string
	seq   int
}

// An edits is a list of edits that is sortable by start offset, breaking ties by queue order.
type edits []edit

func (x edits) Len() int      { return len(x) }
func (x edits) Swap(i, j int) { x[i], x[j] = x[j], x[i] }
func (x edits) Less(i, j int) bool {
	if x[i].start != x[j].start {
		return x[i].start < x[j].start
	}
	if x[i].end != x[j].end {
		return x[i].end < x[j].end
	}
	return x[i].seq < x[j].seq
}

// An OverlapError reports an edit that overlaps one already queued.
type OverlapError struct {
	Start, End   int // refused edit
	Start0, End0 int // queued edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d,%d) and [%d,%d)", e.Start0, e.End0, e.Start, e.End)
}

// NewBuffer returns a new buffer to accumulate changes to an initial data slice.
// The returned buffer maintains a reference to the data, so the caller must ensure
// the data is not modified until after the Buffer is done being used.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{old: data}
}

// Len returns the number of queued edits.
func (b *Buffer) Len() int {
	return len(b.q)
}

// overlap returns the queued edit that a replacement of [start,end) would
// overlap. Two insertions at the same offset do not overlap; they apply in
// queue order.
func (b *Buffer) overlap(start, end int) (edit, bool) {
	for _, e := range b.q {
		if start < e.end && e.start < end {
			return e, true
		}
		// An insertion strictly inside a replaced range overlaps it.
		if start == end && e.start < start && start < e.end {
			return e, true
		}
		if e.start == e.end && start < e.start && e.start < end {
			return e, true
		}
	}
	return edit{}, false
}

// Replace queues the replacement of [start,end) with new.
// An empty range is an insertion.
// It returns an *OverlapError, and queues nothing, if the range
// overlaps an edit already in the queue.
func (b *Buffer) Replace(start, end int, new string) error {
	if start < 0 || start > end || end > len(b.old) {
		panic(fmt.Sprintf("invalid edit position [%d,%d) in buffer of length %d", start, end, len(b.old)))
	}
	if e, ok := b.overlap(start, end); ok {
		return &OverlapError{Start: start, End: end, Start0: e.start, End0: e.end}
	}
	b.q = append(b.q, edit{start, end, new, len(b.q)})
	return nil
}

// Map returns the offset in the result of Bytes of the byte at off
// in the original data. Insertions at off are placed before it.
// The result is unspecified if off lies inside a replaced range.
func (b *Buffer) Map(off int) int {
	delta := 0
	for _, e := range b.q {
		if e.end <= off {
			delta += len(e.new) - (e.end - e.start)
		}
	}
	return off + delta
}

// Bytes returns a new byte slice containing the original data
// with the queued edits applied.
func (b *Buffer) Bytes() []byte {
	sort.Sort(b.q)
	var out []byte
	offset := 0
	for _, e := range b.q {
		out = append(out, b.old[offset:e.start]...)
		out = append(out, e.new...)
		offset = e.end
	}
	return append(out, b.old[offset:]...)
}

// String returns a string containing the original data
// with the queued edits applied.
func (b *Buffer) String() string {
	return string(b.Bytes())
}
