// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff implements a Diff function that compares two inputs
// and returns a unified diff.
package diff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff of old and new, with a "diff" header line
// naming both files. It returns nil if the inputs are equal.
func Diff(oldName string, old []byte, newName string, new []byte) ([]byte, error) {
	if bytes.Equal(old, new) {
		return nil, nil
	}
	ud := difflib.UnifiedDiff{
		A:        splitLines(string(old)),
		B:        splitLines(string(new)),
		FromFile: oldName,
		ToFile:   newName,
		Context:  3,
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "diff %s %s\n", oldName, newName)
	if err := difflib.WriteUnifiedDiff(&buf, ud); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// splitLines splits s after each newline. A final line without a newline
// gets one, followed by the marker diff(1) prints for it.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n\\ No newline at end of file\n"
	return lines
}
