// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rewrite

import "regexp"

// blockEnd returns the offset of the '}' that closes the block enclosing
// offset from, or len(buf) if from is at top level. Braces inside string
// and character literals and comments are not counted.
func blockEnd(buf []byte, from int) int {
	depth := 0
	for i := from; i < len(buf); i++ {
		switch c := buf[i]; c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		case '"', '\'':
			i = skipQuoted(buf, i)
		case '/':
			if i+1 < len(buf) && buf[i+1] == '/' {
				i = skipLine(buf, i)
			}
		case '\\':
			// Zig multiline string literal line.
			if i+1 < len(buf) && buf[i+1] == '\\' {
				i = skipLine(buf, i)
			}
		}
	}
	return len(buf)
}

// skipQuoted returns the offset of the quote closing the literal that
// opens at i. Literals do not span lines.
func skipQuoted(buf []byte, i int) int {
	q := buf[i]
	for i++; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case q:
			return i
		case '\n':
			return i
		}
	}
	return len(buf)
}

// skipLine returns the offset of the newline ending the line containing i.
func skipLine(buf []byte, i int) int {
	for ; i < len(buf); i++ {
		if buf[i] == '\n' {
			return i
		}
	}
	return len(buf)
}

func isIdentByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// identStart reports whether an identifier can begin at buf[off]:
// the preceding byte must be neither part of an identifier nor a '.'
// selecting a field of something else.
func identStart(buf []byte, off int) bool {
	if off == 0 {
		return true
	}
	c := buf[off-1]
	return !isIdentByte(c) && c != '.'
}

// findAll returns the matches of re in buf[from:to] that begin on an
// identifier boundary, in buf coordinates.
func findAll(re *regexp.Regexp, buf []byte, from, to int) []*Match {
	var ms []*Match
	for _, loc := range re.FindAllSubmatchIndex(buf[from:to], -1) {
		if !identStart(buf, from+loc[0]) {
			continue
		}
		ms = append(ms, newMatch(re, buf, from, loc))
	}
	return ms
}

// findFirst is like findAll but returns only the first match, or nil.
func findFirst(re *regexp.Regexp, buf []byte, from, to int) *Match {
	for _, loc := range re.FindAllSubmatchIndex(buf[from:to], -1) {
		if identStart(buf, from+loc[0]) {
			return newMatch(re, buf, from, loc)
		}
	}
	return nil
}
