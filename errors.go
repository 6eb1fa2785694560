// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "fmt"

// errUsage indicates a malformed command line or environment setting.
// Usage errors are independent of the files being migrated.
type errUsage struct {
	err string
}

func newErrUsage(f string, args ...interface{}) *errUsage {
	return &errUsage{fmt.Sprintf(f, args...)}
}

func (e *errUsage) Error() string {
	return "usage: " + e.err
}

// errPrecondition indicates that a command was well-formed, but some
// requirement of the run wasn't met. For example, the rule table is
// older than the version asked for.
type errPrecondition struct {
	err string
}

func newErrPrecondition(f string, args ...interface{}) *errPrecondition {
	return &errPrecondition{fmt.Sprintf(f, args...)}
}

func (e *errPrecondition) Error() string {
	return e.err
}
