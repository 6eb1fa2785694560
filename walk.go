// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// expandPaths turns command-line arguments into the list of files to
// migrate. A directory is walked for files whose slash-separated path
// relative to it matches the include pattern, in lexical order. Any other
// argument is kept as given, so a missing file is reported by the batch
// like any other unreadable file. Each file appears once.
func expandPaths(args []string, include string) ([]string, error) {
	if !doublestar.ValidatePattern(include) {
		return nil, newErrUsage("bad --include pattern %q", include)
	}
	var paths []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			paths = append(paths, path)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			if ok, _ := doublestar.Match(include, filepath.ToSlash(rel)); ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// skipDir reports whether a directory found while walking is left out:
// hidden directories and Zig build output.
func skipDir(name string) bool {
	return name[0] == '.' || name == "zig-cache" || name == "zig-out"
}
