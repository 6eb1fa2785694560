// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package apply runs the rewrite engine over files on disk.
//
// Each file is handled by a Txn. Committing a changed file first stores a
// backup of the original next to it and then replaces the file atomically,
// so an interrupted commit leaves either the original with no new backup
// or the rewritten file with its backup.
package apply

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"rsc.io/unalloc/diff"
	"rsc.io/unalloc/rewrite"
)

// ErrModified is returned by Commit when the file changed on disk
// after it was read.
var ErrModified = errors.New("file changed since it was read")

// A Txn is the rewrite of a single file.
type Txn struct {
	Path   string
	Result *rewrite.Result

	// Backup is the name of the backup written by Commit.
	Backup string

	mode      fs.FileMode
	size      int64
	mtime     time.Time
	committed bool
}

// Begin reads the named file and rewrites it in memory with table.
// Nothing is written until Commit.
func Begin(path string, table *rewrite.Table, opts rewrite.Options) (*Txn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res, err := table.Rewrite(path, data, opts)
	if err != nil {
		return nil, err
	}
	return &Txn{
		Path:   path,
		Result: res,
		mode:   info.Mode().Perm(),
		size:   info.Size(),
		mtime:  info.ModTime(),
	}, nil
}

// Changed reports whether the rewrite changed the file's text.
func (t *Txn) Changed() bool { return t.Result.Changed }

// Diff returns a unified diff of the rewrite, or nil if nothing changed.
func (t *Txn) Diff() ([]byte, error) {
	if !t.Changed() {
		return nil, nil
	}
	name := filepath.ToSlash(t.Path)
	return diff.Diff("a/"+name, t.Result.Original, "b/"+name, t.Result.Rewritten)
}

// Commit persists a changed file: the original goes to a new backup file
// chosen by policy, and then the rewritten text replaces the file. Commit of
// an unchanged file does nothing. Commit is not interruptible; once
// started it runs to completion or fails with both files as they were.
func (t *Txn) Commit(policy BackupPolicy) error {
	if !t.Changed() {
		return nil
	}
	if t.committed {
		return fmt.Errorf("%s: already committed", t.Path)
	}
	if !policy.Valid() {
		return fmt.Errorf("unknown backup policy %q", policy)
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return err
	}
	if info.Size() != t.size || !info.ModTime().Equal(t.mtime) {
		return fmt.Errorf("%s: %w", t.Path, ErrModified)
	}

	backup, err := writeBackup(t.Path, t.Result.Original, t.mode, policy)
	if err != nil {
		return fmt.Errorf("%s: writing backup: %w", t.Path, err)
	}
	if err := replaceFile(t.Path, t.Result.Rewritten, t.mode); err != nil {
		os.Remove(backup)
		return fmt.Errorf("%s: %w", t.Path, err)
	}
	t.Backup = backup
	t.committed = true
	return nil
}

// replaceFile atomically replaces the named file with data.
func replaceFile(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := writeTemp(dir, data, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	syncDir(dir)
	return nil
}
