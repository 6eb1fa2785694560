// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apply

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// A BackupPolicy says what Commit does when a file's backup name is taken.
type BackupPolicy string

const (
	// BackupVersion writes the backup to the first free name of
	// path.bak, path.bak.1, path.bak.2, ...
	BackupVersion BackupPolicy = "version"
	// BackupFail refuses to commit the file, with ErrBackupExists.
	BackupFail BackupPolicy = "fail"
)

// Valid reports whether p is a known policy.
func (p BackupPolicy) Valid() bool {
	return p == BackupVersion || p == BackupFail
}

// ErrBackupExists is returned by Commit under BackupFail when the
// file's backup already exists.
var ErrBackupExists = errors.New("backup already exists")

const maxBackupVersions = 1000

// BackupName returns the n'th backup name for path: path.bak for n == 0,
// path.bak.n otherwise.
func BackupName(path string, n int) string {
	if n == 0 {
		return path + ".bak"
	}
	return fmt.Sprintf("%s.bak.%d", path, n)
}

// writeBackup durably stores data as a new backup of path and returns
// the backup's name. An existing backup is never replaced.
func writeBackup(path string, data []byte, mode fs.FileMode, policy BackupPolicy) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := writeTemp(dir, data, mode)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	for n := 0; n < maxBackupVersions; n++ {
		name := BackupName(path, n)
		err := linkNew(tmp, name, data, mode)
		if err == nil {
			syncDir(dir)
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		if policy == BackupFail {
			return "", fmt.Errorf("%s: %w", name, ErrBackupExists)
		}
	}
	return "", fmt.Errorf("%s: %w (%d versions)", BackupName(path, 0), ErrBackupExists, maxBackupVersions)
}

// linkNew creates name with the contents of the synced file tmp, failing
// with an fs.ErrExist error if name exists. A hard link is tried first;
// on file systems without links the data is written to an exclusively
// created file instead.
func linkNew(tmp, name string, data []byte, mode fs.FileMode) error {
	err := os.Link(tmp, name)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// writeTemp writes data to a new synced temporary file in dir
// and returns its name.
func writeTemp(dir string, data []byte, mode fs.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".unalloc-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// syncDir flushes directory metadata so a rename or link survives a crash.
// Not every platform can open a directory for syncing; errors are ignored.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	f.Sync()
	f.Close()
}
