// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// TestRun runs the scripts in testdata. The first line of an archive's
// comment holds the command-line arguments. The archive's files are
// written to a temporary directory, which is the current directory during
// the run, except for these, which hold expectations:
//
//	stdout, stderr  the command's output
//	exit            the exit status (default 0)
//	want/NAME       the content of NAME after the run
//	files           the sorted list of files after the run
func TestRun(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			dir := t.TempDir()
			var wantStdout, wantStderr, wantFiles []byte
			wantExit := 0
			want := make(map[string][]byte)
			for _, file := range ar.Files {
				switch {
				case file.Name == "stdout":
					wantStdout = file.Data
					continue
				case file.Name == "stderr":
					wantStderr = file.Data
					continue
				case file.Name == "files":
					wantFiles = file.Data
					continue
				case file.Name == "exit":
					wantExit, err = strconv.Atoi(strings.TrimSpace(string(file.Data)))
					if err != nil {
						t.Fatal(err)
					}
					continue
				case strings.HasPrefix(file.Name, "want/"):
					want[strings.TrimPrefix(file.Name, "want/")] = file.Data
					continue
				}
				targ := filepath.Join(dir, file.Name)
				if err := os.MkdirAll(filepath.Dir(targ), 0777); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(targ, file.Data, 0666); err != nil {
					t.Fatal(err)
				}
			}

			line, _, _ := strings.Cut(string(ar.Comment), "\n")
			args := strings.Fields(line)
			chdir(t, dir)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), args, &stdout, &stderr)

			cmp := func(name string, have, want []byte) {
				t.Helper()
				have = trimSpace(have)
				want = trimSpace(want)
				if !bytes.Equal(have, want) {
					t.Errorf("%s:\n%s", name, have)
					t.Errorf("want:\n%s", want)
				}
			}
			cmp("stderr", stderr.Bytes(), wantStderr)
			cmp("stdout", stdout.Bytes(), wantStdout)
			if code != wantExit {
				t.Errorf("exit status %d, want %d", code, wantExit)
			}
			for name, data := range want {
				have, err := os.ReadFile(name)
				if err != nil {
					t.Error(err)
					continue
				}
				cmp(name, have, data)
			}
			if wantFiles != nil {
				cmp("files", listFiles(t, "."), wantFiles)
			}
		})
	}
}

// listFiles returns the files under dir, one slash-separated path per line.
func listFiles(t *testing.T, dir string) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			buf.WriteString(filepath.ToSlash(path) + "\n")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func trimSpace(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " ")
	}
	return bytes.Join(lines, []byte("\n"))
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.zig", "b.txt", "src/c.zig", "src/deep/d.zig",
		".git/e.zig", "zig-cache/f.zig", "zig-out/g.zig", "src/.zig-cache/h.zig",
	} {
		file := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(file), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(file, nil, 0666); err != nil {
			t.Fatal(err)
		}
	}
	chdir(t, dir)

	var tests = []struct {
		args    []string
		include string
		want    string
	}{
		{[]string{"."}, "**/*.zig", "a.zig src/c.zig src/deep/d.zig"},
		{[]string{"src"}, "**/*.zig", "src/c.zig src/deep/d.zig"},
		{[]string{"."}, "*.zig", "a.zig"},
		{[]string{"src", "src/c.zig", "a.zig"}, "**/*.zig", "src/c.zig src/deep/d.zig a.zig"},
		{[]string{"b.txt", "missing.zig"}, "**/*.zig", "b.txt missing.zig"},
		{[]string{"zig-cache"}, "**/*.zig", "zig-cache/f.zig"},
	}
	for _, tt := range tests {
		paths, err := expandPaths(tt.args, tt.include)
		if err != nil {
			t.Errorf("expandPaths(%q, %q): %v", tt.args, tt.include, err)
			continue
		}
		for i, p := range paths {
			paths[i] = filepath.ToSlash(p)
		}
		if have := strings.Join(paths, " "); have != tt.want {
			t.Errorf("expandPaths(%q, %q) = %q, want %q", tt.args, tt.include, have, tt.want)
		}
	}

	if _, err := expandPaths([]string{"."}, "[a-"); err == nil {
		t.Errorf("expandPaths with bad pattern succeeded")
	}
}

// chdir changes the working directory to dir for the duration of the test,
// restoring the previous one at cleanup (equivalent to t.Chdir in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
