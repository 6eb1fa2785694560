// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package apply

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rsc.io/unalloc/rewrite"
)

// Options configure a batch.
type Options struct {
	// DryRun reports what would change without writing anything.
	DryRun bool
	// Concurrency bounds the number of files processed at once.
	// Zero means GOMAXPROCS.
	Concurrency int
	// Table is the rule table to apply. It is required.
	Table *rewrite.Table
	// Backup is the policy for committing over an existing backup.
	// The zero value means BackupVersion.
	Backup BackupPolicy
	// Unresolved is the policy for conflicting or partial bindings.
	Unresolved rewrite.UnresolvedPolicy
	// Diff requests a unified diff of each changed file in its report.
	Diff bool
	// Done, if set, is called as each file finishes. It may be called
	// from several goroutines at once.
	Done func(*FileReport)
}

// Run rewrites the named files. Per-file failures are recorded in the
// report and do not stop the batch. A rewrite.ConfigError stops the batch
// and is returned. Cancellation of ctx is checked before each file starts;
// files not started are reported as StatusCanceled and Run returns the
// context's error. The report has one entry per path, in order.
func Run(ctx context.Context, paths []string, opts Options) (*Report, error) {
	if opts.Table == nil {
		return nil, errors.New("apply: no rule table")
	}
	if opts.Backup == "" {
		opts.Backup = BackupVersion
	}
	if !opts.Backup.Valid() {
		return nil, fmt.Errorf("apply: unknown backup policy %q", opts.Backup)
	}
	if opts.Unresolved == "" {
		opts.Unresolved = rewrite.Rollback
	}
	if !opts.Unresolved.Valid() {
		return nil, fmt.Errorf("apply: unknown unresolved policy %q", opts.Unresolved)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	rep := &Report{Files: make([]*FileReport, len(paths))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		if gctx.Err() != nil {
			rep.Files[i] = &FileReport{File: path, Status: StatusCanceled}
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				rep.Files[i] = &FileReport{File: path, Status: StatusCanceled}
				return nil
			}
			f, err := runFile(path, &opts)
			rep.Files[i] = f
			if opts.Done != nil {
				opts.Done(f)
			}
			if rewrite.IsConfigError(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	if err := ctx.Err(); err != nil && rep.Count(StatusCanceled) > 0 {
		return rep, err
	}
	return rep, nil
}

// runFile rewrites one file and, unless this is a dry run, commits it.
// The returned error is also recorded in the report.
func runFile(path string, opts *Options) (*FileReport, error) {
	txn, err := Begin(path, opts.Table, rewrite.Options{Unresolved: opts.Unresolved})
	if err != nil {
		f := &FileReport{File: path}
		f.fail(err)
		return f, err
	}
	f := newFileReport(txn.Result)
	if opts.Diff {
		d, err := txn.Diff()
		if err != nil {
			f.fail(err)
			return f, err
		}
		f.Diff = d
	}
	if opts.DryRun {
		return f, nil
	}
	if err := txn.Commit(opts.Backup); err != nil {
		f.fail(err)
		return f, err
	}
	f.Backup = txn.Backup
	return f, nil
}
