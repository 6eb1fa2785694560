// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Unalloc migrates Zig sources from allocator-per-call containers to
// containers bound to their allocator at construction.
//
// Usage:
//
//	unalloc [flags] path...
//
// Each path is a file or a directory to search for files matching the
// --include pattern. Every declaration matched by the rule table is
// rewritten along with the call sites of the declared variable in its
// scope. Changed files are written in place after the original is saved
// to a backup next to it, named file.bak (or file.bak.N if that exists).
//
// A report of the files and bindings found is printed on standard output
// as JSON or YAML. With -n nothing is written. With --diff, a unified diff
// of the changes is printed instead of the report, and nothing is written.
//
// Rule tables are YAML files; see package rsc.io/unalloc/rewrite.
// Defaults for several flags are read from the environment or from a
// .env file in the current directory: UNALLOC_RULES, UNALLOC_CONCURRENCY,
// UNALLOC_BACKUP, UNALLOC_UNRESOLVED and UNALLOC_INCLUDE.
//
// The exit status is 0 on success, 1 for usage and configuration errors,
// 2 if any file could not be read or written, and 3 if any binding needs
// manual review.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"rsc.io/unalloc/apply"
	"rsc.io/unalloc/rewrite"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitFailed = 2
	exitReview = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run runs the command line args and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "unalloc: ", 0)
	cfg, err := loadConfig()
	if err != nil {
		logger.Print(err)
		return exitFatal
	}

	code := exitOK
	cmd := &cobra.Command{
		Use:   "unalloc [flags] path...",
		Short: "Migrate Zig containers to allocator-bound construction",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return newErrUsage("unalloc [flags] path...")
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			code, err = migrate(cmd.Context(), cfg, args, stdout, logger)
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&cfg.dryRun, "dry-run", "n", false, "report changes without writing files")
	flags.BoolVar(&cfg.showDiff, "diff", false, "print a diff of the changes instead of the report; implies -n")
	flags.IntVarP(&cfg.concurrency, "concurrency", "j", cfg.concurrency, "number of files to process at once")
	flags.StringVar(&cfg.rules, "rules", cfg.rules, "YAML rule table (default: built-in ArrayList migration)")
	flags.StringVar(&cfg.format, "format", cfg.format, "report format: json or yaml")
	flags.StringVar(&cfg.backup, "backup", cfg.backup, "when a backup exists: version (write file.bak.N) or fail")
	flags.StringVar(&cfg.unresolved, "unresolved", cfg.unresolved, "for conflicting or partial bindings: rollback or keep")
	flags.StringVar(&cfg.include, "include", cfg.include, "pattern selecting files in directory arguments")
	flags.StringVar(&cfg.minVersion, "min-table-version", "", "refuse rule tables older than this version")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log each file as it is processed")

	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Print(err)
		return exitFatal
	}
	return code
}

// migrate applies the configured rule table to the files named by args,
// prints the report, and returns the exit status.
func migrate(ctx context.Context, cfg *config, args []string, stdout io.Writer, logger *log.Logger) (int, error) {
	if err := cfg.check(); err != nil {
		return exitFatal, err
	}
	table, err := cfg.table()
	if err != nil {
		return exitFatal, err
	}
	paths, err := expandPaths(args, cfg.include)
	if err != nil {
		return exitFatal, err
	}

	opts := apply.Options{
		DryRun:      cfg.dryRun || cfg.showDiff,
		Concurrency: cfg.concurrency,
		Table:       table,
		Backup:      apply.BackupPolicy(cfg.backup),
		Unresolved:  rewrite.UnresolvedPolicy(cfg.unresolved),
		Diff:        cfg.showDiff,
	}
	if cfg.verbose {
		opts.Done = func(f *apply.FileReport) {
			logger.Printf("%s: %s", f.File, f.Status)
		}
	}
	rep, err := apply.Run(ctx, paths, opts)
	if rep == nil || rewrite.IsConfigError(err) {
		return exitFatal, err
	}

	for _, f := range rep.Files {
		if f.Status == apply.StatusError {
			logger.Print(f.Error)
		}
	}
	if l := rep.Problems(); l.Len() > 0 {
		for _, line := range strings.Split(l.Error(), "\n") {
			logger.Print(line)
		}
	}
	if cfg.showDiff {
		err = rep.WriteDiffs(stdout)
	} else {
		err = rep.Encode(stdout, apply.Format(cfg.format))
	}
	if err != nil {
		return exitFatal, err
	}
	if cfg.verbose {
		logger.Printf("%d files: %d changed, %d need review, %d failed",
			len(rep.Files), rep.Changed(), rep.Count(apply.StatusReview), rep.Count(apply.StatusError))
	}

	// The report is printed even for a canceled batch.
	if err := ctx.Err(); err != nil {
		return exitFatal, err
	}
	switch {
	case rep.Count(apply.StatusReview) > 0:
		return exitReview, nil
	case rep.Count(apply.StatusError) > 0:
		return exitFailed, nil
	}
	return exitOK, nil
}
