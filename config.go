// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"

	"rsc.io/unalloc/apply"
	"rsc.io/unalloc/rewrite"
)

// config holds the settings of one run. Defaults come from the
// environment and an optional .env file; flags override them.
type config struct {
	dryRun      bool
	showDiff    bool
	concurrency int
	rules       string
	format      string
	backup      string
	unresolved  string
	include     string
	minVersion  string
	verbose     bool
}

// loadConfig returns the default configuration. Variables set in the
// process environment take precedence over those in ./.env.
func loadConfig() (*config, error) {
	dotenv, err := godotenv.Read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	getenv := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	cfg := &config{
		concurrency: runtime.GOMAXPROCS(0),
		rules:       getenv("UNALLOC_RULES"),
		format:      string(apply.JSON),
		backup:      string(apply.BackupVersion),
		unresolved:  string(rewrite.Rollback),
		include:     "**/*.zig",
	}
	if s := getenv("UNALLOC_CONCURRENCY"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, newErrUsage("UNALLOC_CONCURRENCY=%q is not a positive integer", s)
		}
		cfg.concurrency = n
	}
	if s := getenv("UNALLOC_BACKUP"); s != "" {
		cfg.backup = s
	}
	if s := getenv("UNALLOC_UNRESOLVED"); s != "" {
		cfg.unresolved = s
	}
	if s := getenv("UNALLOC_INCLUDE"); s != "" {
		cfg.include = s
	}
	return cfg, nil
}

// check validates settings that flags or the environment may have set.
func (cfg *config) check() error {
	if cfg.concurrency < 1 {
		return newErrUsage("-j must be at least 1")
	}
	switch apply.Format(cfg.format) {
	case apply.JSON, apply.YAML:
	default:
		return newErrUsage("unknown --format %q (want json or yaml)", cfg.format)
	}
	if !apply.BackupPolicy(cfg.backup).Valid() {
		return newErrUsage("unknown backup policy %q (want %s or %s)", cfg.backup, apply.BackupVersion, apply.BackupFail)
	}
	if !rewrite.UnresolvedPolicy(cfg.unresolved).Valid() {
		return newErrUsage("unknown unresolved policy %q (want %s or %s)", cfg.unresolved, rewrite.Rollback, rewrite.Keep)
	}
	if cfg.minVersion != "" && !semver.IsValid(cfg.minVersion) {
		return newErrUsage("--min-table-version %q is not a semantic version", cfg.minVersion)
	}
	return nil
}

// table returns the rule table to apply.
func (cfg *config) table() (*rewrite.Table, error) {
	t := rewrite.Default()
	if cfg.rules != "" {
		var err error
		if t, err = rewrite.Load(cfg.rules); err != nil {
			return nil, err
		}
	}
	if cfg.minVersion != "" && !t.AtLeast(cfg.minVersion) {
		return nil, newErrPrecondition("rule table version %s is older than %s", t.Version(), cfg.minVersion)
	}
	return t, nil
}
