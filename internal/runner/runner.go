// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

// Package runner drives batch extraction of bundle items into destination
// files according to configured path rules.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asazato/bndl"
	"github.com/asazato/bndl/internal/config"
	"github.com/asazato/bndl/internal/progress"
	"github.com/asazato/bndl/internal/rules"
)

// Options control one batch run.
type Options struct {
	// DryRun prints derived output paths without touching the filesystem.
	DryRun bool
	// ChangeWorkingDir switches to the config file's directory before
	// resolving the source glob and destination root.
	ChangeWorkingDir bool
	// Incremental skips bundles recorded in the progress store and records
	// each bundle as soon as it completes.
	Incremental bool
}

// Runner executes the extract flow for one config file.
type Runner struct {
	logger *slog.Logger
	out    io.Writer
	opts   Options
}

// New returns a runner writing report lines to out.
func New(opts Options, logger *slog.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}

	return &Runner{logger: logger.With("component", "runner"), out: out, opts: opts}
}

// Run processes every bundle matched by the config source glob, in glob
// enumeration order. Bundles are processed strictly sequentially; ctx
// cancellation is observed only between bundles, never mid-bundle, so an
// interrupted run never records a partially processed bundle.
//
// Configuration problems (unreadable config, bad rule regex, bad glob
// pattern) and progress store failures are fatal. Everything else is
// contained: per-bundle failures skip the bundle, per-item failures skip the
// item.
func (rn *Runner) Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var store *progress.Store
	if rn.opts.Incremental {
		// The store name is relative and resolves in the directory the run
		// was started from, before any chdir below.
		store, err = progress.Open(progress.FileName(configPath))
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	if rn.opts.ChangeWorkingDir {
		if err := os.Chdir(filepath.Dir(configPath)); err != nil {
			return fmt.Errorf("change working directory: %w", err)
		}
	}

	engine, err := rules.NewEngine(cfg.Dest, cfg.Targets)
	if err != nil {
		return err
	}

	paths, err := filepath.Glob(cfg.Src)
	if err != nil {
		return fmt.Errorf("expand source glob %q: %w", cfg.Src, err)
	}

	rn.logger.Info("Starting run",
		"config", configPath,
		"bundles", len(paths),
		"rules", len(engine.Rules()),
		"dry_run", rn.opts.DryRun)

	done := 0
	for _, p := range paths {
		if ctx.Err() != nil {
			rn.logger.Info("Stop requested, ending run", "processed", done, "matched", len(paths))
			break
		}

		if err := rn.processBundle(p, engine, store); err != nil {
			return err
		}

		done++
	}

	rn.logger.Info("Run complete", "processed", done)
	return nil
}

// processBundle handles one bundle path end to end. The returned error is
// fatal for the run; per-bundle failures are logged and swallowed.
func (rn *Runner) processBundle(path string, engine *rules.Engine, store *progress.Store) error {
	fmt.Fprintln(rn.out, path)

	key := bndl.NormalizePath(path)
	if store != nil && store.Contains(key) {
		rn.logger.Info("Skipping bundle already recorded", "path", path)
		return nil
	}

	r, err := bndl.Open(path)
	if err != nil {
		rn.logger.Error("Failed to open bundle", "path", path, "error", err)
		return nil
	}

	idx, err := BuildContainerIndex(r, rn.logger)
	if err != nil {
		rn.logger.Error("Failed to build container index", "path", path, "error", err)
		_ = r.Close()
		return nil
	}

	rn.processItems(r, key, idx, engine)
	_ = r.Close()

	if store != nil {
		// Durability point: a crash before this append redoes the bundle on
		// resume; after it, the bundle is never repeated.
		if err := store.Append(key); err != nil {
			return fmt.Errorf("record progress for %s: %w", path, err)
		}
	}

	return nil
}

// processItems runs classification and every rule over each item in stored
// entry order, which defines the index placeholder value.
func (rn *Runner) processItems(r *bndl.Reader, bundleKey string, idx map[int64]string, engine *rules.Engine) {
	for i, e := range r.Entries() {
		c, err := Classify(r, e)
		if err != nil {
			rn.logger.Error("Failed to classify item",
				"bundle", bundleKey,
				"index", i,
				"path_id", e.PathID,
				"error", err)
			continue
		}

		if !c.Supported {
			continue
		}

		placeholders := map[string]string{
			"name":        c.Name,
			"container":   idx[e.PathID],
			"index":       strconv.Itoa(i),
			"bundle_path": bundleKey,
		}

		for _, rule := range engine.Rules() {
			outPath, ok, err := engine.Apply(rule, c.Kind, placeholders)
			if !ok {
				continue
			}
			if err != nil {
				rn.logger.Error("Failed to derive output path",
					"bundle", bundleKey,
					"item", c.Name,
					"error", err)
				continue
			}

			fmt.Fprintln(rn.out, "  "+outPath)
			if rn.opts.DryRun {
				continue
			}

			if err := ensureParentDir(outPath); err != nil {
				rn.logger.Error("Failed to create output directory",
					"bundle", bundleKey,
					"item", c.Name,
					"error", err)
				continue
			}

			if err := exportItem(r, e, c.Kind, outPath); err != nil {
				rn.logger.Error("Failed to export item",
					"bundle", bundleKey,
					"item", c.Name,
					"output", outPath,
					"error", err)
			}
		}
	}
}
