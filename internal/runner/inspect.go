// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package runner

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/asazato/bndl"
)

// Inspector prints a per-item report for explicit bundle paths.
type Inspector struct {
	// Out receives the report lines.
	Out io.Writer
	// Logger receives per-file and per-item diagnostics.
	Logger *slog.Logger
	// OnlySupported filters unsupported items from the printed report only.
	OnlySupported bool
}

// Run reports on each path in argument order. Per-file failures are logged
// and the file is skipped; Run itself never fails.
func (ins *Inspector) Run(paths []string) {
	logger := ins.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, p := range paths {
		ins.inspectFile(p, logger)
	}
}

// inspectFile prints the report for one bundle.
func (ins *Inspector) inspectFile(path string, logger *slog.Logger) {
	fmt.Fprintln(ins.Out, path)

	r, err := bndl.Open(path)
	if err != nil {
		logger.Error("Failed to open bundle", "path", path, "error", err)
		return
	}
	defer func() { _ = r.Close() }()

	idx, err := BuildContainerIndex(r, logger)
	if err != nil {
		logger.Error("Failed to build container index", "path", path, "error", err)
		return
	}

	for i, e := range r.Entries() {
		c, err := Classify(r, e)
		if err != nil {
			logger.Error("Failed to classify item", "path", path, "index", i, "error", err)
			continue
		}

		if ins.OnlySupported && !c.Supported {
			continue
		}

		fmt.Fprintf(ins.Out, "  #%d: %s\n", i, c.Label)
		fmt.Fprintf(ins.Out, "    name: %s\n", c.Name)
		fmt.Fprintf(ins.Out, "    container: %s\n", idx[e.PathID])
	}
}
