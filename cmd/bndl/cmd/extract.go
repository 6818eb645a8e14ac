// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/asazato/bndl/internal/runner"
)

var (
	configFile  string
	dryRun      bool
	chdir       bool
	incremental bool
)

func init() {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract bundle items into files according to a config",
		Long: `Extract expands the config source glob, processes each matched bundle
sequentially, and writes every item matched by a path rule under the
destination root. Bundle paths and produced file paths are printed to
standard output; diagnostics go to the log stream.

An interrupt (SIGINT/SIGTERM) stops the run between bundles; the bundle
being processed always finishes first.`,
		Args: cobra.NoArgs,
		RunE: runExtract,
	}

	extractCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the TOML config file")
	_ = extractCmd.MarkFlagRequired("config")
	extractCmd.Flags().BoolVarP(&dryRun, "dry", "d", false, "print output paths without writing files")
	extractCmd.Flags().BoolVarP(&chdir, "chdir", "r", false, "change working directory to the config file's directory")
	extractCmd.Flags().BoolVarP(&incremental, "incremental", "i", false, "skip bundles recorded in the progress file")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rn := runner.New(runner.Options{
		DryRun:           dryRun,
		ChangeWorkingDir: chdir,
		Incremental:      incremental,
	}, slog.Default(), cmd.OutOrStdout())

	return rn.Run(ctx, configFile)
}
