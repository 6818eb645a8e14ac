// SPDX-License-Identifier: MIT
// Copyright (c) 2026 asazato
// Source: github.com/asazato/bndl

package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/asazato/bndl/internal/runner"
)

var onlySupported bool

func init() {
	inspectCmd := &cobra.Command{
		Use:   "inspect <bundle>...",
		Short: "Print the items of one or more bundles",
		Long: `Inspect lists every item of the given bundle files: ordinal index, type
label, item name, and resolved container. Files that fail to open or index
are logged and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInspect,
	}

	inspectCmd.Flags().BoolVarP(&onlySupported, "only-supported", "s", false, "print only exportable items")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ins := &runner.Inspector{
		Out:           cmd.OutOrStdout(),
		Logger:        slog.Default().With("component", "inspector"),
		OnlySupported: onlySupported,
	}

	ins.Run(args)
	return nil
}
