// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fincheck/internal/ranking"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report [results.json|-]",
		Short: "Rank every metric and recommend a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(inputPath(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := analyze(ranking.DefaultCatalog(), doc, opts)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts.format, report, func(w io.Writer) error {
				return writeReport(w, report)
			})
		},
	}
}
