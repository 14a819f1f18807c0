// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fincheck/internal/ranking"
)

// errNoRecommendation is returned when no model has the measurements the
// selected policy needs.
var errNoRecommendation = errors.New("no model qualifies for a recommendation")

func newRecommendCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [--policy fastest|weighted] [results.json|-]",
		Short: "Recommend one model",
		Long: `Recommend one model.

fastest picks the lowest measured latency. weighted scales confidence and
latency to [0,1] across the models and maximises the weighted sum; see
--confidence-weight and --latency-weight.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(inputPath(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := analyze(ranking.DefaultCatalog(), doc, opts)
			if err != nil {
				return err
			}
			if report.Recommendation == nil {
				return errNoRecommendation
			}

			return render(cmd.OutOrStdout(), opts.format, report.Recommendation, func(w io.Writer) error {
				return writeRecommendation(w, report.Recommendation)
			})
		},
	}
}
