// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fincheck/internal/ranking"
)

func newRankCommand(opts *globalOptions) *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "rank --metric KEY [results.json|-]",
		Short: "Rank all models by one metric",
		Long: `Rank all models by one metric, best first.

Legacy metric names (confidence, ram_delta_mb) are accepted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := ranking.DefaultCatalog()
			d, ok := catalog.Get(metric)
			if !ok {
				return fmt.Errorf("unknown metric %q: known metrics are %s", metric, strings.Join(catalog.Keys(), ", "))
			}

			doc, err := loadDocument(inputPath(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := analyze(catalog, doc, opts)
			if err != nil {
				return err
			}
			ranked, _ := report.Ranking(d.Key)

			return render(cmd.OutOrStdout(), opts.format, ranked, func(w io.Writer) error {
				return writeRanked(w, ranked)
			})
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", ranking.MetricConfidence, "Metric key to rank by")
	return cmd
}
