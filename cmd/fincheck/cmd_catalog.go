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

type catalogOutput struct {
	SchemaVersion string               `json:"schema_version" yaml:"schema_version"`
	Metrics       []ranking.Descriptor `json:"metrics" yaml:"metrics"`
}

func newCatalogCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the metrics and their polarity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := catalogOutput{
				SchemaVersion: ranking.SchemaVersion,
				Metrics:       ranking.DefaultCatalog().Descriptors(),
			}
			return render(cmd.OutOrStdout(), opts.format, out, func(w io.Writer) error {
				return writeCatalog(w, out.Metrics)
			})
		},
	}
}
