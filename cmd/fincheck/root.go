// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/ranking"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	models  []string
	missing string
	policy  string
	strict  bool
	format  string

	confidenceWeight float64
	latencyWeight    float64
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "fincheck",
		Short: "Rank model inference metrics from a results file",
		Long: `fincheck ranks the per-model metrics of a stored results document.

The input is a JSON file (or - for stdin) holding either the raw
{"data": {model: {metric: value}}} document, a stored result, or the API
response envelope around one.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.models, "models", append([]string(nil), config.DefaultModels...), "Canonical model list, in display order")
	flags.StringVar(&opts.missing, "missing", string(ranking.MissingLast), "Missing value policy: last or zero")
	flags.StringVar(&opts.policy, "policy", string(ranking.PolicyFastest), "Recommendation policy: fastest or weighted")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when any model/metric value is missing")
	flags.StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json or yaml")
	flags.Float64Var(&opts.confidenceWeight, "confidence-weight", 0.5, "Confidence weight for the weighted policy")
	flags.Float64Var(&opts.latencyWeight, "latency-weight", 0.5, "Latency weight for the weighted policy")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return opts.validate()
	}

	cmd.AddCommand(newRankCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

func (o *globalOptions) validate() error {
	if !lo.Contains(outputFormats, o.format) {
		return fmt.Errorf("unsupported format %q: must be one of %s", o.format, strings.Join(outputFormats, ", "))
	}
	o.models = lo.Compact(lo.Map(o.models, func(m string, _ int) string { return strings.TrimSpace(m) }))
	if dup := lo.FindDuplicates(o.models); len(dup) > 0 {
		return fmt.Errorf("duplicate models: %s", strings.Join(dup, ", "))
	}
	if o.confidenceWeight < 0 || o.latencyWeight < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	if o.confidenceWeight == 0 && o.latencyWeight == 0 {
		return fmt.Errorf("confidence and latency weights must not both be zero")
	}
	return nil
}

// rankingOptions converts the flags into ranking.Options.
func (o *globalOptions) rankingOptions() (ranking.Options, error) {
	missing, err := ranking.ParseMissingPolicy(o.missing)
	if err != nil {
		return ranking.Options{}, err
	}
	policy, err := ranking.ParseRecommendPolicy(o.policy)
	if err != nil {
		return ranking.Options{}, err
	}
	return ranking.Options{
		Missing: missing,
		Policy:  policy,
		Weights: ranking.Weights{Confidence: o.confidenceWeight, Latency: o.latencyWeight},
	}, nil
}

func execute() error {
	return newRootCommand().Execute()
}
