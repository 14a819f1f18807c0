// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/fincheck/internal/ranking"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var outputFormats = []string{formatTable, formatJSON, formatYAML}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		return tw.Flush()
	}
}

func formatValue(v ranking.Value) string {
	if v.IsMissing() {
		return "n/a"
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

func writeRanked(w io.Writer, r ranking.Ranked) error {
	fmt.Fprintf(w, "%s\t(%s)\n", r.Metric.Label, r.Metric.Polarity)
	fmt.Fprintln(w, "#\tMODEL\tVALUE\t")
	for i, e := range r.Entries {
		marker := ""
		if e.ModelID == r.Best {
			marker = "best"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, e.ModelID, formatValue(e.Value), marker)
	}
	if r.Best != "" && !r.Significant {
		fmt.Fprintln(w, "\tno measurable difference\t\t")
	}
	return nil
}

func writeRecommendation(w io.Writer, rec *ranking.Recommendation) error {
	if rec == nil {
		_, err := fmt.Fprintln(w, "Recommendation:\tnone (no model has the required measurements)")
		return err
	}
	fmt.Fprintf(w, "Recommendation:\t%s\n", rec.ModelID)
	fmt.Fprintf(w, "Policy:\t%s\n", rec.Policy)
	_, err := fmt.Fprintf(w, "Why:\t%s\n", rec.Justification)
	return err
}

func writeReport(w io.Writer, report ranking.Report) error {
	fmt.Fprintf(w, "Schema:\t%s\n", report.SchemaVersion)
	fmt.Fprintf(w, "Models:\t%s\n", strings.Join(report.Models, ", "))
	fmt.Fprintf(w, "Missing policy:\t%s\n\n", report.MissingPolicy)
	for _, r := range report.Rankings {
		if err := writeRanked(w, r); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if len(report.Missing) > 0 {
		fmt.Fprintf(w, "Missing values:\t%d (models: %s)\n\n", len(report.Missing), strings.Join(report.MissingModels(), ", "))
	}
	return writeRecommendation(w, report.Recommendation)
}

func writeCatalog(w io.Writer, descriptors []ranking.Descriptor) error {
	fmt.Fprintln(w, "KEY\tLABEL\tPOLARITY\tUNIT")
	for _, d := range descriptors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Key, d.Label, d.Polarity, d.Unit)
	}
	return nil
}
