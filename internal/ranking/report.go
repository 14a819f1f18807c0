// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import "github.com/samber/lo"

// Report is everything the dashboard draws for one result set.
type Report struct {
	SchemaVersion  string          `json:"schema_version" yaml:"schema_version"`
	Models         []string        `json:"models" yaml:"models"`
	Records        Records         `json:"records" yaml:"records"`
	Rankings       []Ranked        `json:"rankings" yaml:"rankings"`
	Recommendation *Recommendation `json:"recommendation" yaml:"recommendation"`
	Missing        []MissingPair   `json:"missing" yaml:"missing"`
	MissingPolicy  MissingPolicy   `json:"missing_policy" yaml:"missing_policy"`
}

// Analyze normalizes doc against models and ranks every catalog metric.
// Recommendation is nil when no model qualifies.
func (c *Catalog) Analyze(doc *Document, models []string, opts Options) Report {
	records, missing := c.normalize(doc, models)
	if opts.Missing == "" {
		opts.Missing = MissingLast
	}

	report := Report{
		SchemaVersion: SchemaVersion,
		Models:        records.ModelIDs(),
		Records:       records,
		Rankings:      c.RankAll(records, opts),
		Missing:       lo.Ternary(missing == nil, []MissingPair{}, missing),
		MissingPolicy: opts.Missing,
	}
	if rec, ok := Recommend(records, opts); ok {
		report.Recommendation = &rec
	}
	return report
}

// Analyze is Catalog.Analyze on DefaultCatalog.
func Analyze(doc *Document, models []string, opts Options) Report {
	return defaultCatalog.Analyze(doc, models, opts)
}

// Ranking returns the Ranked entry for key, if present.
func (r Report) Ranking(key string) (Ranked, bool) {
	key, _ = CanonicalKey(key)
	return lo.Find(r.Rankings, func(rk Ranked) bool { return rk.Metric.Key == key })
}

// MissingModels returns the models with at least one missing value, in
// canonical order.
func (r Report) MissingModels() []string {
	return lo.Uniq(lo.Map(r.Missing, func(p MissingPair, _ int) string { return p.ModelID }))
}
