// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import "sort"

// Entry is one model's position in a ranking.
type Entry struct {
	ModelID string `json:"model_id" yaml:"model_id"`
	Value   Value  `json:"value" yaml:"value"`
}

// Ranked is the ordering of all models for one metric.
type Ranked struct {
	Metric  Descriptor `json:"metric" yaml:"metric"`
	Entries []Entry    `json:"entries" yaml:"entries"`

	// Best is the first entry's model, or empty when no model qualifies.
	Best string `json:"best" yaml:"best"`

	// Measured counts entries with a real measurement.
	Measured int `json:"measured" yaml:"measured"`

	// Significant is false when Best does not reflect a measured
	// difference: fewer than two measurements, or all of them equal.
	Significant bool `json:"significant" yaml:"significant"`
}

// ModelIDs returns the ranked model identifiers, best first.
func (r Ranked) ModelIDs() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.ModelID
	}
	return ids
}

// Rank orders records by the metric in d according to its polarity. The
// sort is stable, so equal values keep the order of records.
//
// With MissingLast, models without a measurement follow the measured ones
// in their original order and never become Best. With MissingAsZero they
// compete as 0.
func Rank(records []Record, d Descriptor, opts Options) Ranked {
	out := Ranked{Metric: d, Entries: make([]Entry, 0, len(records))}

	var missing []Entry
	for _, r := range records {
		v := r.Value(d.Key)
		if opts.Missing == MissingAsZero {
			v = Of(v.Float())
		}
		if v.IsMissing() {
			missing = append(missing, Entry{ModelID: r.ModelID, Value: v})
			continue
		}
		out.Entries = append(out.Entries, Entry{ModelID: r.ModelID, Value: v})
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		return d.Polarity.better(out.Entries[i].Value.Number, out.Entries[j].Value.Number)
	})

	out.Measured = len(out.Entries)
	if out.Measured > 0 {
		out.Best = out.Entries[0].ModelID
		first, last := out.Entries[0].Value.Number, out.Entries[out.Measured-1].Value.Number
		out.Significant = out.Measured > 1 && first != last
	}
	out.Entries = append(out.Entries, missing...)
	return out
}

// RankAll ranks records by every metric in the catalog, in catalog order.
func (c *Catalog) RankAll(records []Record, opts Options) []Ranked {
	out := make([]Ranked, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		out = append(out, Rank(records, d, opts))
	}
	return out
}
