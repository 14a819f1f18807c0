// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

// Document is a stored results document: model identifier to raw metric
// values, exactly as decoded from JSON.
type Document struct {
	Data map[string]map[string]any `json:"data"`
}

// Record holds one model's metrics after normalization. Values has an entry
// for every catalog metric.
type Record struct {
	ModelID string           `json:"model_id" yaml:"model_id"`
	Values  map[string]Value `json:"values" yaml:"values"`
}

// Value returns the measurement for key, Missing if unknown.
func (r Record) Value(key string) Value {
	key, _ = CanonicalKey(key)
	return r.Values[key]
}

// Records is a normalized result set in canonical model order.
type Records []Record

// ModelIDs returns the model identifiers in order.
func (rs Records) ModelIDs() []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ModelID
	}
	return ids
}

// Document converts the records back into a raw document holding only the
// present values. Normalizing the result yields the same records.
func (rs Records) Document() *Document {
	doc := &Document{Data: make(map[string]map[string]any, len(rs))}
	for _, r := range rs {
		values := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			if v.Present {
				values[k] = v.Number
			}
		}
		doc.Data[r.ModelID] = values
	}
	return doc
}

// ZeroFilled returns a copy in which every missing value is a measured 0.
func (rs Records) ZeroFilled() Records {
	out := make(Records, len(rs))
	for i, r := range rs {
		values := make(map[string]Value, len(r.Values))
		for k, v := range r.Values {
			values[k] = Of(v.Float())
		}
		out[i] = Record{ModelID: r.ModelID, Values: values}
	}
	return out
}

var defaultCatalog = DefaultCatalog()

// Normalize builds one Record per model in models, in that order, using
// DefaultCatalog. See Catalog.Normalize.
func Normalize(doc *Document, models []string) Records {
	records, _ := defaultCatalog.normalize(doc, models)
	return records
}

// NormalizeStrict is Normalize that also reports missing data. See
// Catalog.NormalizeStrict.
func NormalizeStrict(doc *Document, models []string) (Records, error) {
	return defaultCatalog.NormalizeStrict(doc, models)
}

// Normalize builds one Record per model in models, in that order. Models
// absent from doc, absent keys and non-numeric values become Missing.
// Models and keys not in the list or catalog are ignored. A nil doc yields
// all-Missing records.
func (c *Catalog) Normalize(doc *Document, models []string) Records {
	records, _ := c.normalize(doc, models)
	return records
}

// NormalizeStrict returns the same records as Normalize, plus a
// *MissingMetricError when any model/metric pair lacks a measurement, or
// ErrEmptyResultSet when models is empty.
func (c *Catalog) NormalizeStrict(doc *Document, models []string) (Records, error) {
	records, missing := c.normalize(doc, models)
	if len(models) == 0 {
		return records, ErrEmptyResultSet
	}
	if len(missing) > 0 {
		return records, &MissingMetricError{Pairs: missing}
	}
	return records, nil
}

func (c *Catalog) normalize(doc *Document, models []string) (Records, []MissingPair) {
	records := make(Records, 0, len(models))
	var missing []MissingPair

	for _, id := range models {
		var raw map[string]any
		modelPresent := false
		if doc != nil && doc.Data != nil {
			raw, modelPresent = doc.Data[id]
		}

		values := make(map[string]Value, len(c.descriptors))
		for _, d := range c.descriptors {
			v, reason := lookup(raw, d.Key)
			values[d.Key] = v
			if v.Present {
				continue
			}
			if !modelPresent {
				reason = ReasonNoModel
			}
			missing = append(missing, MissingPair{ModelID: id, Metric: d.Key, Reason: reason})
		}
		records = append(records, Record{ModelID: id, Values: values})
	}
	return records, missing
}

// lookup reads key from raw, falling back to its legacy aliases when the
// canonical entry is absent or non-numeric.
func lookup(raw map[string]any, key string) (Value, string) {
	reason := ReasonAbsent
	if x, ok := raw[key]; ok {
		if v := numeric(x); v.Present {
			return v, ""
		}
		reason = ReasonNonNumeric
	}
	for alias, canonical := range legacyAliases {
		if canonical != key {
			continue
		}
		if x, ok := raw[alias]; ok {
			if v := numeric(x); v.Present {
				return v, ""
			}
			reason = ReasonNonNumeric
		}
	}
	return Missing(), reason
}
