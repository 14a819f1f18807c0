// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import (
	"fmt"

	"github.com/samber/lo"
)

// SchemaVersion identifies the metric key spelling used in stored documents.
const SchemaVersion = "v1"

// Metric keys, as written by the inference backend.
const (
	MetricConfidence = "confidence_percent"
	MetricLatency    = "latency_ms"
	MetricThroughput = "throughput"
	MetricEntropy    = "entropy"
	MetricStability  = "stability"
	MetricMemory     = "ram_mb"
	MetricColdStart  = "cold_start_ms"
)

// legacyAliases maps older key spellings onto SchemaVersion keys.
var legacyAliases = map[string]string{
	"confidence":   MetricConfidence,
	"ram_delta_mb": MetricMemory,
}

// CanonicalKey resolves a raw document key to its SchemaVersion key.
// The second return value is false for keys that are neither canonical
// nor a known alias.
func CanonicalKey(raw string) (key string, alias bool) {
	if k, ok := legacyAliases[raw]; ok {
		return k, true
	}
	return raw, false
}

// Polarity states whether larger or smaller values are better for a metric.
type Polarity int

const (
	// HigherIsBetter ranks larger values first.
	HigherIsBetter Polarity = iota
	// LowerIsBetter ranks smaller values first.
	LowerIsBetter
)

// String returns the polarity name used in API responses.
func (p Polarity) String() string {
	switch p {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so reports written by
// MarshalText read back.
func (p *Polarity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "higher_is_better":
		*p = HigherIsBetter
	case "lower_is_better":
		*p = LowerIsBetter
	default:
		return fmt.Errorf("unknown polarity %q", text)
	}
	return nil
}

// better reports whether a ranks strictly ahead of b.
func (p Polarity) better(a, b float64) bool {
	if p == HigherIsBetter {
		return a > b
	}
	return a < b
}

// Descriptor describes one metric. Descriptors are values and never change
// after the Catalog is built.
type Descriptor struct {
	Key         string   `json:"key" yaml:"key"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description" yaml:"description"`
	Hint        string   `json:"hint" yaml:"hint"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Polarity    Polarity `json:"polarity" yaml:"polarity"`
}

// Catalog is the fixed, ordered set of metrics the dashboard compares.
type Catalog struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewCatalog builds a Catalog. Keys must be non-empty and unique.
func NewCatalog(descriptors ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Key == "" {
			return nil, fmt.Errorf("metric descriptor with empty key")
		}
		if _, dup := c.index[d.Key]; dup {
			return nil, fmt.Errorf("duplicate metric key %q", d.Key)
		}
		c.index[d.Key] = len(c.descriptors)
		c.descriptors = append(c.descriptors, d)
	}
	return c, nil
}

// DefaultCatalog returns the seven metrics reported by the inference backend.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Descriptor{
			Key:         MetricConfidence,
			Label:       "Confidence (%)",
			Description: "How sure the model is about its prediction.",
			Hint:        "Higher confidence means the model is more certain about its decision.",
			Unit:        "%",
			Polarity:    HigherIsBetter,
		},
		Descriptor{
			Key:         MetricLatency,
			Label:       "Latency (ms)",
			Description: "Time taken to process one image.",
			Hint:        "Lower latency means faster response, which is better for real-time applications.",
			Unit:        "ms",
			Polarity:    LowerIsBetter,
		},
		Descriptor{
			Key:         MetricThroughput,
			Label:       "Throughput (img/s)",
			Description: "Images processed per second.",
			Hint:        "Higher throughput means more images handled in the same time.",
			Unit:        "img/s",
			Polarity:    HigherIsBetter,
		},
		Descriptor{
			Key:         MetricEntropy,
			Label:       "Prediction Uncertainty",
			Description: "Measures how uncertain the model is.",
			Hint:        "Lower uncertainty means the model is more decisive and reliable.",
			Polarity:    LowerIsBetter,
		},
		Descriptor{
			Key:         MetricStability,
			Label:       "Prediction Stability",
			Description: "Consistency of model outputs.",
			Hint:        "Lower values indicate more stable and reliable predictions.",
			Polarity:    LowerIsBetter,
		},
		Descriptor{
			Key:         MetricMemory,
			Label:       "Memory Usage (MB)",
			Description: "Extra memory used during inference.",
			Hint:        "Lower memory usage is better for deployment on limited hardware.",
			Unit:        "MB",
			Polarity:    LowerIsBetter,
		},
		Descriptor{
			Key:         MetricColdStart,
			Label:       "Cold Start (ms)",
			Description: "Time to load the model before the first prediction.",
			Hint:        "Lower cold start means the model is ready to serve sooner.",
			Unit:        "ms",
			Polarity:    LowerIsBetter,
		},
	)
	if err != nil {
		panic(err) // static table
	}
	return c
}

// Len returns the number of metrics.
func (c *Catalog) Len() int { return len(c.descriptors) }

// Descriptors returns a copy of the descriptors in display order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Keys returns the metric keys in display order.
func (c *Catalog) Keys() []string {
	return lo.Map(c.descriptors, func(d Descriptor, _ int) string { return d.Key })
}

// Get looks up a descriptor by canonical key or legacy alias.
func (c *Catalog) Get(key string) (Descriptor, bool) {
	key, _ = CanonicalKey(key)
	i, ok := c.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return c.descriptors[i], true
}

// MustGet is Get for keys known at compile time.
func (c *Catalog) MustGet(key string) Descriptor {
	d, ok := c.Get(key)
	if !ok {
		panic(fmt.Sprintf("ranking: unknown metric %q", key))
	}
	return d
}

// Has reports whether key (or its alias) is in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}
