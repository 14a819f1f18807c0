// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

var abc = []string{"A", "B", "C"}

func exampleDocument() *Document {
	return &Document{Data: map[string]map[string]any{
		"A": {"confidence_percent": 90.0, "latency_ms": 50.0},
		"C": {"confidence_percent": 70.0},
	}}
}

func TestNormalize_WorkedExample(t *testing.T) {
	t.Parallel()

	records := Normalize(exampleDocument(), abc)

	if got := records.ModelIDs(); !reflect.DeepEqual(got, abc) {
		t.Fatalf("model order = %v, want %v", got, abc)
	}

	tests := []struct {
		model  string
		metric string
		want   float64
	}{
		{"A", MetricConfidence, 90},
		{"A", MetricLatency, 50},
		{"B", MetricConfidence, 0},
		{"B", MetricLatency, 0},
		{"C", MetricConfidence, 70},
		{"C", MetricLatency, 0},
	}
	byID := map[string]Record{}
	for _, r := range records {
		byID[r.ModelID] = r
	}
	for _, tt := range tests {
		if got := byID[tt.model].Value(tt.metric).Float(); got != tt.want {
			t.Errorf("%s.%s = %v, want %v", tt.model, tt.metric, got, tt.want)
		}
	}

	if !byID["B"].Value(MetricConfidence).IsMissing() {
		t.Error("B confidence should be missing, not a measured zero")
	}
	if byID["A"].Value(MetricConfidence).IsMissing() {
		t.Error("A confidence should be present")
	}
}

func TestNormalize_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *Document
	}{
		{"nil document", nil},
		{"empty data", &Document{}},
		{"subset", exampleDocument()},
		{"superset", &Document{Data: map[string]map[string]any{
			"A": {"latency_ms": 1.0}, "B": {}, "C": {}, "D": {"latency_ms": 0.1}, "E": {},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			records := Normalize(tt.doc, abc)
			if len(records) != len(abc) {
				t.Fatalf("len = %d, want %d", len(records), len(abc))
			}
			if got := records.ModelIDs(); !reflect.DeepEqual(got, abc) {
				t.Errorf("order = %v, want %v", got, abc)
			}
			for _, r := range records {
				if len(r.Values) != DefaultCatalog().Len() {
					t.Errorf("%s has %d values, want one per metric", r.ModelID, len(r.Values))
				}
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	first := Normalize(exampleDocument(), abc)
	second := Normalize(first.Document(), abc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize not idempotent:\n first=%+v\nsecond=%+v", first, second)
	}

	zero := first.ZeroFilled()
	again := Normalize(zero.Document(), abc)
	if !reflect.DeepEqual(zero, again) {
		t.Error("normalize not idempotent over zero-filled records")
	}
}

func TestNormalize_NonNumericAndAliases(t *testing.T) {
	t.Parallel()

	doc := &Document{Data: map[string]map[string]any{
		"A": {
			"confidence_percent": "90",
			"latency_ms":         math.NaN(),
			"entropy":            true,
			"stability":          math.Inf(1),
			"ram_delta_mb":       12.5,
			"throughput":         int64(300),
		},
		"B": {
			"confidence":         55.0,
			"confidence_percent": 60.0,
			"latency_ms":         nil,
		},
		"C": {
			"confidence":         40.0,
			"confidence_percent": "n/a",
		},
	}}

	records := Normalize(doc, abc)
	a, b, c := records[0], records[1], records[2]

	for _, key := range []string{MetricConfidence, MetricLatency, MetricEntropy, MetricStability} {
		if !a.Value(key).IsMissing() {
			t.Errorf("A.%s should be missing, got %+v", key, a.Value(key))
		}
	}
	if got := a.Value(MetricMemory); got != Of(12.5) {
		t.Errorf("A.ram_mb via alias = %+v, want 12.5", got)
	}
	if got := a.Value(MetricThroughput); got != Of(300) {
		t.Errorf("A.throughput = %+v, want 300", got)
	}
	if got := b.Value(MetricConfidence); got != Of(60) {
		t.Errorf("canonical key should win over alias, got %+v", got)
	}
	if !b.Value(MetricLatency).IsMissing() {
		t.Error("null latency should be missing")
	}
	if got := c.Value(MetricConfidence); got != Of(40) {
		t.Errorf("alias should fill a non-numeric canonical value, got %+v", got)
	}
}

func TestNormalizeStrict(t *testing.T) {
	t.Parallel()

	t.Run("reports every missing pair", func(t *testing.T) {
		t.Parallel()
		records, err := NormalizeStrict(exampleDocument(), abc)
		if len(records) != 3 {
			t.Fatalf("records len = %d", len(records))
		}
		if !errors.Is(err, ErrMissingMetricData) {
			t.Fatalf("err = %v, want ErrMissingMetricData", err)
		}
		var mme *MissingMetricError
		if !errors.As(err, &mme) {
			t.Fatalf("err is not *MissingMetricError: %T", err)
		}
		perMetric := DefaultCatalog().Len()
		// A has 2 of 7, B none, C 1 of 7.
		want := (perMetric - 2) + perMetric + (perMetric - 1)
		if len(mme.Pairs) != want {
			t.Errorf("missing pairs = %d, want %d", len(mme.Pairs), want)
		}
		if mme.Pairs[0].ModelID != "A" || mme.Pairs[0].Reason != ReasonAbsent {
			t.Errorf("first pair = %+v", mme.Pairs[0])
		}
		for _, p := range mme.Pairs {
			if p.ModelID == "B" && p.Reason != ReasonNoModel {
				t.Errorf("B pair reason = %q, want %q", p.Reason, ReasonNoModel)
			}
		}
	})

	t.Run("complete document", func(t *testing.T) {
		t.Parallel()
		full := map[string]any{}
		for _, k := range DefaultCatalog().Keys() {
			full[k] = 1.0
		}
		doc := &Document{Data: map[string]map[string]any{"A": full}}
		if _, err := NormalizeStrict(doc, []string{"A"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty model list", func(t *testing.T) {
		t.Parallel()
		records, err := NormalizeStrict(exampleDocument(), nil)
		if !errors.Is(err, ErrEmptyResultSet) {
			t.Errorf("err = %v, want ErrEmptyResultSet", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("records = %v, want empty non-nil", records)
		}
	})
}

func TestRank_WorkedExample(t *testing.T) {
	t.Parallel()

	records := Normalize(exampleDocument(), abc)
	catalog := DefaultCatalog()

	for _, policy := range []MissingPolicy{MissingLast, MissingAsZero} {
		ranked := Rank(records, catalog.MustGet(MetricConfidence), Options{Missing: policy})
		if got := ranked.ModelIDs(); !reflect.DeepEqual(got, []string{"A", "C", "B"}) {
			t.Errorf("%s: confidence order = %v, want [A C B]", policy, got)
		}
		if ranked.Best != "A" {
			t.Errorf("%s: best = %q, want A", policy, ranked.Best)
		}
		if !ranked.Significant {
			t.Errorf("%s: ranking should be significant", policy)
		}
	}
}

func TestRank_MissingNeverBest(t *testing.T) {
	t.Parallel()

	records := Normalize(exampleDocument(), abc)
	latency := DefaultCatalog().MustGet(MetricLatency)

	ranked := Rank(records, latency, Options{Missing: MissingLast})
	if ranked.Best != "A" {
		t.Errorf("best = %q, want A (the only measured latency)", ranked.Best)
	}
	if got := ranked.ModelIDs(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("order = %v, want [A B C]", got)
	}
	if ranked.Measured != 1 || ranked.Significant {
		t.Errorf("measured=%d significant=%v, want 1/false", ranked.Measured, ranked.Significant)
	}

	legacy := Rank(records, latency, Options{Missing: MissingAsZero})
	if legacy.Best != "B" {
		t.Errorf("zero policy best = %q, want B (missing counted as 0)", legacy.Best)
	}
}

func TestRank_PolarityOrder(t *testing.T) {
	t.Parallel()

	doc := &Document{Data: map[string]map[string]any{}}
	models := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	vals := []float64{3, 1, 4, 1, 5, 9}
	for i, id := range models {
		row := map[string]any{}
		for _, k := range DefaultCatalog().Keys() {
			row[k] = vals[i] * float64(len(k))
		}
		doc.Data[id] = row
	}
	records := Normalize(doc, models)

	for _, d := range DefaultCatalog().Descriptors() {
		for _, policy := range []MissingPolicy{MissingLast, MissingAsZero} {
			ranked := Rank(records, d, Options{Missing: policy})
			for i := 1; i < len(ranked.Entries); i++ {
				prev, cur := ranked.Entries[i-1].Value.Float(), ranked.Entries[i].Value.Float()
				if d.Polarity == HigherIsBetter && prev < cur {
					t.Errorf("%s: not non-increasing at %d: %v < %v", d.Key, i, prev, cur)
				}
				if d.Polarity == LowerIsBetter && prev > cur {
					t.Errorf("%s: not non-decreasing at %d: %v > %v", d.Key, i, prev, cur)
				}
			}
		}
	}
}

func TestRank_StableTies(t *testing.T) {
	t.Parallel()

	doc := &Document{Data: map[string]map[string]any{
		"A": {"latency_ms": 2.0, "confidence_percent": 80.0},
		"B": {"latency_ms": 1.0, "confidence_percent": 80.0},
		"C": {"latency_ms": 2.0, "confidence_percent": 80.0},
		"D": {"latency_ms": 1.0, "confidence_percent": 99.0},
	}}
	models := []string{"C", "A", "D", "B"}
	records := Normalize(doc, models)
	catalog := DefaultCatalog()

	lat := Rank(records, catalog.MustGet(MetricLatency), DefaultOptions())
	if got := lat.ModelIDs(); !reflect.DeepEqual(got, []string{"D", "B", "C", "A"}) {
		t.Errorf("latency order = %v, want [D B C A]", got)
	}

	conf := Rank(records, catalog.MustGet(MetricConfidence), DefaultOptions())
	if got := conf.ModelIDs(); !reflect.DeepEqual(got, []string{"D", "C", "A", "B"}) {
		t.Errorf("confidence order = %v, want [D C A B]", got)
	}
}

func TestRank_AllEqualIsNotSignificant(t *testing.T) {
	t.Parallel()

	records := Normalize(nil, abc)
	ranked := Rank(records, DefaultCatalog().MustGet(MetricEntropy), Options{Missing: MissingAsZero})
	if ranked.Best != "A" {
		t.Errorf("best = %q, want first canonical model A", ranked.Best)
	}
	if ranked.Significant {
		t.Error("all-zero ranking must not be significant")
	}

	ranked = Rank(records, DefaultCatalog().MustGet(MetricEntropy), Options{Missing: MissingLast})
	if ranked.Best != "" {
		t.Errorf("best = %q, want none when nothing is measured", ranked.Best)
	}
	if len(ranked.Entries) != 3 {
		t.Errorf("missing models should still be listed, got %d", len(ranked.Entries))
	}
}

func TestRank_Empty(t *testing.T) {
	t.Parallel()

	ranked := Rank(nil, DefaultCatalog().MustGet(MetricLatency), DefaultOptions())
	if ranked.Entries == nil || len(ranked.Entries) != 0 {
		t.Errorf("entries = %v, want empty non-nil", ranked.Entries)
	}
	if ranked.Best != "" {
		t.Errorf("best = %q, want empty", ranked.Best)
	}

	all := DefaultCatalog().RankAll(Normalize(nil, nil), DefaultOptions())
	if len(all) != DefaultCatalog().Len() {
		t.Errorf("RankAll len = %d", len(all))
	}
}
