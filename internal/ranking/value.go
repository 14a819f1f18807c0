// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package ranking

import (
	"math"
	"strconv"
)

// Value is an optional metric measurement. The zero Value is Missing.
type Value struct {
	Number  float64
	Present bool
}

// Of returns a present Value.
func Of(v float64) Value {
	return Value{Number: v, Present: true}
}

// Missing returns a Value with no measurement.
func Missing() Value {
	return Value{}
}

// IsMissing reports whether the value has no measurement.
func (v Value) IsMissing() bool { return !v.Present }

// Float returns the measurement, or 0 when missing.
func (v Value) Float() float64 {
	if !v.Present {
		return 0
	}
	return v.Number
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.Number, 'g', -1, 64), nil
}

// UnmarshalJSON decodes null as missing.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// MarshalYAML encodes a missing value as null.
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.Present {
		return nil, nil
	}
	return v.Number, nil
}

// floater is satisfied by json.Number from both encoding/json and go-json.
type floater interface {
	Float64() (float64, error)
}

// numeric converts a decoded document value into a Value. Strings, booleans,
// NaN and infinities are not measurements.
func numeric(raw any) Value {
	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case Value:
		return n
	case floater:
		v, err := n.Float64()
		if err != nil {
			return Missing()
		}
		f = v
	default:
		return Missing()
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Of(f)
}
