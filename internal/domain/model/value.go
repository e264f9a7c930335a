package model

import (
	"encoding/json"
	"math"
)

// Value is a scalar measurement that may be absent. The zero Value is missing.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a present measurement.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the missing measurement.
func None() Value { return Value{} }

// ValueOf wraps v, treating NaN and infinities as missing.
func ValueOf(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None()
	}
	return Some(v)
}

// Float returns the measurement, or NaN when missing.
func (v Value) Float() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.V
}

// MarshalJSON encodes the measurement as a number, or null when missing.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	var f *float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f == nil {
		*v = None()
		return nil
	}
	*v = Some(*f)
	return nil
}
