// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
)

// Point is a 3D marker position. Absent coordinates are stored as NaN.
type Point struct {
	X float64
	Y float64
	Z float64
}

// MissingPoint returns a Point with every coordinate absent.
func MissingPoint() Point {
	nan := math.NaN()
	return Point{X: nan, Y: nan, Z: nan}
}

// Missing reports whether any coordinate is absent.
func (p Point) Missing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)
}

// Equal compares two points coordinate by coordinate. Missing points are
// equal to each other.
func (p Point) Equal(o Point) bool {
	if p.Missing() || o.Missing() {
		return p.Missing() && o.Missing()
	}
	return p.X == o.X && p.Y == o.Y && p.Z == o.Z
}

// MarshalJSON encodes the point as [x, y, z], or null when missing.
func (p Point) MarshalJSON() ([]byte, error) {
	if p.Missing() {
		return []byte("null"), nil
	}
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}
