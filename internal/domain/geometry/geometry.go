// Package geometry provides the per-frame vector arithmetic used by the
// deviation analysis: shoulder midpoints and joint distances.
//
// Every function is pure. A missing input yields a missing output; nothing
// here substitutes zero for an absent coordinate.
package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/okian/freethrow/internal/domain/model"
)

// Midpoint returns the component-wise mean of a and b.
// The result is missing when either input is missing.
func Midpoint(a, b model.Point) model.Point {
	if a.Missing() || b.Missing() {
		return model.MissingPoint()
	}
	return fromVec(r3.Scale(0.5, r3.Add(toVec(a), toVec(b))))
}

// Deviation returns the Euclidean distance between joint and mid:
// sqrt(sum((joint_i - mid_i)^2)). The result is missing when either input is.
func Deviation(joint, mid model.Point) model.Value {
	if joint.Missing() || mid.Missing() {
		return model.None()
	}
	return model.ValueOf(r3.Norm(r3.Sub(toVec(joint), toVec(mid))))
}

func toVec(p model.Point) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

func fromVec(v r3.Vec) model.Point { return model.Point{X: v.X, Y: v.Y, Z: v.Z} }
