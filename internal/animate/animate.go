// Package animate provides the exponential smoothing shared by every animated
// element, along with the small vector and transform types it operates on.
package animate

import "math"

// Vec3 is a point or direction in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Uniform returns a vector with all components set to s.
func Uniform(s float64) Vec3 {
	return Vec3{s, s, s}
}

// Factor returns the fraction of the remaining distance covered in one step.
// It is clamped to 1 so a long frame lands on the target instead of passing it.
func Factor(rate, dt float64) float64 {
	f := rate * dt
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// Approach moves cur toward target by Factor(rate, dt) of the gap.
func Approach(cur, target, rate, dt float64) float64 {
	return cur + (target-cur)*Factor(rate, dt)
}

// ApproachVec is Approach applied per component.
func ApproachVec(cur, target Vec3, rate, dt float64) Vec3 {
	f := Factor(rate, dt)
	return Vec3{
		X: cur.X + (target.X-cur.X)*f,
		Y: cur.Y + (target.Y-cur.Y)*f,
		Z: cur.Z + (target.Z-cur.Z)*f,
	}
}

// Transform is the current render state of one element.
type Transform struct {
	Position Vec3 `json:"position"`
	Scale    Vec3 `json:"scale"`
	Rotation Vec3 `json:"rotation"`
}

// Identity returns a transform at the origin with unit scale.
func Identity() Transform {
	return Transform{Scale: Uniform(1)}
}
