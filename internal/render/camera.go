package render

import (
	"math"
	"sort"

	"github.com/ayusman/noel/internal/animate"
	"github.com/ayusman/noel/internal/scene"
)

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	Z    float64
	FOV  float64 // vertical, degrees
	Near float64
}

// DefaultCamera frames the whole tree with gifts and greeting.
func DefaultCamera() Camera {
	return Camera{Z: 22, FOV: 45, Near: 0.1}
}

// Point is a projected position.
type Point struct {
	X, Y  float64
	Depth float64
	// Scale converts world units at this depth to pixels.
	Scale float64
}

// Focal returns the focal length in pixels for a viewport height h.
func (c Camera) Focal(h float64) float64 {
	return (h / 2) / math.Tan(c.FOV*math.Pi/360)
}

// Project maps a world position onto a w×h viewport with Y pointing down.
// It returns false for points behind the near plane.
func (c Camera) Project(p animate.Vec3, w, h float64) (Point, bool) {
	depth := c.Z - p.Z
	if depth < c.Near {
		return Point{}, false
	}
	f := c.Focal(h) / depth
	return Point{
		X:     w/2 + p.X*f,
		Y:     h/2 - p.Y*f,
		Depth: depth,
		Scale: f,
	}, true
}

// Rotate applies Euler angles in XYZ order.
func Rotate(v, r animate.Vec3) animate.Vec3 {
	if r.Z != 0 {
		s, c := math.Sincos(r.Z)
		v = animate.Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
	}
	if r.Y != 0 {
		s, c := math.Sincos(r.Y)
		v = animate.Vec3{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
	}
	if r.X != 0 {
		s, c := math.Sincos(r.X)
		v = animate.Vec3{X: v.X, Y: v.Y*c - v.Z*s, Z: v.Y*s + v.Z*c}
	}
	return v
}

// Apply maps a point in t's local space to t's parent space.
func Apply(t animate.Transform, local animate.Vec3) animate.Vec3 {
	scaled := animate.Vec3{X: local.X * t.Scale.X, Y: local.Y * t.Scale.Y, Z: local.Z * t.Scale.Z}
	return Rotate(scaled, t.Rotation).Add(t.Position)
}

// groupScale is the uniform scale of the group, used for element sizes.
func groupScale(t animate.Transform) float64 {
	return t.Scale.X
}

type itemKind int

const (
	itemParticle itemKind = iota
	itemGift
	itemPhoto
)

// item is one drawable with its projected center.
type item struct {
	kind  itemKind
	index int
	at    Point
}

// drawList projects every visible element of snap and sorts them back to
// front. Elements with zero scale are dropped.
func drawList(snap *scene.Snapshot, cam Camera, w, h float64) []item {
	group := snap.Group
	items := make([]item, 0, len(snap.Particles)+len(snap.Gifts)+len(snap.Photos))

	add := func(kind itemKind, i int, t animate.Transform) {
		if t.Scale.X <= 0 && t.Scale.Y <= 0 {
			return
		}
		p, ok := cam.Project(Apply(group, t.Position), w, h)
		if !ok {
			return
		}
		items = append(items, item{kind: kind, index: i, at: p})
	}

	for i := range snap.Particles {
		add(itemParticle, i, snap.Particles[i].Transform)
	}
	for i := range snap.Gifts {
		add(itemGift, i, snap.Gifts[i].Transform)
	}
	for i := range snap.Photos {
		if snap.Photos[i].Visible {
			add(itemPhoto, i, snap.Photos[i].Transform)
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].at.Depth > items[b].at.Depth
	})
	return items
}

// starOutline returns the ten vertices of a five-pointed star with outer
// radius 1 in the XY plane, starting at the top.
func starOutline() []animate.Vec3 {
	const inner = 0.45
	pts := make([]animate.Vec3, 10)
	for i := range pts {
		r := 1.0
		if i%2 == 1 {
			r = inner
		}
		a := float64(i) / 5 * math.Pi
		pts[i] = animate.Vec3{X: math.Sin(a) * r, Y: math.Cos(a) * r}
	}
	return pts
}

// quad returns the corners of a unit plane centered on the origin, in
// top-left, top-right, bottom-left, bottom-right order.
func quad() [4]animate.Vec3 {
	return [4]animate.Vec3{
		{X: -0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
		{X: -0.5, Y: -0.5},
		{X: 0.5, Y: -0.5},
	}
}

// projectShape maps shape vertices through element transform t and group
// transform g onto the viewport.
func projectShape(cam Camera, g, t animate.Transform, shape []animate.Vec3, w, h float64) ([]Point, bool) {
	out := make([]Point, len(shape))
	for i, v := range shape {
		p, ok := cam.Project(Apply(g, Apply(t, v)), w, h)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}
