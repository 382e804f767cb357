// Package scene animates every element of the tree toward the targets
// implied by the current mode, once per rendered frame.
package scene

import (
	"math"
	"sync"

	"github.com/ayusman/noel/internal/animate"
	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/mode"
)

// Smoothing rates, in fractions of the remaining gap per second.
const (
	introRate     = 3.0
	treeRate      = 2.5
	cloudRate     = 1.5
	particleScale = 4.0
	photoRate     = 3.0
	giftRate      = 3.0
	groupRate     = 2.0
)

// Fixed photo targets.
var (
	photoFront      = animate.Vec3{Z: 10}
	photoFrontScale = animate.Vec3{X: 4.5, Y: 6, Z: 1}
	photoTreeScale  = animate.Vec3{X: 1.35, Y: 1.8, Z: 1}
	photoCloudScale = animate.Vec3{X: 1.2, Y: 1.6, Z: 1}
)

// Input is everything a frame update depends on besides elapsed time.
type Input struct {
	Mode  mode.Mode
	Intro bool
	Palm  gesture.Palm
}

type element struct {
	handle    Handle
	transform animate.Transform
}

// Scene holds the current transform of every element. Update runs on the
// render loop; Snapshot and the photo accessors may be called concurrently.
type Scene struct {
	mu sync.RWMutex

	layout  *layout.Layout
	elapsed float64
	input   Input

	particles []element
	photos    []element
	gifts     []element
	group     animate.Transform

	active int
}

// New creates a scene for l. Particles start at their tree slots with zero
// scale, gifts start hidden and photos wait for AttachPhoto.
func New(l *layout.Layout) *Scene {
	s := &Scene{
		layout:    l,
		input:     Input{Mode: mode.Tree, Intro: true},
		particles: make([]element, len(l.Particles)),
		photos:    make([]element, len(l.Photos)),
		gifts:     make([]element, len(l.Gifts)),
		group: animate.Transform{
			Position: animate.Vec3{Y: -1},
			Scale:    animate.Uniform(1),
		},
	}

	for i, p := range l.Particles {
		s.particles[i].transform = animate.Transform{Position: p.Tree, Rotation: p.Rotation}
		s.particles[i].handle.Attach()
	}
	for i, g := range l.Gifts {
		s.gifts[i].transform = animate.Transform{
			Position: g.Position,
			Rotation: animate.Vec3{Y: g.RotY},
		}
		s.gifts[i].handle.Attach()
	}
	return s
}

// Layout returns the descriptors the scene animates.
func (s *Scene) Layout() *layout.Layout {
	return s.layout
}

// AttachPhoto marks photo i as loaded. Out-of-range indices are ignored.
func (s *Scene) AttachPhoto(i int) {
	if i < 0 || i >= len(s.photos) {
		return
	}
	s.photos[i].handle.Attach()
}

// ActivePhoto returns the index of the photo brought forward in PhotoView.
func (s *Scene) ActivePhoto() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// OnTransition advances the active photo on every entry into PhotoView.
// It has the mode.TransitionFunc signature so it can be registered directly.
func (s *Scene) OnTransition(from, to mode.Mode) {
	if to != mode.PhotoView || len(s.photos) == 0 {
		return
	}
	s.mu.Lock()
	s.active = (s.active + 1) % len(s.photos)
	s.mu.Unlock()
}

// Update advances the scene by dt seconds.
func (s *Scene) Update(dt float64, in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += dt
	s.input = in

	s.updateParticles(dt)
	s.updatePhotos(dt)
	s.updateGifts(dt)
	s.updateGroup(dt)
}

func (s *Scene) updateParticles(dt float64) {
	t := s.elapsed
	in := s.input

	rate := cloudRate
	switch {
	case in.Intro:
		rate = introRate
	case in.Mode == mode.Tree:
		rate = treeRate
	}

	for i := range s.particles {
		el := &s.particles[i]
		if !el.handle.Attached() {
			continue
		}
		p := &s.layout.Particles[i]
		id := float64(p.ID)
		star := p.Shape == layout.Star

		var target animate.Vec3
		switch {
		case in.Intro && star:
			target = animate.Vec3{}
		case in.Intro:
			target = p.Intro
		case in.Mode == mode.Tree:
			breathe := 1 + math.Sin(2*t+id)*0.05
			target = animate.Vec3{X: p.Tree.X * breathe, Y: p.Tree.Y, Z: p.Tree.Z * breathe}
		default:
			target = p.Scattered.Add(animate.Vec3{
				X: math.Cos(0.5*p.Speed*t+id) * 0.5,
				Y: math.Sin(p.Speed*t+id) * 1.5,
			})
		}
		el.transform.Position = animate.ApproachVec(el.transform.Position, target, rate, dt)

		var scale float64
		switch {
		case in.Intro && star:
			scale = 3 + math.Sin(3*t)*0.2
		case in.Intro:
			scale = 0
		case star:
			scale = 0.8 + math.Sin(2*t)*0.2
		default:
			scale = p.Scale * (1 + math.Sin(3*t+id)*0.3)
		}
		el.transform.Scale = animate.ApproachVec(el.transform.Scale, animate.Uniform(scale), particleScale, dt)

		if star {
			el.transform.Rotation.Y += 0.5 * dt
			el.transform.Rotation.X = math.Sin(0.5*t) * 0.1
		} else {
			el.transform.Rotation.X += p.Speed * dt
			el.transform.Rotation.Y += p.Speed * dt
		}
	}
}

func (s *Scene) updatePhotos(dt float64) {
	if s.input.Intro {
		return
	}
	t := s.elapsed

	for i := range s.photos {
		el := &s.photos[i]
		if !el.handle.Attached() {
			continue
		}
		p := &s.layout.Photos[i]
		active := i == s.active

		var pos, scale animate.Vec3
		switch {
		case s.input.Mode == mode.PhotoView && active:
			pos, scale = photoFront, photoFrontScale
		case s.input.Mode == mode.PhotoView:
			pos, scale = p.Scattered.Scale(1.5), animate.Vec3{}
		case s.input.Mode == mode.Tree:
			pos, scale = p.Tree, photoTreeScale
		default:
			pos = p.Scattered.Add(animate.Vec3{Y: math.Sin(t+float64(p.Index)) * 0.5})
			scale = photoCloudScale
		}
		el.transform.Position = animate.ApproachVec(el.transform.Position, pos, photoRate, dt)
		el.transform.Scale = animate.ApproachVec(el.transform.Scale, scale, photoRate, dt)

		switch {
		case s.input.Mode == mode.PhotoView && active:
			el.transform.Rotation = animate.Vec3{}
		case s.input.Mode == mode.Tree:
			// Face away from the trunk.
			el.transform.Rotation = animate.Vec3{Y: math.Atan2(p.Tree.X, p.Tree.Z)}
		default:
			el.transform.Rotation.X += 0.2 * dt
			el.transform.Rotation.Y += 0.2 * dt
		}
	}
}

func (s *Scene) updateGifts(dt float64) {
	t := s.elapsed

	for i := range s.gifts {
		el := &s.gifts[i]
		if !el.handle.Attached() {
			continue
		}
		g := &s.layout.Gifts[i]

		target := 0.0
		if !s.input.Intro && s.input.Mode == mode.Tree {
			target = g.Scale
		}
		scale := animate.Approach(el.transform.Scale.X, target, giftRate, dt)
		el.transform.Scale = animate.Uniform(scale)

		if target > 0.1 {
			el.transform.Rotation.Y = g.RotY + math.Sin(0.5*t+float64(g.ID))*0.05
		}
	}
}

func (s *Scene) updateGroup(dt float64) {
	in := s.input
	g := &s.group

	scale, y := 1.1, 0.0
	if in.Mode == mode.Tree {
		scale, y = 0.8, -1.0
	}
	g.Scale = animate.ApproachVec(g.Scale, animate.Uniform(scale), groupRate, dt)
	g.Position.Y = animate.Approach(g.Position.Y, y, groupRate, dt)

	switch {
	case in.Intro:
		g.Rotation.Y += 0.05 * dt
		g.Rotation.X = animate.Approach(g.Rotation.X, 0, 1, dt)
	case in.Mode == mode.Tree:
		g.Rotation.Y += 0.15 * dt
		g.Rotation.X = animate.Approach(g.Rotation.X, 0, groupRate, dt)
	case in.Mode == mode.PhotoView:
		g.Rotation.X = animate.Approach(g.Rotation.X, 0, groupRate, dt)
	default:
		g.Rotation.X = animate.Approach(g.Rotation.X, in.Palm.Y*0.8, groupRate, dt)
		g.Rotation.Y = animate.Approach(g.Rotation.Y, in.Palm.X*0.8, groupRate, dt)
	}
}
