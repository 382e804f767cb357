package scene

import (
	"github.com/ayusman/noel/internal/animate"
	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/mode"
)

// ParticleView is one particle as of the last Update.
type ParticleView struct {
	ID        int
	Shape     layout.Shape
	Color     layout.Color
	Transform animate.Transform
}

// PhotoView is one photo as of the last Update. Photos are not visible
// during the intro or before their texture is attached.
type PhotoView struct {
	Index     int
	URL       string
	Active    bool
	Visible   bool
	Transform animate.Transform
}

// GiftView is one gift as of the last Update.
type GiftView struct {
	ID        int
	Color     layout.Color
	Ribbon    layout.Color
	Transform animate.Transform
}

// Summary is the scene state without per-element detail.
type Summary struct {
	Elapsed     float64           `json:"elapsed"`
	Mode        mode.Mode         `json:"mode"`
	Intro       bool              `json:"intro"`
	Group       animate.Transform `json:"group"`
	ActivePhoto int               `json:"active_photo"`
}

// Snapshot is a copy of the scene that the caller owns. Element transforms
// are in group space; apply Group to reach world space.
type Snapshot struct {
	Summary
	Particles []ParticleView
	Photos    []PhotoView
	Gifts     []GiftView
}

// Summary returns the scene state without per-element detail.
func (s *Scene) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary()
}

func (s *Scene) summary() Summary {
	return Summary{
		Elapsed:     s.elapsed,
		Mode:        s.input.Mode,
		Intro:       s.input.Intro,
		Group:       s.group,
		ActivePhoto: s.active,
	}
}

// Snapshot copies the current state of every element.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Summary:   s.summary(),
		Particles: make([]ParticleView, len(s.particles)),
		Photos:    make([]PhotoView, len(s.photos)),
		Gifts:     make([]GiftView, len(s.gifts)),
	}

	for i := range s.particles {
		p := &s.layout.Particles[i]
		snap.Particles[i] = ParticleView{
			ID:        p.ID,
			Shape:     p.Shape,
			Color:     p.Color,
			Transform: s.particles[i].transform,
		}
	}
	for i := range s.photos {
		p := &s.layout.Photos[i]
		snap.Photos[i] = PhotoView{
			Index:     p.Index,
			URL:       p.URL,
			Active:    i == s.active,
			Visible:   !s.input.Intro && s.photos[i].handle.Attached(),
			Transform: s.photos[i].transform,
		}
	}
	for i := range s.gifts {
		g := &s.layout.Gifts[i]
		snap.Gifts[i] = GiftView{
			ID:        g.ID,
			Color:     g.Color,
			Ribbon:    g.Ribbon,
			Transform: s.gifts[i].transform,
		}
	}
	return snap
}
