// Package render draws scene snapshots. The window backend uses Ebitengine,
// the terminal backend uses tcell; both share the projection in camera.go.
package render

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/shell"
)

// MaxFrameDelta caps the time step handed to the animator after a stall.
const MaxFrameDelta = 0.1

// Background is the clear color, #020502.
var Background = [3]uint8{0x02, 0x05, 0x02}

// ErrNoDisplay is returned when a backend cannot open its output.
var ErrNoDisplay = errors.New("display unavailable")

// Frame is everything a backend draws for one tick.
type Frame struct {
	Scene scene.Snapshot
	HUD   shell.View
}

// Source drives a renderer. Step is called once per rendered frame on the
// render loop.
type Source interface {
	// Step advances the world by dt seconds and returns what to draw.
	Step(dt float64) Frame
	// Start opens the intro gate.
	Start()
	// AttachPhoto reports that photo i can be drawn.
	AttachPhoto(i int)
}

// Renderer owns the main loop until ctx is cancelled or the user quits.
type Renderer interface {
	Run(ctx context.Context, src Source) error
}

// clock produces clamped frame deltas from the monotonic clock.
type clock struct {
	last time.Time
	now  func() time.Time
}

func newClock() *clock {
	return &clock{now: time.Now}
}

// tick returns seconds since the previous tick, at most MaxFrameDelta.
// The first tick returns 0.
func (c *clock) tick() float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt > MaxFrameDelta {
		return MaxFrameDelta
	}
	if dt < 0 {
		return 0
	}
	return dt
}
