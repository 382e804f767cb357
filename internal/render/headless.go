package render

import (
	"context"
	"time"
)

// HeadlessInterval is the tick period of the headless backend.
const HeadlessInterval = 33 * time.Millisecond

// Headless advances the scene without drawing it, for runs that are only
// observed through the HTTP port. Photos count as ready immediately.
type Headless struct {
	// Photos is the number of photo slots to attach on the first tick.
	Photos   int
	Interval time.Duration
}

// Run steps src until ctx is cancelled.
func (h *Headless) Run(ctx context.Context, src Source) error {
	interval := h.Interval
	if interval <= 0 {
		interval = HeadlessInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	clk := newClock()
	attached := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		src.Step(clk.tick())
		if !attached {
			for i := 0; i < h.Photos; i++ {
				src.AttachPhoto(i)
			}
			attached = true
		}
	}
}
