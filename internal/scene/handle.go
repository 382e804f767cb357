package scene

import "sync/atomic"

// Handle tracks whether the renderer has attached an element. Detached
// elements keep their transform and are skipped until attached.
type Handle struct {
	attached atomic.Bool
}

// Attach marks the element ready. Safe to call from any goroutine.
func (h *Handle) Attach() {
	h.attached.Store(true)
}

// Attached reports whether the element is ready.
func (h *Handle) Attached() bool {
	return h.attached.Load()
}
