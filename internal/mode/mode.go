// Package mode reduces the gesture stream to the visualization mode.
package mode

import (
	"sync"

	"github.com/ayusman/noel/internal/gesture"
)

// Mode is the formation every element animates toward.
type Mode int

const (
	// Tree gathers particles into the spiral cone.
	Tree Mode = iota
	// Scattered spreads particles into a cloud the palm can rotate.
	Scattered
	// PhotoView brings the active photo to the front.
	PhotoView
)

func (m Mode) String() string {
	switch m {
	case Scattered:
		return "SCATTERED"
	case PhotoView:
		return "PHOTO_VIEW"
	default:
		return "TREE"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// For returns the mode a gesture selects, and false for gestures that leave
// the mode unchanged. The mapping ignores the current mode.
func For(k gesture.Kind) (Mode, bool) {
	switch k {
	case gesture.Grab:
		return PhotoView, true
	case gesture.Fist:
		return Tree, true
	case gesture.Open:
		return Scattered, true
	default:
		return 0, false
	}
}

// TransitionFunc observes a mode change.
type TransitionFunc func(from, to Mode)

// Machine holds the current mode and the intro gate. Gestures are ignored
// until Start is called. There is no debouncing: every classified gesture
// applies immediately.
type Machine struct {
	mu        sync.RWMutex
	current   Mode
	started   bool
	listeners []TransitionFunc
	startFns  []func()
}

// NewMachine returns a machine in Tree mode with the gate closed.
func NewMachine() *Machine {
	return &Machine{current: Tree}
}

// Current returns the current mode.
func (m *Machine) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Started reports whether the intro gate has been passed.
func (m *Machine) Started() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

// Start opens the intro gate. It returns true only on the first call.
func (m *Machine) Start() bool {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return false
	}
	m.started = true
	fns := append([]func(){}, m.startFns...)
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return true
}

// OnStart registers fn to run when the gate opens.
func (m *Machine) OnStart(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startFns = append(m.startFns, fn)
}

// OnTransition registers fn to run after every actual mode change.
// Listeners run synchronously on the goroutine calling Apply.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Apply feeds one gesture to the machine and returns the resulting mode and
// whether it changed.
func (m *Machine) Apply(k gesture.Kind) (Mode, bool) {
	m.mu.Lock()
	if !m.started {
		cur := m.current
		m.mu.Unlock()
		return cur, false
	}

	next, ok := For(k)
	if !ok || next == m.current {
		cur := m.current
		m.mu.Unlock()
		return cur, false
	}

	from := m.current
	m.current = next
	listeners := append([]TransitionFunc{}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(from, next)
	}
	return next, true
}
