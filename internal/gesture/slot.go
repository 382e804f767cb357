package gesture

import "sync"

// Slot is a single-value, last-write-wins mailbox between the detection loop
// and the render loop. Writers never block and readers always see the most
// recent sample; intermediate samples are dropped.
type Slot struct {
	mu      sync.RWMutex
	sample  Sample
	version uint64
	notify  chan struct{}
}

// NewSlot returns a slot holding NoHand.
func NewSlot() *Slot {
	return &Slot{
		sample: NoHand,
		notify: make(chan struct{}, 1),
	}
}

// Publish replaces the held sample.
func (s *Slot) Publish(sample Sample) {
	s.mu.Lock()
	s.sample = sample
	s.version++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Latest returns the most recent sample and its version. The version grows
// by one per Publish and is zero before the first one.
func (s *Slot) Latest() (Sample, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample, s.version
}

// Updated is signalled after a Publish. It holds at most one pending
// notification, so a slow reader wakes once for any number of writes.
func (s *Slot) Updated() <-chan struct{} {
	return s.notify
}
