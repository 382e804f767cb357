package gesture

import (
	"sync"
	"testing"
	"time"
)

func TestSlot_LastWriteWins(t *testing.T) {
	slot := NewSlot()

	s, v := slot.Latest()
	if s != NoHand || v != 0 {
		t.Fatalf("initial Latest() = %+v/%d, want NoHand/0", s, v)
	}

	slot.Publish(Sample{Gesture: Fist, Hand: true})
	slot.Publish(Sample{Gesture: Open, Hand: true})
	slot.Publish(Sample{Gesture: Grab, Palm: Palm{X: 0.3, Y: -0.2}, Hand: true})

	s, v = slot.Latest()
	if s.Gesture != Grab || s.Palm.X != 0.3 || s.Palm.Y != -0.2 {
		t.Errorf("Latest() = %+v, want the GRAB sample", s)
	}
	if v != 3 {
		t.Errorf("version = %d, want 3", v)
	}
}

func TestSlot_UpdatedCoalesces(t *testing.T) {
	slot := NewSlot()

	for i := 0; i < 10; i++ {
		slot.Publish(Sample{Gesture: Open, Hand: true})
	}

	select {
	case <-slot.Updated():
	case <-time.After(time.Second):
		t.Fatal("expected a pending notification")
	}

	select {
	case <-slot.Updated():
		t.Fatal("expected notifications to coalesce into one")
	default:
	}
}

func TestSlot_ConcurrentAccess(t *testing.T) {
	slot := NewSlot()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			slot.Publish(Sample{Gesture: Kind(i % 4), Hand: true})
		}
	}()

	go func() {
		defer wg.Done()
		var last uint64
		for i := 0; i < 1000; i++ {
			_, v := slot.Latest()
			if v < last {
				t.Errorf("version went backwards: %d after %d", v, last)
				return
			}
			last = v
		}
	}()

	wg.Wait()

	if _, v := slot.Latest(); v != 1000 {
		t.Errorf("final version = %d, want 1000", v)
	}
}
