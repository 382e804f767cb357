package render

import (
	"context"
	"testing"
	"time"
)

func TestHeadless_Run(t *testing.T) {
	src := newFakeSource()
	h := &Headless{Photos: 3, Interval: 2 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		errc <- h.Run(ctx, src)
	}()

	waitFor(t, "steps", func() bool { return src.Steps() > 5 })
	if src.Attached() != 3 {
		t.Errorf("attached photos = %d, want 3", src.Attached())
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
