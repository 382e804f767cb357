package render

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/logging"
	"github.com/ayusman/noel/internal/mode"
	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/shell"
)

// fakeSource drives a real scene without gestures.
type fakeSource struct {
	mu       sync.Mutex
	scene    *scene.Scene
	machine  *mode.Machine
	shell    *shell.Shell
	steps    int
	attached map[int]bool
}

func newFakeSource() *fakeSource {
	cfg := layout.DefaultConfig()
	cfg.ParticleCount = 300
	l := layout.Generate(cfg, []string{"a", "b", "c"}, rand.New(rand.NewPCG(5, 6)))
	m := mode.NewMachine()
	return &fakeSource{
		scene:    scene.New(l),
		machine:  m,
		shell:    shell.New(m, ""),
		attached: map[int]bool{},
	}
}

func (f *fakeSource) Step(dt float64) Frame {
	f.mu.Lock()
	f.steps++
	f.mu.Unlock()

	f.scene.Update(dt, scene.Input{Mode: f.machine.Current(), Intro: !f.machine.Started()})
	return Frame{Scene: f.scene.Snapshot(), HUD: f.shell.View()}
}

func (f *fakeSource) Start() {
	f.shell.Start()
}

func (f *fakeSource) AttachPhoto(i int) {
	f.mu.Lock()
	f.attached[i] = true
	f.mu.Unlock()
	f.scene.AttachPhoto(i)
}

func (f *fakeSource) Steps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps
}

func (f *fakeSource) Attached() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attached)
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		} else {
			b.WriteRune(' ')
		}
		if (i+1)%w == 0 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTerminal_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping terminal loop test in short mode")
	}

	sim := tcell.NewSimulationScreen("UTF-8")
	src := newFakeSource()
	term := NewTerminal(sim, logging.Discard())

	errc := make(chan error, 1)
	go func() {
		errc <- term.Run(context.Background(), src)
	}()

	waitFor(t, "first frames", func() bool { return src.Steps() > 2 })
	sim.SetSize(100, 40)

	if src.Attached() != 3 {
		t.Errorf("attached photos = %d, want 3", src.Attached())
	}

	waitFor(t, "intro title", func() bool { return strings.Contains(screenText(sim), shell.IntroTitle) })

	sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	waitFor(t, "gate to open", src.machine.Started)

	waitFor(t, "greeting", func() bool {
		out := screenText(sim)
		return strings.Contains(out, shell.DefaultText) && strings.Contains(out, "★")
	})

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after q")
	}
}

func TestTerminal_ContextCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping terminal loop test in short mode")
	}

	sim := tcell.NewSimulationScreen("UTF-8")
	src := newFakeSource()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		errc <- NewTerminal(sim, logging.Discard()).Run(ctx, src)
	}()

	waitFor(t, "first frame", func() bool { return src.Steps() > 0 })
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if src.machine.Started() {
		t.Error("gate should stay closed without input")
	}
}
