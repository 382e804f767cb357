// Package shell holds the on-screen text and the intro overlay state that
// every renderer draws on top of the scene.
package shell

import (
	"sync"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/mode"
)

// FadeDuration is how long the intro overlay takes to fade out, in seconds.
const FadeDuration = 1.0

// Fixed overlay text.
const (
	IntroTitle  = "STAR"
	IntroPrompt = "Click to enter"
	DefaultText = "MERRY CHRISTMAS"
)

// View is the overlay state for one frame.
type View struct {
	// Intro is true until the gate opens.
	Intro bool
	// IntroAlpha fades the intro overlay out; MainAlpha fades the greeting
	// and status in. They always sum to 1.
	IntroAlpha float64
	MainAlpha  float64

	Title    string
	Prompt   string
	Greeting string
	Status   string
	Mode     mode.Mode
}

// Shell tracks the intro gate and status text.
type Shell struct {
	mu       sync.Mutex
	machine  *mode.Machine
	greeting string
	fade     *gween.Tween
	alpha    float64
	status   string
}

// New creates a shell around machine. Opening the gate by any path starts
// the fade.
func New(machine *mode.Machine, greeting string) *Shell {
	if greeting == "" {
		greeting = DefaultText
	}
	s := &Shell{
		machine:  machine,
		greeting: greeting,
		status:   gesture.NoHand.StatusText(),
	}
	machine.OnStart(s.beginFade)
	if machine.Started() {
		s.beginFade()
	}
	return s
}

// Start opens the intro gate. It is the click handler for every renderer.
func (s *Shell) Start() {
	s.machine.Start()
}

func (s *Shell) beginFade() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fade == nil {
		s.fade = gween.New(0, 1, FadeDuration, ease.OutQuad)
	}
}

// Update advances the fade by dt seconds and records the latest sample.
func (s *Shell) Update(dt float64, sample gesture.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = sample.StatusText()
	if s.fade != nil && s.alpha < 1 {
		val, finished := s.fade.Update(float32(dt))
		s.alpha = float64(val)
		if finished {
			s.alpha = 1
		}
	}
}

// View returns the overlay state.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		Intro:      !s.machine.Started(),
		IntroAlpha: 1 - s.alpha,
		MainAlpha:  s.alpha,
		Title:      IntroTitle,
		Prompt:     IntroPrompt,
		Greeting:   s.greeting,
		Status:     s.status,
		Mode:       s.machine.Current(),
	}
}
