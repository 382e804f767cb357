package shell

import (
	"math"
	"testing"

	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/mode"
)

func TestShell_IntroUntilStarted(t *testing.T) {
	s := New(mode.NewMachine(), "")

	for i := 0; i < 120; i++ {
		s.Update(1.0/60, gesture.NoHand)
	}

	v := s.View()
	if !v.Intro {
		t.Error("expected intro before start")
	}
	if v.IntroAlpha != 1 || v.MainAlpha != 0 {
		t.Errorf("alpha = %v/%v, want 1/0", v.IntroAlpha, v.MainAlpha)
	}
	if v.Greeting != DefaultText || v.Title != IntroTitle {
		t.Errorf("text = %q/%q", v.Title, v.Greeting)
	}
	if v.Status != "Show your hand to the camera" {
		t.Errorf("Status = %q", v.Status)
	}
}

func TestShell_Fade(t *testing.T) {
	m := mode.NewMachine()
	s := New(m, "SEASON'S GREETINGS")

	s.Start()
	if !m.Started() {
		t.Fatal("Start() should open the gate")
	}

	var prev float64
	for i := 0; i < 30; i++ {
		s.Update(1.0/60, gesture.NoHand)
		v := s.View()
		if v.MainAlpha < prev {
			t.Fatalf("frame %d: alpha went backwards %v -> %v", i, prev, v.MainAlpha)
		}
		if math.Abs(v.MainAlpha+v.IntroAlpha-1) > 1e-12 {
			t.Fatalf("alphas do not sum to 1: %+v", v)
		}
		prev = v.MainAlpha
	}
	if prev <= 0 || prev >= 1 {
		t.Errorf("alpha halfway through fade = %v", prev)
	}

	for i := 0; i < 60; i++ {
		s.Update(1.0/60, gesture.NoHand)
	}
	v := s.View()
	if v.Intro || v.MainAlpha != 1 {
		t.Errorf("after fade: %+v", v)
	}
	if v.Greeting != "SEASON'S GREETINGS" {
		t.Errorf("Greeting = %q", v.Greeting)
	}
}

func TestShell_StartFromElsewhere(t *testing.T) {
	m := mode.NewMachine()
	s := New(m, "")

	m.Start()
	s.Update(2, gesture.NoHand)

	if s.View().MainAlpha != 1 {
		t.Error("opening the gate through the machine should start the fade")
	}
}

func TestShell_Status(t *testing.T) {
	s := New(mode.NewMachine(), "")

	tests := []struct {
		sample gesture.Sample
		want   string
	}{
		{gesture.Sample{Gesture: gesture.Fist, Hand: true}, "Fist"},
		{gesture.Sample{Gesture: gesture.Open, Hand: true}, "Open (rotating)"},
		{gesture.Sample{Gesture: gesture.Grab, Hand: true}, "Grab"},
		{gesture.Sample{Gesture: gesture.None, Hand: true}, "Moving"},
		{gesture.NoHand, "Show your hand to the camera"},
	}

	for _, tt := range tests {
		s.Update(0, tt.sample)
		if got := s.View().Status; got != tt.want {
			t.Errorf("Status = %q, want %q", got, tt.want)
		}
	}
}
