package layout

import (
	"math"
	"math/rand/v2"
	"testing"
)

var testURLs = []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(2024, 12))
}

func TestGenerate_Counts(t *testing.T) {
	tests := []struct {
		name      string
		particles int
		photos    []string
	}{
		{"full tree", DefaultParticleCount, testURLs},
		{"small tree", 50, testURLs[:1]},
		{"no photos", 10, nil},
		{"star only", 1, testURLs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ParticleCount = tt.particles

			l := Generate(cfg, tt.photos, newRand())

			if len(l.Particles) != tt.particles {
				t.Errorf("particles = %d, want %d", len(l.Particles), tt.particles)
			}
			if len(l.Photos) != len(tt.photos) {
				t.Errorf("photos = %d, want %d", len(l.Photos), len(tt.photos))
			}
			if len(l.Gifts) != DefaultGiftCount {
				t.Errorf("gifts = %d, want %d", len(l.Gifts), DefaultGiftCount)
			}

			stars := 0
			for i, p := range l.Particles {
				if p.ID != i {
					t.Errorf("particle %d has id %d", i, p.ID)
				}
				if p.Shape == Star {
					stars++
				}
			}
			if stars != 1 {
				t.Errorf("stars = %d, want 1", stars)
			}
		})
	}
}

func TestGenerate_Star(t *testing.T) {
	l := Generate(DefaultConfig(), testURLs, newRand())
	star := l.Particles[0]

	if star.Shape != Star {
		t.Fatalf("particle 0 shape = %v, want star", star.Shape)
	}
	if star.Tree.X != 0 || star.Tree.Z != 0 || math.Abs(star.Tree.Y-9.2) > 1e-9 {
		t.Errorf("star tree position = %+v, want (0, 9.2, 0)", star.Tree)
	}
	if star.Scattered.Len() != 0 || star.Intro.Len() != 0 {
		t.Error("star should rest at the origin outside the tree")
	}
	if star.Scale != 0.8 || star.Color != Silver || star.Speed != 0.5 {
		t.Errorf("star = %+v", star)
	}
}

func TestGenerate_DustDistribution(t *testing.T) {
	cfg := DefaultConfig()
	l := Generate(cfg, nil, newRand())

	var sparkles int
	for _, p := range l.Particles[1:] {
		yPct := float64(p.ID) / float64(cfg.ParticleCount)

		wantY := yPct*cfg.TreeHeight - cfg.TreeHeight/2
		if math.Abs(p.Tree.Y-wantY) > 0.25 {
			t.Fatalf("particle %d y = %v, want within 0.25 of %v", p.ID, p.Tree.Y, wantY)
		}

		r := math.Hypot(p.Tree.X, p.Tree.Z)
		base := cfg.TreeRadius * (1 - yPct)
		if r < base-1e-9 || r > base+0.5 {
			t.Fatalf("particle %d radius = %v, want in [%v, %v]", p.ID, r, base, base+0.5)
		}

		if d := p.Scattered.Len(); d < 8-1e-9 || d > 16 {
			t.Fatalf("particle %d scattered distance = %v, want in [8, 16]", p.ID, d)
		}

		if math.Abs(p.Intro.X) > 10 || math.Abs(p.Intro.Y) > 10 || math.Abs(p.Intro.Z) > 2.5 {
			t.Fatalf("particle %d intro point %+v outside box", p.ID, p.Intro)
		}

		if p.Scale < 0.05 || p.Scale > 0.17 {
			t.Fatalf("particle %d scale = %v", p.ID, p.Scale)
		}
		if p.Speed < 0.2 || p.Speed > 1.0 {
			t.Fatalf("particle %d speed = %v", p.ID, p.Speed)
		}
		if p.Rotation.Z != 0 || p.Rotation.X > math.Pi || p.Rotation.Y > math.Pi {
			t.Fatalf("particle %d rotation = %+v", p.ID, p.Rotation)
		}

		if p.Shape == Sparkle {
			sparkles++
			if p.Color != White {
				t.Fatalf("sparkle %d color = %s, want white", p.ID, p.Color.Hex())
			}
		}
	}

	// About 5% of dust sparkles.
	if frac := float64(sparkles) / float64(cfg.ParticleCount-1); frac < 0.02 || frac > 0.08 {
		t.Errorf("sparkle fraction = %v, want about 0.05", frac)
	}
}

func TestPick(t *testing.T) {
	tests := []struct {
		u     float64
		shape Shape
		color Color
	}{
		{0.99, Sparkle, White},
		{0.96, Sparkle, White},
		{0.95, Sphere, Silver},
		{0.71, Sphere, Silver},
		{0.70, Sphere, Blue},
		{0.41, Sphere, Blue},
		{0.40, Sphere, DeepBlue},
		{0.21, Sphere, DeepBlue},
		{0.20, Sphere, Ice},
		{0.0, Sphere, Ice},
	}

	for _, tt := range tests {
		shape, color := pick(tt.u)
		if shape != tt.shape || color != tt.color {
			t.Errorf("pick(%v) = %v %s, want %v %s", tt.u, shape, color.Hex(), tt.shape, tt.color.Hex())
		}
	}
}

func TestGenerate_Photos(t *testing.T) {
	l := Generate(DefaultConfig(), testURLs, newRand())

	for i, p := range l.Photos {
		if p.Index != i || p.URL != testURLs[i] {
			t.Errorf("photo %d = %+v", i, p)
		}

		yPct := float64(i) / float64(len(testURLs))
		if want := yPct*14 - 7; math.Abs(p.Tree.Y-want) > 1e-9 {
			t.Errorf("photo %d tree y = %v, want %v", i, p.Tree.Y, want)
		}
		if want := 4.5*(1-yPct) + 1.5; math.Abs(math.Hypot(p.Tree.X, p.Tree.Z)-want) > 1e-9 {
			t.Errorf("photo %d tree radius wrong", i)
		}
		if math.Abs(p.Scattered.Len()-9) > 1e-9 {
			t.Errorf("photo %d scattered distance = %v, want 9", i, p.Scattered.Len())
		}
	}
}

func TestGenerate_Gifts(t *testing.T) {
	l := Generate(DefaultConfig(), nil, newRand())

	for _, g := range l.Gifts {
		if g.Position.Y != -7.5 {
			t.Errorf("gift %d y = %v, want -7.5", g.ID, g.Position.Y)
		}
		if r := math.Hypot(g.Position.X, g.Position.Z); r < 5.5-1e-9 || r > 8.5 {
			t.Errorf("gift %d radius = %v", g.ID, r)
		}
		if g.Scale < 0.8 || g.Scale > 1.6 {
			t.Errorf("gift %d scale = %v", g.ID, g.Scale)
		}
		if g.Ribbon == g.Color {
			t.Errorf("gift %d ribbon matches box %s", g.ID, g.Color.Hex())
		}
		if g.Ribbon != RibbonFor(g.Color) {
			t.Errorf("gift %d ribbon = %s", g.ID, g.Ribbon.Hex())
		}
	}
}

func TestRibbonFor(t *testing.T) {
	if RibbonFor(GiftSilver) != Navy {
		t.Error("silver boxes get a navy ribbon")
	}
	for _, c := range []Color{Navy, Royal, White, SkyBlue} {
		if RibbonFor(c) != GiftSilver {
			t.Errorf("RibbonFor(%s) = %s, want silver", c.Hex(), RibbonFor(c).Hex())
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(DefaultConfig(), testURLs, newRand())
	b := Generate(DefaultConfig(), testURLs, newRand())

	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			t.Fatalf("particle %d differs between runs with the same seed", i)
		}
	}
}

func TestColor_Hex(t *testing.T) {
	if got := Blue.Hex(); got != "#1E90FF" {
		t.Errorf("Hex() = %s", got)
	}
	data, _ := Navy.MarshalText()
	if string(data) != "#191970" {
		t.Errorf("MarshalText() = %s", data)
	}
}
