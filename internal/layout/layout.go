// Package layout generates the fixed per-session descriptors for every scene
// element: the particle tree, the photo decorations and the gift boxes.
package layout

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/noel/internal/animate"
)

// Defaults for a full-size tree.
const (
	DefaultParticleCount = 3000
	DefaultTreeHeight    = 16.0
	DefaultTreeRadius    = 6.0
	DefaultGiftCount     = 12

	// StarLift is how far the star sits above the top of the tree.
	StarLift = 1.2

	photoTreeHeight = 14.0
	photoCloud      = 9.0
	giftRadius      = 5.5
	giftFloor       = -7.5
)

// Shape selects how a particle is drawn.
type Shape int

const (
	Sphere Shape = iota
	Star
	Sparkle
)

func (s Shape) String() string {
	switch s {
	case Star:
		return "star"
	case Sparkle:
		return "sparkle"
	default:
		return "sphere"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Particle describes one tree particle. Particle 0 is always the star.
type Particle struct {
	ID        int
	Shape     Shape
	Tree      animate.Vec3
	Scattered animate.Vec3
	Intro     animate.Vec3
	Rotation  animate.Vec3
	Scale     float64
	Color     Color
	Speed     float64
}

// Photo describes one photo decoration.
type Photo struct {
	URL       string
	Index     int
	Tree      animate.Vec3
	Scattered animate.Vec3
}

// Gift describes one box under the tree.
type Gift struct {
	ID       int
	Position animate.Vec3
	Scale    float64
	RotY     float64
	Color    Color
	Ribbon   Color
}

// Config sizes the generated layout.
type Config struct {
	ParticleCount int
	TreeHeight    float64
	TreeRadius    float64
	GiftCount     int
}

// DefaultConfig returns the full-size tree.
func DefaultConfig() Config {
	return Config{
		ParticleCount: DefaultParticleCount,
		TreeHeight:    DefaultTreeHeight,
		TreeRadius:    DefaultTreeRadius,
		GiftCount:     DefaultGiftCount,
	}
}

// Layout is the complete set of descriptors for a session.
type Layout struct {
	Config    Config
	Particles []Particle
	Photos    []Photo
	Gifts     []Gift
}

// Generate builds every descriptor once. Counts depend only on cfg and photos;
// positions and attributes are drawn from rng.
func Generate(cfg Config, photos []string, rng *rand.Rand) *Layout {
	if cfg.ParticleCount < 1 {
		cfg.ParticleCount = 1
	}

	l := &Layout{
		Config:    cfg,
		Particles: make([]Particle, 0, cfg.ParticleCount),
		Photos:    make([]Photo, 0, len(photos)),
		Gifts:     make([]Gift, 0, cfg.GiftCount),
	}

	l.Particles = append(l.Particles, Particle{
		ID:    0,
		Shape: Star,
		Tree:  animate.Vec3{Y: cfg.TreeHeight/2 + StarLift},
		Scale: 0.8,
		Color: Silver,
		Speed: 0.5,
	})
	for i := 1; i < cfg.ParticleCount; i++ {
		l.Particles = append(l.Particles, dust(cfg, i, rng))
	}
	// Intro points come from a second pass so the descriptor stream above
	// is independent of them.
	for i := range l.Particles {
		if i == 0 {
			continue
		}
		l.Particles[i].Intro = animate.Vec3{
			X: between(rng, -10, 10),
			Y: between(rng, -10, 10),
			Z: between(rng, -2.5, 2.5),
		}
	}

	for i, url := range photos {
		l.Photos = append(l.Photos, photo(i, len(photos), url, rng))
	}

	for i := 0; i < cfg.GiftCount; i++ {
		l.Gifts = append(l.Gifts, gift(cfg.GiftCount, i, rng))
	}

	return l
}

func dust(cfg Config, i int, rng *rand.Rand) Particle {
	yPct := float64(i) / float64(cfg.ParticleCount)
	y := yPct*cfg.TreeHeight - cfg.TreeHeight/2 + between(rng, -0.25, 0.25)
	r := cfg.TreeRadius*(1-yPct) + rng.Float64()*0.5
	angle := float64(i)*0.3 + rng.Float64()*0.5

	p := Particle{
		ID:        i,
		Tree:      animate.Vec3{X: math.Cos(angle) * r, Y: y, Z: math.Sin(angle) * r},
		Scattered: onSphere(between(rng, 8, 16), rng),
	}

	p.Shape, p.Color = pick(rng.Float64())
	p.Scale = between(rng, 0.05, 0.17)
	p.Rotation = animate.Vec3{X: rng.Float64() * math.Pi, Y: rng.Float64() * math.Pi}
	p.Speed = between(rng, 0.2, 1.0)
	return p
}

// pick maps a uniform draw onto the particle palette.
func pick(u float64) (Shape, Color) {
	switch {
	case u > 0.95:
		return Sparkle, White
	case u > 0.70:
		return Sphere, Silver
	case u > 0.40:
		return Sphere, Blue
	case u > 0.20:
		return Sphere, DeepBlue
	default:
		return Sphere, Ice
	}
}

func photo(i, n int, url string, rng *rand.Rand) Photo {
	yPct := float64(i) / float64(n)
	r := 4.5*(1-yPct) + 1.5
	angle := float64(i) * (2 * math.Pi / 1.6)

	return Photo{
		URL:   url,
		Index: i,
		Tree: animate.Vec3{
			X: math.Cos(angle) * r,
			Y: yPct*photoTreeHeight - photoTreeHeight/2,
			Z: math.Sin(angle) * r,
		},
		Scattered: onSphere(photoCloud, rng),
	}
}

func gift(n, i int, rng *rand.Rand) Gift {
	angle := float64(i)/float64(n)*2*math.Pi + rng.Float64()*0.5
	r := giftRadius + rng.Float64()*3

	g := Gift{
		ID:       i,
		Position: animate.Vec3{X: math.Cos(angle) * r, Y: giftFloor, Z: math.Sin(angle) * r},
		Scale:    between(rng, 0.8, 1.6),
		RotY:     rng.Float64() * math.Pi,
		Color:    GiftPalette[rng.IntN(len(GiftPalette))],
	}
	g.Ribbon = RibbonFor(g.Color)
	return g
}

// onSphere returns a uniformly distributed direction scaled to radius r.
func onSphere(r float64, rng *rand.Rand) animate.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(rng.Float64()*2 - 1)
	return animate.Vec3{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
