package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ayusman/noel/internal/animate"
	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/shell"
)

const backdropStars = 400

var (
	gold      = color.RGBA{0xD4, 0xAF, 0x37, 0xFF}
	paleGold  = color.RGBA{0xFF, 0xF5, 0xC3, 0xFF}
	statusBox = color.RGBA{0x00, 0x00, 0x00, 0x66}
)

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// Window renders into an Ebitengine window.
type Window struct {
	cfg      WindowConfig
	cam      Camera
	logger   *log.Logger
	textures <-chan Texture

	titleFace  *text.GoTextFace
	bannerFace *text.GoTextFace
	bodyFace   *text.GoTextFace
}

// NewWindow creates a window backend. Photo textures arrive on textures as
// they load; a nil channel draws no photos.
func NewWindow(cfg WindowConfig, textures <-chan Texture, logger *log.Logger) (*Window, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 960, 720
	}
	if cfg.Title == "" {
		cfg.Title = "noel"
	}

	return &Window{
		cfg:        cfg,
		cam:        DefaultCamera(),
		logger:     logger,
		textures:   textures,
		titleFace:  &text.GoTextFace{Source: src, Size: 72},
		bannerFace: &text.GoTextFace{Source: src, Size: 40},
		bodyFace:   &text.GoTextFace{Source: src, Size: 20},
	}, nil
}

// Run opens the window and blocks until it closes or ctx is cancelled.
func (w *Window) Run(ctx context.Context, src Source) error {
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newGame(ctx, w, src)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// game implements ebiten.Game.
type game struct {
	ctx      context.Context
	win      *Window
	src      Source
	clock    *clock
	textures <-chan Texture
	photos   map[int]*ebiten.Image
	white    *ebiten.Image
	backdrop []animate.Vec3
	frame    Frame
}

func newGame(ctx context.Context, w *Window, src Source) *game {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	rng := rand.New(rand.NewPCG(12, 25))
	backdrop := make([]animate.Vec3, backdropStars)
	for i := range backdrop {
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(rng.Float64()*2 - 1)
		r := 100 + rng.Float64()*50
		backdrop[i] = animate.Vec3{
			X: r * math.Sin(phi) * math.Cos(theta),
			Y: r * math.Sin(phi) * math.Sin(theta),
			Z: -math.Abs(r * math.Cos(phi)),
		}
	}

	return &game{
		ctx:      ctx,
		win:      w,
		src:      src,
		clock:    newClock(),
		textures: w.textures,
		photos:   make(map[int]*ebiten.Image),
		white:    white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		backdrop: backdrop,
	}
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	g.uploadTextures()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.src.Start()
	}

	g.frame = g.src.Step(g.clock.tick())
	return nil
}

// uploadTextures moves decoded photos onto the GPU without blocking.
func (g *game) uploadTextures() {
	for g.textures != nil {
		select {
		case tex, ok := <-g.textures:
			if !ok {
				g.textures = nil
				return
			}
			g.photos[tex.Index] = ebiten.NewImageFromImage(tex.Image)
			g.src.AttachPhoto(tex.Index)
			g.win.logger.Debug("photo attached", "index", tex.Index)
		default:
			return
		}
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{Background[0], Background[1], Background[2], 0xFF})

	b := screen.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	cam := g.win.cam

	for _, s := range g.backdrop {
		if p, ok := cam.Project(s, w, h); ok {
			vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), 1, 1, color.Gray{0x90}, false)
		}
	}

	snap := &g.frame.Scene
	for _, it := range drawList(snap, cam, w, h) {
		switch it.kind {
		case itemParticle:
			g.drawParticle(screen, snap, &snap.Particles[it.index], it.at, w, h)
		case itemGift:
			g.drawGift(screen, snap, &snap.Gifts[it.index], w, h)
		case itemPhoto:
			g.drawPhoto(screen, snap, &snap.Photos[it.index], w, h)
		}
	}

	g.drawHUD(screen, g.frame.HUD, w, h)
}

func (g *game) drawParticle(screen *ebiten.Image, snap *scene.Snapshot, p *scene.ParticleView, at Point, w, h float64) {
	cam := g.win.cam

	switch p.Shape {
	case layout.Star:
		pts, ok := projectShape(cam, snap.Group, p.Transform, starOutline(), w, h)
		if ok {
			g.fillFan(screen, at, pts, p.Color, 1)
		}
	case layout.Sparkle:
		diamond := []animate.Vec3{{Y: 1}, {X: 1}, {Y: -1}, {X: -1}}
		pts, ok := projectShape(cam, snap.Group, p.Transform, diamond, w, h)
		if ok {
			g.fillFan(screen, at, pts, p.Color, 1)
		}
	default:
		r := p.Transform.Scale.X * groupScale(snap.Group) * at.Scale
		if r < 0.6 {
			r = 0.6
		}
		vector.DrawFilledCircle(screen, float32(at.X), float32(at.Y), float32(r), p.Color, true)
	}
}

func (g *game) drawGift(screen *ebiten.Image, snap *scene.Snapshot, gift *scene.GiftView, w, h float64) {
	cam := g.win.cam
	faces := []struct {
		corners []animate.Vec3
		ribbon  []animate.Vec3
		shade   float64
	}{
		{
			corners: []animate.Vec3{{X: -0.5, Y: 1, Z: -0.5}, {X: 0.5, Y: 1, Z: -0.5}, {X: 0.5, Y: 1, Z: 0.5}, {X: -0.5, Y: 1, Z: 0.5}},
			ribbon:  []animate.Vec3{{X: -0.1, Y: 1, Z: -0.5}, {X: 0.1, Y: 1, Z: -0.5}, {X: 0.1, Y: 1, Z: 0.5}, {X: -0.1, Y: 1, Z: 0.5}},
			shade:   1,
		},
		{
			corners: []animate.Vec3{{X: -0.5, Y: 1, Z: 0.5}, {X: 0.5, Y: 1, Z: 0.5}, {X: 0.5, Y: 0, Z: 0.5}, {X: -0.5, Y: 0, Z: 0.5}},
			ribbon:  []animate.Vec3{{X: -0.1, Y: 1, Z: 0.5}, {X: 0.1, Y: 1, Z: 0.5}, {X: 0.1, Y: 0, Z: 0.5}, {X: -0.1, Y: 0, Z: 0.5}},
			shade:   0.75,
		},
	}

	for _, f := range faces {
		box, ok := projectShape(cam, snap.Group, gift.Transform, f.corners, w, h)
		if !ok {
			return
		}
		g.fillFan(screen, centroid(box), box, gift.Color, f.shade)

		band, ok := projectShape(cam, snap.Group, gift.Transform, f.ribbon, w, h)
		if ok {
			g.fillFan(screen, centroid(band), band, gift.Ribbon, f.shade)
		}
	}
}

func (g *game) drawPhoto(screen *ebiten.Image, snap *scene.Snapshot, p *scene.PhotoView, w, h float64) {
	img, ok := g.photos[p.Index]
	if !ok {
		return
	}
	q := quad()
	corners, ok := projectShape(g.win.cam, snap.Group, p.Transform, q[:], w, h)
	if !ok {
		return
	}

	b := img.Bounds()
	src := [4][2]float32{
		{float32(b.Min.X), float32(b.Min.Y)},
		{float32(b.Max.X), float32(b.Min.Y)},
		{float32(b.Min.X), float32(b.Max.Y)},
		{float32(b.Max.X), float32(b.Max.Y)},
	}

	verts := make([]ebiten.Vertex, 4)
	for i, c := range corners {
		verts[i] = ebiten.Vertex{
			DstX:   float32(c.X),
			DstY:   float32(c.Y),
			SrcX:   src[i][0],
			SrcY:   src[i][1],
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		}
	}

	var op ebiten.DrawTrianglesOptions
	op.Filter = ebiten.FilterLinear
	screen.DrawTriangles32(verts, []uint32{0, 1, 2, 1, 3, 2}, img, &op)
}

// fillFan fills a convex or star-shaped polygon as a triangle fan around
// center.
func (g *game) fillFan(screen *ebiten.Image, center Point, pts []Point, c layout.Color, shade float64) {
	r := float32(float64(c.R) / 255 * shade)
	gr := float32(float64(c.G) / 255 * shade)
	b := float32(float64(c.B) / 255 * shade)

	verts := make([]ebiten.Vertex, 0, len(pts)+1)
	vertex := func(p Point) ebiten.Vertex {
		return ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1.5,
			SrcY:   1.5,
			ColorR: r,
			ColorG: gr,
			ColorB: b,
			ColorA: 1,
		}
	}
	verts = append(verts, vertex(center))
	for _, p := range pts {
		verts = append(verts, vertex(p))
	}

	n := uint32(len(pts))
	inds := make([]uint32, 0, 3*n)
	for i := uint32(0); i < n; i++ {
		inds = append(inds, 0, 1+i, 1+(i+1)%n)
	}

	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	screen.DrawTriangles32(verts, inds, g.white, &op)
}

func centroid(pts []Point) Point {
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	c.X /= n
	c.Y /= n
	return c
}

func (g *game) drawHUD(screen *ebiten.Image, v shell.View, w, h float64) {
	if v.MainAlpha > 0 {
		g.drawText(screen, v.Greeting, g.win.bannerFace, w/2, 56, paleGold, v.MainAlpha)

		bw, bh := 280.0, 48.0
		bx, by := 32.0, h-32-bh
		vector.DrawFilledRect(screen, float32(bx), float32(by), float32(bw), float32(bh), scaleAlpha(statusBox, v.MainAlpha), false)
		vector.StrokeRect(screen, float32(bx), float32(by), float32(bw), float32(bh), 1, scaleAlpha(gold, v.MainAlpha*0.5), false)
		g.drawText(screen, v.Status, g.win.bodyFace, bx+bw/2, by+12, paleGold, v.MainAlpha)
	}

	if v.IntroAlpha > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), color.RGBA{A: uint8(255 * v.IntroAlpha)}, false)
		g.drawText(screen, v.Title, g.win.titleFace, w/2, h/2-90, gold, v.IntroAlpha)
		g.drawText(screen, v.Prompt, g.win.bodyFace, w/2, h/2+40, paleGold, v.IntroAlpha*0.7)
	}
}

func (g *game) drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c color.Color, alpha float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.PrimaryAlign = text.AlignCenter
	text.Draw(screen, s, face, op)
}

func scaleAlpha(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}
