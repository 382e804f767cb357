package render

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/shell"
)

// terminalTick is the terminal frame interval, about 30 FPS.
const terminalTick = 33 * time.Millisecond

// Terminal renders into a character grid. Each cell is treated as two
// vertical pixels so the tree keeps its proportions.
type Terminal struct {
	screen tcell.Screen
	cam    Camera
	logger *log.Logger
}

// NewTerminal creates a terminal backend. A nil screen opens the
// controlling terminal when Run starts.
func NewTerminal(screen tcell.Screen, logger *log.Logger) *Terminal {
	return &Terminal{
		screen: screen,
		cam:    DefaultCamera(),
		logger: logger,
	}
}

// Run draws until ctx is cancelled or the user presses Esc, q or Ctrl-C.
// Any other key or a click opens the intro gate.
func (t *Terminal) Run(ctx context.Context, src Source) error {
	screen := t.screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoDisplay, err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(terminalTick)
	defer ticker.Stop()

	clk := newClock()
	attached := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !t.handleEvent(screen, ev, src) {
				return nil
			}

		case <-ticker.C:
			frame := src.Step(clk.tick())
			if !attached {
				// Photos need no texture here.
				for i := range frame.Scene.Photos {
					src.AttachPhoto(i)
				}
				attached = true
			}
			t.draw(screen, frame)
			screen.Show()
		}
	}
}

// handleEvent returns false when the user asked to quit.
func (t *Terminal) handleEvent(screen tcell.Screen, ev tcell.Event, src Source) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		src.Start()
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			src.Start()
		}
	case *tcell.EventResize:
		screen.Sync()
	}
	return true
}

func rgb(c layout.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (t *Terminal) draw(screen tcell.Screen, frame Frame) {
	cols, rows := screen.Size()
	bg := tcell.NewRGBColor(int32(Background[0]), int32(Background[1]), int32(Background[2]))
	base := tcell.StyleDefault.Background(bg)
	screen.Fill(' ', base)

	w, h := float64(cols), float64(rows*2)
	snap := &frame.Scene

	for _, it := range drawList(snap, t.cam, w, h) {
		x, y := int(it.at.X), int(it.at.Y/2)
		if x < 0 || y < 0 || x >= cols || y >= rows {
			continue
		}

		switch it.kind {
		case itemParticle:
			p := &snap.Particles[it.index]
			screen.SetContent(x, y, particleRune(p, it.at.Scale*groupScale(snap.Group)), nil, base.Foreground(rgb(p.Color)))
		case itemGift:
			g := &snap.Gifts[it.index]
			screen.SetContent(x, y, '■', nil, base.Foreground(rgb(g.Color)))
		case itemPhoto:
			t.drawPhoto(screen, snap, &snap.Photos[it.index], base, w, h, cols, rows)
		}
	}

	t.drawHUD(screen, frame.HUD, base, cols, rows)
}

func particleRune(p *scene.ParticleView, pixelsPerUnit float64) rune {
	switch p.Shape {
	case layout.Star:
		return '★'
	case layout.Sparkle:
		return '✦'
	}
	if p.Transform.Scale.X*pixelsPerUnit >= 0.5 {
		return '●'
	}
	return '·'
}

func (t *Terminal) drawPhoto(screen tcell.Screen, snap *scene.Snapshot, p *scene.PhotoView, base tcell.Style, w, h float64, cols, rows int) {
	q := quad()
	corners, ok := projectShape(t.cam, snap.Group, p.Transform, q[:], w, h)
	if !ok {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y/2), math.Max(maxY, c.Y/2)
	}

	style := base.Foreground(tcell.NewRGBColor(0xF0, 0xFF, 0xFF))
	if p.Active {
		style = style.Bold(true)
	}
	for y := max(0, int(minY)); y <= min(rows-1, int(maxY)); y++ {
		for x := max(0, int(minX)); x <= min(cols-1, int(maxX)); x++ {
			screen.SetContent(x, y, '▒', nil, style)
		}
	}
}

func (t *Terminal) drawHUD(screen tcell.Screen, v shell.View, base tcell.Style, cols, rows int) {
	gold := base.Foreground(tcell.NewRGBColor(0xD4, 0xAF, 0x37)).Bold(true)
	pale := base.Foreground(tcell.NewRGBColor(0xFF, 0xF5, 0xC3))

	if v.Intro {
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(tcell.ColorBlack))
			}
		}
		center(screen, v.Title, rows/2-1, cols, gold.Background(tcell.ColorBlack))
		center(screen, v.Prompt, rows/2+1, cols, pale.Background(tcell.ColorBlack))
		return
	}

	center(screen, v.Greeting, 1, cols, gold)
	puts(screen, 2, rows-2, "[ "+v.Status+" ]", pale)
}

func center(screen tcell.Screen, s string, y, cols int, style tcell.Style) {
	puts(screen, (cols-len([]rune(s)))/2, y, s, style)
}

func puts(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
