// Package app wires the detection loop, the animated scene and the outer
// surfaces into one session.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/noel/internal/capture"
	"github.com/ayusman/noel/internal/config"
	"github.com/ayusman/noel/internal/detector"
	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/layout"
	"github.com/ayusman/noel/internal/logging"
	"github.com/ayusman/noel/internal/mode"
	"github.com/ayusman/noel/internal/render"
	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/server"
	"github.com/ayusman/noel/internal/shell"
	"github.com/ayusman/noel/internal/store"
	"github.com/ayusman/noel/internal/tray"
)

// PhotoTimeout bounds a single photo download.
const PhotoTimeout = 15 * time.Second

// Options overrides the collaborators App.New would otherwise build from
// the configuration.
type Options struct {
	Logger      *log.Logger
	Store       *store.Store
	Camera      capture.Camera
	NewDetector DetectorFactory
	Renderer    render.Renderer
	Rand        *rand.Rand
}

// App is one running session.
type App struct {
	cfg       *config.Config
	logger    *log.Logger
	store     *store.Store
	ownsStore bool

	slot    *gesture.Slot
	machine *mode.Machine
	scene   *scene.Scene
	shell   *shell.Shell

	adapter  *Adapter
	server   *server.Server
	tray     *tray.Tray
	renderer render.Renderer
}

// New builds a session from cfg. The layout is generated here, once.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		store:    opts.Store,
		slot:     gesture.NewSlot(),
		machine:  mode.NewMachine(),
		renderer: opts.Renderer,
	}

	if a.store == nil {
		path, err := cfg.StorePath()
		if err != nil {
			return nil, err
		}
		s, err := store.New(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = s
		a.ownsStore = true
	}

	urls, err := a.store.Photos().URLs()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load photo catalog: %w", err)
	}

	rng := opts.Rand
	if rng == nil {
		seed := cfg.Scene.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	l := layout.Generate(layout.Config{
		ParticleCount: cfg.Scene.Particles,
		TreeHeight:    cfg.Scene.TreeHeight,
		TreeRadius:    cfg.Scene.TreeRadius,
		GiftCount:     cfg.Scene.Gifts,
	}, urls, rng)
	a.scene = scene.New(l)
	a.shell = shell.New(a.machine, a.greeting())

	modeLog := logging.Component(logger, "mode")
	a.machine.OnTransition(a.scene.OnTransition)
	a.machine.OnTransition(func(from, to mode.Mode) {
		modeLog.Info("mode changed", "from", from, "to", to)
	})
	a.machine.OnStart(func() {
		modeLog.Info("intro dismissed")
	})

	if cfg.Camera.Enabled {
		cam := opts.Camera
		if cam == nil {
			cam = capture.NewCamera(capture.Config{
				DeviceID: cfg.Camera.Device,
				Width:    cfg.Camera.Width,
				Height:   cfg.Camera.Height,
				FPS:      cfg.Camera.FPS,
			})
		}
		newDetector := opts.NewDetector
		if newDetector == nil {
			newDetector = mediaPipeFactory(cfg.Detector)
		}
		a.adapter = NewAdapter(AdapterConfig{
			Camera:      cam,
			NewDetector: newDetector,
			Slot:        a.slot,
			Logger:      logging.Component(logger, "detect"),
			Preview:     cfg.Server.Enabled,
		})
	}

	if cfg.Server.Enabled {
		srvCfg := server.Config{
			Store:      a.store,
			Controller: a,
			Logger:     logging.Component(logger, "http"),
		}
		if a.adapter != nil {
			srvCfg.Preview = a.adapter
		}
		a.server = server.New(srvCfg)
	}

	if cfg.Tray.Enabled {
		a.tray = tray.New()
	}

	logger.Info("scene generated",
		"particles", len(l.Particles), "photos", len(l.Photos), "gifts", len(l.Gifts))
	return a, nil
}

func mediaPipeFactory(cfg config.DetectorConfig) DetectorFactory {
	return func() (detector.Detector, error) {
		return detector.NewMediaPipeDetector(detector.Config{
			MaxHands:        cfg.MaxHands,
			MinConfidence:   cfg.MinConfidence,
			MinTrackingConf: cfg.MinTrackingConfidence,
			ScriptPath:      cfg.Script,
			PythonPath:      cfg.Python,
		})
	}
}

// greeting prefers the stored setting over the configured text.
func (a *App) greeting() string {
	v, err := a.store.Settings().Get(store.SettingGreeting)
	if err == nil && v != "" {
		return v
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.logger.Warn("read greeting setting", "err", err)
	}
	return a.cfg.Scene.Greeting
}

// Run drives the session until ctx is cancelled or the renderer exits.
// The renderer runs on the calling goroutine.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if a.adapter != nil {
		g.Go(func() error {
			return a.adapter.Run(gctx)
		})
	}

	if a.server != nil {
		g.Go(func() error {
			if err := a.server.Run(gctx, a.cfg.Server.Addr); err != nil {
				a.logger.Error("http server stopped", "err", err)
			}
			return nil
		})
	}

	if a.tray != nil {
		a.tray.OnStart(a.Start)
		a.tray.OnQuit(cancel)
		a.tray.Register()
		g.Go(func() error {
			a.tray.Watch(gctx, tray.RefreshInterval, a.slot.Updated(), a.trayStatus)
			return nil
		})
	}

	renderer, err := a.newRenderer(gctx)
	if err == nil {
		err = renderer.Run(gctx, a)
	}
	cancel()

	if a.tray != nil {
		a.tray.Close()
	}
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

func (a *App) newRenderer(ctx context.Context) (render.Renderer, error) {
	if a.renderer != nil {
		return a.renderer, nil
	}

	photos := len(a.scene.Layout().Photos)
	renderLog := logging.Component(a.logger, "render")

	switch a.cfg.Render.Backend {
	case config.BackendWindow:
		urls := make([]string, photos)
		for i, p := range a.scene.Layout().Photos {
			urls[i] = p.URL
		}
		client := &http.Client{Timeout: PhotoTimeout}
		textures := render.LoadPhotos(ctx, client, urls, renderLog)
		return render.NewWindow(render.WindowConfig{
			Width:  a.cfg.Render.Width,
			Height: a.cfg.Render.Height,
			Title:  a.cfg.Render.Title,
		}, textures, renderLog)
	case config.BackendTerminal:
		return render.NewTerminal(nil, renderLog), nil
	default:
		return &render.Headless{Photos: photos}, nil
	}
}

// Step advances the session by dt seconds. It runs on the render loop.
func (a *App) Step(dt float64) render.Frame {
	sample, _ := a.slot.Latest()
	a.machine.Apply(sample.Gesture)

	a.scene.Update(dt, scene.Input{
		Mode:  a.machine.Current(),
		Intro: !a.machine.Started(),
		Palm:  sample.Palm,
	})
	a.shell.Update(dt, sample)

	return render.Frame{
		Scene: a.scene.Snapshot(),
		HUD:   a.shell.View(),
	}
}

// Start opens the intro gate.
func (a *App) Start() {
	a.shell.Start()
	if a.tray != nil {
		a.tray.SetStarted()
	}
}

// AttachPhoto marks photo i as drawable.
func (a *App) AttachPhoto(i int) {
	a.scene.AttachPhoto(i)
}

// Status implements server.Controller.
func (a *App) Status() server.Status {
	sample, version := a.slot.Latest()
	return server.Status{
		Started:     a.machine.Started(),
		Mode:        a.machine.Current(),
		Gesture:     sample.Gesture,
		Hand:        sample.Hand,
		Palm:        sample.Palm,
		ActivePhoto: a.scene.ActivePhoto(),
		Samples:     version,
	}
}

// Summary implements server.Controller.
func (a *App) Summary() scene.Summary {
	return a.scene.Summary()
}

func (a *App) trayStatus() (string, string) {
	sample, version := a.slot.Latest()
	name := sample.Gesture.String()
	switch {
	case version == 0:
		name = "no input"
	case !sample.Hand:
		name = "no hand"
	}
	return name, a.machine.Current().String()
}

// Slot returns the gesture mailbox between the detection and render loops.
func (a *App) Slot() *gesture.Slot {
	return a.slot
}

// Machine returns the mode state machine.
func (a *App) Machine() *mode.Machine {
	return a.machine
}

// Scene returns the animated scene.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Server returns the HTTP server, or nil when disabled.
func (a *App) Server() *server.Server {
	return a.server
}

// Close releases the store when App opened it.
func (a *App) Close() error {
	if a.ownsStore && a.store != nil {
		return a.store.Close()
	}
	return nil
}
