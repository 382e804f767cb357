package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ayusman/noel/internal/app"
	"github.com/ayusman/noel/internal/config"
	"github.com/ayusman/noel/internal/logging"
	"github.com/ayusman/noel/internal/store"
)

// Runner holds the dependencies for CLI commands and provides a method for
// each command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
	// newApp builds the session; tests replace it.
	newApp func(cfg *config.Config, opts app.Options) (session, error)
}

// session is the part of app.App the run command needs.
type session interface {
	Run(ctx context.Context) error
	Close() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		logger: opts.Logger,
		output: opts.Output,
		newApp: func(cfg *config.Config, opts app.Options) (session, error) {
			return app.New(cfg, opts)
		},
	}
}

// defaultConfigPath is ~/.noel/config.toml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".noel", "config.toml")
}

// loadConfig reads --config (or ~/.noel/config.toml when present) and
// applies flag overrides.
func (r *Runner) loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		if p := defaultConfigPath(); fileExists(p) {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("camera") {
		cfg.Camera.Device = int(cmd.Int("camera"))
	}
	if cmd.Bool("no-camera") {
		cfg.Camera.Enabled = false
	}
	if cmd.IsSet("renderer") {
		cfg.Render.Backend = cmd.String("renderer")
	}
	if cmd.IsSet("particles") {
		cfg.Scene.Particles = int(cmd.Int("particles"))
	}
	if cmd.IsSet("seed") {
		cfg.Scene.Seed = uint64(cmd.Int("seed"))
	}
	if cmd.IsSet("addr") {
		cfg.Server.Addr = cmd.String("addr")
	}
	if cmd.Bool("no-server") {
		cfg.Server.Enabled = false
	}
	if cmd.IsSet("db") {
		cfg.Store.Path = cmd.String("db")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("tray") {
		cfg.Tray.Enabled = cmd.Bool("tray")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// openStore opens the catalog database named by the configuration.
func (r *Runner) openStore(cmd *cli.Command) (*store.Store, error) {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	return store.New(path)
}

// Run starts the visualization. It returns when the window closes or the
// process is interrupted.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	r.logger = logger

	a, err := r.newApp(cfg, app.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "renderer", cfg.Render.Backend, "camera", cfg.Camera.Enabled, "server", cfg.Server.Enabled)
	return a.Run(ctx)
}

// PhotosList prints the photo catalog in display order.
func (r *Runner) PhotosList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	photos, err := s.Photos().List()
	if err != nil {
		return fmt.Errorf("list photos: %w", err)
	}
	for _, p := range photos {
		r.writePlain("%d\t%s\t%s\n", p.Position, p.ID, p.URL)
	}
	return nil
}

// PhotosAdd appends each argument to the catalog.
func (r *Runner) PhotosAdd(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("at least one photo URL or path is required")
	}

	s, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, u := range urls {
		p := &store.Photo{URL: u}
		if err := s.Photos().Create(p); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				r.writePlain("skipped %s: already in catalog\n", u)
				continue
			}
			return fmt.Errorf("add %s: %w", u, err)
		}
		r.writePlain("added %s as %s\n", u, p.ID)
	}
	return nil
}

// PhotosRemove deletes photos by ID or URL.
func (r *Runner) PhotosRemove(ctx context.Context, cmd *cli.Command) error {
	refs := cmd.Args().Slice()
	if len(refs) == 0 {
		return fmt.Errorf("at least one photo ID or URL is required")
	}

	s, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, ref := range refs {
		id := ref
		if p, err := s.Photos().GetByURL(ref); err == nil {
			id = p.ID
		}
		if err := s.Photos().Delete(id); err != nil {
			return fmt.Errorf("remove %s: %w", ref, err)
		}
		r.writePlain("removed %s\n", ref)
	}
	return nil
}

// ConfigInit writes the default configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = defaultConfigPath()
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	r.writePlain("wrote %s\n", path)
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
