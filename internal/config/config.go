// Package config loads the TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed config.toml
var defaultConf []byte

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Render backends.
const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"
	BackendNone     = "none"
)

// Config is the complete application configuration.
type Config struct {
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Scene    SceneConfig    `toml:"scene"`
	Render   RenderConfig   `toml:"render"`
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Tray     TrayConfig     `toml:"tray"`
	Log      LogConfig      `toml:"log"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	Enabled bool `toml:"enabled"`
	Device  int  `toml:"device"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
	FPS     int  `toml:"fps"`
}

// DetectorConfig configures the hand landmark service.
type DetectorConfig struct {
	Script                string  `toml:"script"`
	Python                string  `toml:"python"`
	MaxHands              int     `toml:"max_hands"`
	MinConfidence         float64 `toml:"min_confidence"`
	MinTrackingConfidence float64 `toml:"min_tracking_confidence"`
}

// SceneConfig sizes the generated tree.
type SceneConfig struct {
	Particles  int     `toml:"particles"`
	TreeHeight float64 `toml:"tree_height"`
	TreeRadius float64 `toml:"tree_radius"`
	Gifts      int     `toml:"gifts"`
	Seed       uint64  `toml:"seed"`
	Greeting   string  `toml:"greeting"`
}

// RenderConfig picks the output backend.
type RenderConfig struct {
	Backend string `toml:"backend"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Title   string `toml:"title"`
}

// ServerConfig controls the local HTTP API.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// TrayConfig toggles the system tray icon.
type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the embedded defaults.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(defaultConf, &cfg); err != nil {
		panic(fmt.Sprintf("parse embedded default config: %v", err))
	}
	return &cfg
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Render.Backend {
	case BackendWindow, BackendTerminal, BackendNone:
	default:
		return fmt.Errorf("%w: unknown render backend %q", ErrInvalidConfig, c.Render.Backend)
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"scene.particles", c.Scene.Particles > 0},
		{"scene.tree_height", c.Scene.TreeHeight > 0},
		{"scene.tree_radius", c.Scene.TreeRadius > 0},
		{"scene.gifts", c.Scene.Gifts >= 0},
		{"camera.width", c.Camera.Width > 0},
		{"camera.height", c.Camera.Height > 0},
		{"camera.fps", c.Camera.FPS > 0},
		{"detector.max_hands", c.Detector.MaxHands > 0},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, chk.name)
		}
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required when the server is enabled", ErrInvalidConfig)
	}
	return nil
}

// StorePath returns the database path, defaulting to ~/.noel/noel.db.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".noel", "noel.db"), nil
}

// WriteDefault writes the embedded defaults to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, defaultConf, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
