package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Config drives engine startup. Loaded from a TOML file, every field has a
// sane default so a missing file still yields a runnable configuration.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Assets      AssetsConfig      `toml:"assets"`
	LogLevel    string            `toml:"log_level"`
}

type ApplicationConfig struct {
	Name   string `toml:"name"`
	PosX   uint32 `toml:"pos_x"`
	PosY   uint32 `toml:"pos_y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	FramesInFlight uint32 `toml:"frames_in_flight"`
	Validation     bool   `toml:"validation"`
	MSAA           bool   `toml:"msaa"`
	VSync          bool   `toml:"vsync"`
	// Capacity of the pending mesh import queue.
	ImportQueueSize int `toml:"import_queue_size"`
}

type AssetsConfig struct {
	Dir          string `toml:"dir"`
	WatchChanges bool   `toml:"watch_changes"`
	// Number of background workers decoding meshes and textures.
	ImportWorkers int `toml:"import_workers"`
}

func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:   "Tessera Sandbox",
			PosX:   100,
			PosY:   100,
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			FramesInFlight:  2,
			Validation:      true,
			MSAA:            true,
			VSync:           false,
			ImportQueueSize: 256,
		},
		Assets: AssetsConfig{
			Dir:           "assets",
			WatchChanges:  true,
			ImportWorkers: 2,
		},
		LogLevel: "info",
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return errors.New("application window size must be non-zero")
	}
	if c.Renderer.FramesInFlight < 2 || c.Renderer.FramesInFlight > 3 {
		return errors.Newf("frames_in_flight must be 2 or 3, got %d", c.Renderer.FramesInFlight)
	}
	if c.Renderer.ImportQueueSize <= 0 {
		return errors.Newf("import_queue_size must be positive, got %d", c.Renderer.ImportQueueSize)
	}
	if c.Assets.ImportWorkers <= 0 {
		return errors.Newf("import_workers must be positive, got %d", c.Assets.ImportWorkers)
	}
	return nil
}
