// Package config loads the server configuration from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/pixel-slider-mcp/internal/engine"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
)

const (
	// EnvConfig names a config file to load when no path is given.
	EnvConfig = "PIXEL_MCP_CONFIG"

	// EnvLogLevel overrides [log] level.
	EnvLogLevel = "PIXEL_MCP_LOG_LEVEL"
)

// DefaultInitialSelection is the level selected before the client picks one.
const DefaultInitialSelection = 8

// Config is the complete server configuration.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Preview PreviewConfig `toml:"preview"`
	Log     LogConfig     `toml:"log"`
}

// EngineConfig configures every engine session the server creates.
type EngineConfig struct {
	MaxLevelCount    int    `toml:"max_level_count"`
	InitialSelection int    `toml:"initial_selection"`
	Strategy         string `toml:"strategy"`
	Workers          int    `toml:"workers"`
	NotifyAll        bool   `toml:"notify_all"`
}

// PreviewConfig controls images returned to clients and exported to disk.
type PreviewConfig struct {
	// MaxWidth bounds the width of returned images; 0 disables downscaling.
	MaxWidth     int    `toml:"max_width"`
	ExportFormat string `toml:"export_format"`
	JPEGQuality  int    `toml:"jpeg_quality"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			MaxLevelCount:    engine.DefaultMaxLevelCount,
			InitialSelection: DefaultInitialSelection,
			Strategy:         string(engine.StrategySweep),
			Workers:          1,
		},
		Preview: PreviewConfig{
			MaxWidth:     1024,
			ExportFormat: string(imaging.FormatPNG),
			JPEGQuality:  imaging.DefaultJPEGQuality,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration.
//
// path wins over $PIXEL_MCP_CONFIG; with neither set the defaults are used.
// Keys missing from the file keep their default values, unknown keys are an
// error. Environment overrides are applied last and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if c.Engine.MaxLevelCount < 0 {
		errs = append(errs, fmt.Errorf("engine.max_level_count must not be negative, got %d", c.Engine.MaxLevelCount))
	}
	if c.Engine.InitialSelection < 0 {
		errs = append(errs, fmt.Errorf("engine.initial_selection must not be negative, got %d", c.Engine.InitialSelection))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers))
	}
	if _, err := engine.ParseStrategy(c.Engine.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("engine.strategy: %w", err))
	}
	if c.Preview.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("preview.max_width must not be negative, got %d", c.Preview.MaxWidth))
	}
	if _, err := imaging.ParseExportFormat(c.Preview.ExportFormat); err != nil {
		errs = append(errs, fmt.Errorf("preview.export_format: %w", err))
	}
	if c.Preview.JPEGQuality < 0 || c.Preview.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("preview.jpeg_quality must be in 0..100, got %d", c.Preview.JPEGQuality))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug or info, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.Log.Level, "debug")
}

// EngineOptions returns engine options for a new session. Compute and
// Listener are left for the caller.
func (c Config) EngineOptions() engine.Options {
	// Validate has already rejected unknown strategies.
	strategy, _ := engine.ParseStrategy(c.Engine.Strategy)
	return engine.Options{
		MaxLevelCount:    c.Engine.MaxLevelCount,
		InitialSelection: c.Engine.InitialSelection,
		Strategy:         strategy,
		Workers:          c.Engine.Workers,
		NotifyAll:        c.Engine.NotifyAll,
		Debug:            c.Debug(),
	}
}

// ExportOptions returns the export settings for level files.
func (c Config) ExportOptions() imaging.ExportOptions {
	format, _ := imaging.ParseExportFormat(c.Preview.ExportFormat)
	return imaging.ExportOptions{
		Format:      format,
		JPEGQuality: c.Preview.JPEGQuality,
	}
}
