// Package config loads ggedit settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/ggedit/canvas"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.config/ggedit/config.toml"

// ErrInvalid is returned when a loaded file has unusable values.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete settings file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Canvas CanvasConfig `toml:"canvas"`
	Editor EditorConfig `toml:"editor"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	MaxImagePixels int      `toml:"max_image_pixels"`
	SessionTTL     Duration `toml:"session_ttl"`
}

// CanvasConfig sets the size and background of new canvases.
// MaxDimension bounds both the initial size and later resizes.
type CanvasConfig struct {
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	MaxDimension int    `toml:"max_dimension"`
	Background   string `toml:"background"`
}

// EditorConfig tunes editor behavior.
type EditorConfig struct {
	FitRatio     float64 `toml:"fit_ratio"`
	HistoryLimit int     `toml:"history_limit"`
	PresetFile   string  `toml:"preset_file"`
	ExportName   string  `toml:"export_name"`
}

// LogConfig selects the log level: debug, info, warn, error or off.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "localhost:8080",
			MaxUploadBytes: 20 << 20,
			MaxImagePixels: canvas.DefaultMaxPixels,
			SessionTTL:     Duration(time.Hour),
		},
		Canvas: CanvasConfig{
			Width:        800,
			Height:       600,
			MaxDimension: 4096,
			Background:   "#0a0e27",
		},
		Editor: EditorConfig{
			FitRatio:     0.9,
			HistoryLimit: 50,
			ExportName:   "cyberpunk-edit.png",
		},
		Log: LogConfig{Level: "off"},
	}
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath, which may be absent. A leading ~ is expanded.
func Load(path string) (Config, error) {
	cfg := Default()
	optional := path == ""
	if optional {
		path = DefaultPath
	}
	full, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) && optional {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", full, err)
	}
	return cfg, nil
}

// Decode reads TOML from r into cfg, keeping fields the input omits, and
// validates the result.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	if cfg.Editor.PresetFile != "" {
		p, err := homedir.Expand(cfg.Editor.PresetFile)
		if err != nil {
			return err
		}
		cfg.Editor.PresetFile = p
	}
	return cfg.Validate()
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks ranges and formats.
func (c Config) Validate() error {
	switch {
	case c.Canvas.MaxDimension <= 0 || c.Canvas.MaxDimension > canvas.MaxDimension:
		return fmt.Errorf("%w: max_dimension %d (must be in 1..%d)", ErrInvalid, c.Canvas.MaxDimension, canvas.MaxDimension)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0 ||
		c.Canvas.Width > c.Canvas.MaxDimension || c.Canvas.Height > c.Canvas.MaxDimension:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	case c.Editor.FitRatio <= 0 || c.Editor.FitRatio > 1:
		return fmt.Errorf("%w: fit_ratio %v (must be in (0, 1])", ErrInvalid, c.Editor.FitRatio)
	case c.Editor.HistoryLimit < 0:
		return fmt.Errorf("%w: history_limit %d", ErrInvalid, c.Editor.HistoryLimit)
	case c.Server.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes %d", ErrInvalid, c.Server.MaxUploadBytes)
	case c.Server.MaxImagePixels <= 0:
		return fmt.Errorf("%w: max_image_pixels %d", ErrInvalid, c.Server.MaxImagePixels)
	}
	if _, _, err := c.Log.Parse(); err != nil {
		return err
	}
	return nil
}

// Parse returns the slog level and whether logging is enabled.
func (l LogConfig) Parse() (slog.Level, bool, error) {
	if l.Level == "" || l.Level == "off" {
		return 0, false, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, false, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return lvl, true, nil
}

// Duration is a time.Duration written as a string such as "30m".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalid, text)
	}
	*d = Duration(v)
	return nil
}
