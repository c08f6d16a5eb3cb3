// Package config loads editor settings from a TOML file and watches it
// for live reload.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/editcore/internal/editor"
	"github.com/dshills/editcore/internal/view"
)

// Wrap mode names accepted in config files.
const (
	WrapModeNone  = "none"
	WrapModeBytes = "bytes"
	WrapModeWidth = "width"
)

// Config is the on-disk configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
}

// EditorConfig holds buffer editing settings.
type EditorConfig struct {
	TabSize       int  `toml:"tab_size"`
	TranslateTabs bool `toml:"translate_tabs_to_spaces"`
	Autopair      bool `toml:"autopair"`
}

// DisplayConfig holds rendering and wrapping settings.
type DisplayConfig struct {
	WrapMode  string `toml:"wrap_mode"`
	WrapValue int    `toml:"wrap_value"`
	Font      string `toml:"font"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			TabSize:  4,
			Autopair: true,
		},
		Display: DisplayConfig{
			WrapMode: WrapModeNone,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a config file, layering it over the defaults. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate rejects values the core cannot run with.
func (c Config) Validate() error {
	if c.Editor.TabSize <= 0 {
		return fmt.Errorf("config: tab_size must be positive, got %d", c.Editor.TabSize)
	}
	switch c.Display.WrapMode {
	case WrapModeNone, WrapModeBytes, WrapModeWidth:
	default:
		return fmt.Errorf("config: unknown wrap_mode %q", c.Display.WrapMode)
	}
	if c.Display.WrapMode != WrapModeNone && c.Display.WrapValue <= 0 {
		return fmt.Errorf("config: wrap_value must be positive for wrap_mode %q", c.Display.WrapMode)
	}
	return nil
}

// Settings maps the configuration onto core settings.
func (c Config) Settings() editor.Settings {
	wrap := view.WrapWidth{Mode: view.WrapNone}
	switch c.Display.WrapMode {
	case WrapModeBytes:
		wrap = view.WrapWidth{Mode: view.WrapBytes, Value: c.Display.WrapValue}
	case WrapModeWidth:
		wrap = view.WrapWidth{Mode: view.WrapPixels, Value: c.Display.WrapValue}
	}
	return editor.Settings{
		WrapWidth:     wrap,
		TabSize:       c.Editor.TabSize,
		TranslateTabs: c.Editor.TranslateTabs,
		Autopair:      c.Editor.Autopair,
		Font:          c.Display.Font,
	}
}
