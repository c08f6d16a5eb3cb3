package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/editcore/internal/view"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editcore.toml")
	doc := `
[editor]
tab_size = 8
translate_tabs_to_spaces = true

[display]
wrap_mode = "bytes"
wrap_value = 80
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.TabSize != 8 || !cfg.Editor.TranslateTabs {
		t.Fatalf("editor section = %+v", cfg.Editor)
	}
	// Unset keys keep their defaults.
	if !cfg.Editor.Autopair {
		t.Fatal("autopair default was lost")
	}
	if cfg.Display.WrapMode != WrapModeBytes || cfg.Display.WrapValue != 80 {
		t.Fatalf("display section = %+v", cfg.Display)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":    `[editor` + "\n",
		"tab_size":  "[editor]\ntab_size = 0\n",
		"wrap_mode": "[display]\nwrap_mode = \"diagonal\"\n",
		"wrap_value": `
[display]
wrap_mode = "bytes"
wrap_value = -1
`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "editcore.toml")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSettingsMapping(t *testing.T) {
	cfg := Default()
	cfg.Display.WrapMode = WrapModeWidth
	cfg.Display.WrapValue = 640
	cfg.Display.Font = "mono"
	cfg.Editor.TabSize = 2

	s := cfg.Settings()
	if s.WrapWidth != (view.WrapWidth{Mode: view.WrapPixels, Value: 640}) {
		t.Fatalf("wrap = %+v", s.WrapWidth)
	}
	if s.TabSize != 2 || s.Font != "mono" || !s.Autopair {
		t.Fatalf("settings = %+v", s)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editcore.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_size = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan Config, 4)
	w, err := Watch(path, func(cfg Config) { got <- cfg })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[editor]\ntab_size = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-got:
			if cfg.Editor.TabSize == 8 {
				return
			}
		case <-deadline:
			t.Fatal("no reload within deadline")
		}
	}
}

func TestWatchIgnoresBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editcore.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_size = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan Config, 4)
	w, err := Watch(path, func(cfg Config) { got <- cfg })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[editor]\ntab_size = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		t.Fatalf("invalid config was delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
