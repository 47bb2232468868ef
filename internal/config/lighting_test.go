package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLightingDefaults(t *testing.T) {
	// Missing file yields defaults, not an error.
	cfg, err := LoadLighting(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Brightness != -1 {
		t.Errorf("expected brightness -1, got %d", cfg.Brightness)
	}
	if cfg.StartupSpeed != 5 {
		t.Errorf("expected startup speed 5, got %d", cfg.StartupSpeed)
	}
	if cfg.PreferredBackend != "" || cfg.StartupEffect != "" {
		t.Errorf("expected empty strings, got %+v", cfg)
	}
}

func TestLoadLightingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[lighting]
preferred_backend = "ec-direct"
brightness = 75
startup_effect = "breathing"
startup_color = "#3366FF"
startup_speed = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLighting(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreferredBackend != "ec-direct" {
		t.Errorf("expected ec-direct, got %q", cfg.PreferredBackend)
	}
	if cfg.Brightness != 75 {
		t.Errorf("expected 75, got %d", cfg.Brightness)
	}
	if cfg.StartupEffect != "breathing" || cfg.StartupColor != "#3366FF" || cfg.StartupSpeed != 8 {
		t.Errorf("startup fields wrong: %+v", cfg)
	}
}

func TestLoadLightingAbsentKeysKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[lighting]
preferred_backend = "sysfs"

[server]
port = ":8090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLighting(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreferredBackend != "sysfs" {
		t.Errorf("expected sysfs, got %q", cfg.PreferredBackend)
	}
	// Keys absent from the section keep their defaults.
	if cfg.Brightness != -1 {
		t.Errorf("absent brightness should stay -1, got %d", cfg.Brightness)
	}
	if cfg.StartupSpeed != 5 {
		t.Errorf("absent startup_speed should stay 5, got %d", cfg.StartupSpeed)
	}
}

func TestLoadLightingNoSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = \":8090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLighting(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Brightness != -1 || cfg.StartupSpeed != 5 {
		t.Errorf("expected defaults without section, got %+v", cfg)
	}
}

func TestLoadLightingMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[[[not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLighting(path); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestLoadLightingEmptyPath(t *testing.T) {
	cfg, err := LoadLighting("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultLighting() {
		t.Errorf("expected defaults for empty path, got %+v", cfg)
	}
}
