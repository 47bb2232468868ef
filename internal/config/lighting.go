package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Lighting is the daemon's lighting section of the TOML config. The
// watcher reloads it on file change.
type Lighting struct {
	// PreferredBackend overrides backend priority: "ectool",
	// "ec-direct", or "sysfs". Empty keeps the default order.
	PreferredBackend string `toml:"preferred_backend"`

	// Brightness applied at startup; -1 leaves hardware as found.
	Brightness int `toml:"brightness"`

	// StartupEffect starts on boot when set. StartupColor is a hex
	// string like "#3366ff".
	StartupEffect string `toml:"startup_effect"`
	StartupColor  string `toml:"startup_color"`
	StartupSpeed  int    `toml:"startup_speed"`

	// StartupProfile applies a saved profile on boot; takes
	// precedence over StartupEffect.
	StartupProfile string `toml:"startup_profile"`
}

// DefaultLighting returns the config used when no file or section
// exists.
func DefaultLighting() Lighting {
	return Lighting{
		Brightness:   -1,
		StartupSpeed: 5,
	}
}

// LoadLighting reads the lighting section from a TOML config file.
// A missing file or section yields the defaults.
func LoadLighting(path string) (Lighting, error) {
	cfg := DefaultLighting()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal on top of the defaults so absent keys keep them.
	raw := struct {
		Lighting Lighting `toml:"lighting"`
	}{Lighting: cfg}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return raw.Lighting, nil
}
