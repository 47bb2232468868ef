package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Profile represents a saved lighting setup that can be re-applied by
// name.
type Profile struct {
	Name    string `toml:"name" json:"name"`
	Effect  string `toml:"effect" json:"effect"`
	Speed   int    `toml:"speed,omitempty" json:"speed,omitempty"`
	Color   string `toml:"color,omitempty" json:"color,omitempty"`
	Rainbow bool   `toml:"rainbow,omitempty" json:"rainbow,omitempty"`

	// Per-zone colors for static_zones, gradient endpoints for
	// static_gradient.
	ZoneColors []string `toml:"zone_colors,omitempty" json:"zone_colors,omitempty"`
	StartColor string   `toml:"start_color,omitempty" json:"start_color,omitempty"`
	EndColor   string   `toml:"end_color,omitempty" json:"end_color,omitempty"`

	// Brightness percentage; -1 leaves brightness untouched.
	Brightness int `toml:"brightness" json:"brightness,omitempty" default:"-1" minimum:"-1" maximum:"100"`

	// Metadata
	CreatedAt time.Time `toml:"created_at" json:"created_at"`
	UpdatedAt time.Time `toml:"updated_at" json:"updated_at"`
}

// ProfilesConfig represents the complete profiles configuration file
type ProfilesConfig struct {
	Version  int                `toml:"version" json:"version"`
	Profiles map[string]Profile `toml:"profiles" json:"profiles"`
}

// ProfileManager manages saved lighting profiles. Safe for concurrent
// use by the API handlers.
type ProfileManager struct {
	mu         sync.RWMutex
	configPath string
	config     *ProfilesConfig
}

// NewProfileManager creates a new profile manager
func NewProfileManager(configPath string) *ProfileManager {
	if configPath == "" {
		configPath = "profiles.toml"
	}

	return &ProfileManager{
		configPath: configPath,
		config: &ProfilesConfig{
			Version:  1,
			Profiles: make(map[string]Profile),
		},
	}
}

// Load loads the profiles configuration from file
func (pm *ProfileManager) Load() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Check if file exists
	if _, err := os.Stat(pm.configPath); os.IsNotExist(err) {
		// File doesn't exist, use empty config
		return nil
	}

	data, err := os.ReadFile(pm.configPath)
	if err != nil {
		return fmt.Errorf("failed to read profiles config: %w", err)
	}

	if err := toml.Unmarshal(data, pm.config); err != nil {
		return fmt.Errorf("failed to parse profiles config: %w", err)
	}

	// Initialize profiles map if nil
	if pm.config.Profiles == nil {
		pm.config.Profiles = make(map[string]Profile)
	}

	// Set version if not set
	if pm.config.Version == 0 {
		pm.config.Version = 1
	}

	return nil
}

// Save saves the profiles configuration to file
func (pm *ProfileManager) Save() error {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.saveLocked()
}

// saveLocked writes the config file; callers hold the lock.
func (pm *ProfileManager) saveLocked() error {
	// Ensure directory exists
	dir := filepath.Dir(pm.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(pm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles config: %w", err)
	}

	if err := os.WriteFile(pm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write profiles config: %w", err)
	}

	return nil
}

// AddProfile adds a new profile to the configuration
func (pm *ProfileManager) AddProfile(profile Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if profile.Effect == "" {
		return fmt.Errorf("profile effect cannot be empty")
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Set timestamps
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	pm.config.Profiles[profile.Name] = profile
	return pm.saveLocked()
}

// UpdateProfile updates an existing profile
func (pm *ProfileManager) UpdateProfile(name string, updates Profile) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	existing, exists := pm.config.Profiles[name]
	if !exists {
		return fmt.Errorf("profile %s not found", name)
	}

	// Preserve creation time and name
	updates.Name = existing.Name
	updates.CreatedAt = existing.CreatedAt
	updates.UpdatedAt = time.Now()

	// Use existing values if not provided
	if updates.Effect == "" {
		updates.Effect = existing.Effect
	}

	pm.config.Profiles[name] = updates
	return pm.saveLocked()
}

// RemoveProfile removes a profile from the configuration
func (pm *ProfileManager) RemoveProfile(name string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if _, exists := pm.config.Profiles[name]; !exists {
		return fmt.Errorf("profile %s not found", name)
	}

	delete(pm.config.Profiles, name)
	return pm.saveLocked()
}

// GetProfile retrieves a profile by name
func (pm *ProfileManager) GetProfile(name string) (Profile, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	profile, exists := pm.config.Profiles[name]
	return profile, exists
}

// GetProfiles returns a copy of all profiles.
func (pm *ProfileManager) GetProfiles() map[string]Profile {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	out := make(map[string]Profile, len(pm.config.Profiles))
	for name, p := range pm.config.Profiles {
		out[name] = p
	}
	return out
}
