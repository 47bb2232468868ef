package models

import (
	"github.com/smazurov/kbglow/internal/config"
	"github.com/smazurov/kbglow/internal/hardware"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.21.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Effect models
type EffectInfo struct {
	Name            string `json:"name" example:"breathing" doc:"Effect name"`
	Dynamic         bool   `json:"dynamic" example:"true" doc:"Whether the effect animates continuously"`
	NeedsColor      bool   `json:"needs_color" example:"true" doc:"Whether the effect uses a base color"`
	SupportsRainbow bool   `json:"supports_rainbow" example:"true" doc:"Whether rainbow mode is available"`
}

type EffectListData struct {
	Effects []EffectInfo `json:"effects" doc:"Available effects in registry order"`
	Count   int          `json:"count" example:"17" doc:"Number of effects"`
}

type EffectListResponse struct {
	Body EffectListData
}

type EffectStartRequestData struct {
	Name       string   `json:"name" minLength:"1" example:"breathing" doc:"Effect name from the registry"`
	Speed      int      `json:"speed,omitempty" minimum:"0" maximum:"10" example:"5" doc:"Animation speed 1-10 (0 selects the default)"`
	Color      string   `json:"color,omitempty" example:"#FF8800" doc:"Base color as hex"`
	Rainbow    bool     `json:"rainbow,omitempty" example:"false" doc:"Cycle hues instead of the base color"`
	ZoneColors []string `json:"zone_colors,omitempty" doc:"Per-zone hex colors (static_zones)"`
	StartColor string   `json:"start_color,omitempty" example:"#FF0000" doc:"Gradient start color (static_gradient)"`
	EndColor   string   `json:"end_color,omitempty" example:"#0000FF" doc:"Gradient end color (static_gradient)"`
}

type EffectStartRequest struct {
	Body EffectStartRequestData
}

type ActiveEffectData struct {
	Active  bool   `json:"active" example:"true" doc:"Whether an effect is running"`
	Name    string `json:"name,omitempty" example:"breathing" doc:"Running effect name"`
	Speed   int    `json:"speed,omitempty" example:"5" doc:"Animation speed"`
	Color   string `json:"color,omitempty" example:"#FF8800" doc:"Base color as hex"`
	Rainbow bool   `json:"rainbow,omitempty" example:"false" doc:"Rainbow mode"`
}

type ActiveEffectResponse struct {
	Body ActiveEffectData
}

type EffectUpdateRequestData struct {
	Speed int    `json:"speed,omitempty" minimum:"0" maximum:"10" example:"8" doc:"New animation speed (0 leaves speed unchanged)"`
	Color string `json:"color,omitempty" example:"#00FF00" doc:"New base color as hex"`
}

type EffectUpdateRequest struct {
	Body EffectUpdateRequestData
}

// Lighting models
type ColorRequestData struct {
	Color string `json:"color" minLength:"1" example:"#FF8800" doc:"Color as hex"`
}

type ColorRequest struct {
	Body ColorRequestData
}

type ZonesRequestData struct {
	Colors []string `json:"colors" minItems:"4" maxItems:"4" doc:"One hex color per zone, left to right"`
}

type ZonesRequest struct {
	Body ZonesRequestData
}

type GradientRequestData struct {
	StartColor string `json:"start_color" minLength:"1" example:"#FF0000" doc:"Leftmost zone color as hex"`
	EndColor   string `json:"end_color" minLength:"1" example:"#0000FF" doc:"Rightmost zone color as hex"`
}

type GradientRequest struct {
	Body GradientRequestData
}

type StatusData struct {
	Status  string `json:"status" example:"ok" doc:"Operation status"`
	Message string `json:"message,omitempty" example:"color applied" doc:"Optional detail"`
}

type StatusResponse struct {
	Body StatusData
}

// Brightness models
type BrightnessRequestData struct {
	Percent int `json:"percent" minimum:"0" maximum:"100" example:"80" doc:"Brightness percentage"`
}

type BrightnessRequest struct {
	Body BrightnessRequestData
}

type BrightnessData struct {
	Percent int `json:"percent" example:"80" doc:"Brightness percentage"`
}

type BrightnessResponse struct {
	Body BrightnessData
}

// Hardware models
type HardwareResponse struct {
	Body hardware.Info
}

// Profile models
type ProfileListData struct {
	Profiles map[string]config.Profile `json:"profiles" doc:"Saved lighting profiles by name"`
	Count    int                       `json:"count" example:"3" doc:"Number of profiles"`
}

type ProfileListResponse struct {
	Body ProfileListData
}

type ProfileRequest struct {
	Body config.Profile
}

type ProfileResponse struct {
	Body config.Profile
}
