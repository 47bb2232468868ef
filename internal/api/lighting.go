package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/kbglow/internal/api/models"
	"github.com/smazurov/kbglow/internal/effects"
	"github.com/smazurov/kbglow/internal/hardware"
)

// registerLightingRoutes registers the static lighting endpoints. Each
// one routes through the effect manager so a running animation is
// stopped before the static frame lands.
func (s *Server) registerLightingRoutes() {
	// Solid color across all zones
	huma.Register(s.api, huma.Operation{
		OperationID: "set-color",
		Method:      http.MethodPost,
		Path:        "/api/lighting/color",
		Summary:     "Set Color",
		Description: "Set all zones to a single static color",
		Tags:        []string{"lighting"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.ColorRequest) (*models.StatusResponse, error) {
		c, err := hardware.ParseHex(input.Body.Color)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if !s.manager.Start("static_color", effects.Params{Color: c}) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "color applied"},
		}, nil
	})

	// Per-zone colors
	huma.Register(s.api, huma.Operation{
		OperationID: "set-zone-colors",
		Method:      http.MethodPost,
		Path:        "/api/lighting/zones",
		Summary:     "Set Zone Colors",
		Description: "Set each zone to its own static color, left to right",
		Tags:        []string{"lighting"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.ZonesRequest) (*models.StatusResponse, error) {
		if len(input.Body.Colors) != hardware.NumZones {
			return nil, huma.Error400BadRequest("expected one color per zone")
		}

		colors := make([]hardware.Color, len(input.Body.Colors))
		for i, hex := range input.Body.Colors {
			c, err := hardware.ParseHex(hex)
			if err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
			colors[i] = c
		}

		if !s.manager.Start("static_zones", effects.Params{ZoneColors: colors}) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "zone colors applied"},
		}, nil
	})

	// Static rainbow across zones
	huma.Register(s.api, huma.Operation{
		OperationID: "set-rainbow",
		Method:      http.MethodPost,
		Path:        "/api/lighting/rainbow",
		Summary:     "Set Rainbow",
		Description: "Spread a static rainbow across the zones",
		Tags:        []string{"lighting"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.StatusResponse, error) {
		if !s.manager.Start("static_rainbow", effects.Params{}) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "rainbow applied"},
		}, nil
	})

	// Gradient between two colors
	huma.Register(s.api, huma.Operation{
		OperationID: "set-gradient",
		Method:      http.MethodPost,
		Path:        "/api/lighting/gradient",
		Summary:     "Set Gradient",
		Description: "Interpolate a static gradient between two colors across the zones",
		Tags:        []string{"lighting"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.GradientRequest) (*models.StatusResponse, error) {
		start, err := hardware.ParseHex(input.Body.StartColor)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		end, err := hardware.ParseHex(input.Body.EndColor)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if !s.manager.Start("static_gradient", effects.Params{StartColor: start, EndColor: end}) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "gradient applied"},
		}, nil
	})

	// Clear all zones
	huma.Register(s.api, huma.Operation{
		OperationID: "clear-lighting",
		Method:      http.MethodPost,
		Path:        "/api/lighting/clear",
		Summary:     "Clear",
		Description: "Stop any running effect and turn all zones off",
		Tags:        []string{"lighting"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.StatusResponse, error) {
		s.manager.Stop()
		if !s.controller.ClearAll(ctx) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "cleared"},
		}, nil
	})
}
