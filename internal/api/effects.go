package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/kbglow/internal/api/models"
	"github.com/smazurov/kbglow/internal/effects"
	"github.com/smazurov/kbglow/internal/hardware"
)

// registerEffectRoutes registers all effect-related endpoints
func (s *Server) registerEffectRoutes() {
	// List available effects
	huma.Register(s.api, huma.Operation{
		OperationID: "list-effects",
		Method:      http.MethodGet,
		Path:        "/api/effects",
		Summary:     "List Effects",
		Description: "Get all available lighting effects and their capabilities",
		Tags:        []string{"effects"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.EffectListResponse, error) {
		descs := effects.Descriptors()
		infos := make([]models.EffectInfo, len(descs))
		for i, d := range descs {
			infos[i] = models.EffectInfo{
				Name:            d.Name,
				Dynamic:         d.Run != nil,
				NeedsColor:      d.NeedsColor,
				SupportsRainbow: d.SupportsRainbow,
			}
		}

		return &models.EffectListResponse{
			Body: models.EffectListData{
				Effects: infos,
				Count:   len(infos),
			},
		}, nil
	})

	// Start an effect
	huma.Register(s.api, huma.Operation{
		OperationID: "start-effect",
		Method:      http.MethodPost,
		Path:        "/api/effects",
		Summary:     "Start Effect",
		Description: "Start a lighting effect, replacing any currently running effect",
		Tags:        []string{"effects"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.EffectStartRequest) (*models.StatusResponse, error) {
		if _, ok := effects.Lookup(input.Body.Name); !ok {
			return nil, huma.Error400BadRequest("unknown effect: " + input.Body.Name)
		}

		params, err := paramsFromRequest(input.Body)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if !s.controller.Ready() {
			return nil, errNotReady()
		}
		if !s.manager.Start(input.Body.Name, params) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{
				Status:  "ok",
				Message: "effect started: " + input.Body.Name,
			},
		}, nil
	})

	// Stop the running effect
	huma.Register(s.api, huma.Operation{
		OperationID: "stop-effect",
		Method:      http.MethodDelete,
		Path:        "/api/effects",
		Summary:     "Stop Effect",
		Description: "Stop the currently running effect, leaving the last frame lit",
		Tags:        []string{"effects"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.StatusResponse, error) {
		s.manager.Stop()
		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "effect stopped"},
		}, nil
	})

	// Get the active effect
	huma.Register(s.api, huma.Operation{
		OperationID: "get-active-effect",
		Method:      http.MethodGet,
		Path:        "/api/effects/active",
		Summary:     "Active Effect",
		Description: "Get the currently running effect and its parameters",
		Tags:        []string{"effects"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.ActiveEffectResponse, error) {
		params, running := s.manager.ActiveParams()
		if !running {
			return &models.ActiveEffectResponse{
				Body: models.ActiveEffectData{Active: false},
			}, nil
		}

		return &models.ActiveEffectResponse{
			Body: models.ActiveEffectData{
				Active:  true,
				Name:    s.manager.ActiveEffect(),
				Speed:   params.Speed,
				Color:   params.Color.Hex(),
				Rainbow: params.Rainbow,
			},
		}, nil
	})

	// Adjust the active effect in place
	huma.Register(s.api, huma.Operation{
		OperationID: "update-active-effect",
		Method:      http.MethodPatch,
		Path:        "/api/effects/active",
		Summary:     "Update Active Effect",
		Description: "Change speed or color of the running effect without naming it",
		Tags:        []string{"effects"},
		Errors:      []int{400, 401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.EffectUpdateRequest) (*models.StatusResponse, error) {
		if !s.manager.IsRunning() {
			return nil, huma.Error404NotFound("no effect running")
		}

		if input.Body.Speed != 0 {
			if !s.manager.UpdateSpeed(input.Body.Speed) {
				return nil, huma.Error404NotFound("no effect running")
			}
		}
		if input.Body.Color != "" {
			c, err := hardware.ParseHex(input.Body.Color)
			if err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
			if !s.manager.UpdateColor(c) {
				return nil, huma.Error404NotFound("no effect running")
			}
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "effect updated"},
		}, nil
	})
}

// paramsFromRequest converts the wire request into effect parameters,
// parsing every hex color field that is present.
func paramsFromRequest(req models.EffectStartRequestData) (effects.Params, error) {
	p := effects.Params{
		Speed:   req.Speed,
		Rainbow: req.Rainbow,
	}

	var err error
	if req.Color != "" {
		if p.Color, err = hardware.ParseHex(req.Color); err != nil {
			return p, err
		}
	}
	if req.StartColor != "" {
		if p.StartColor, err = hardware.ParseHex(req.StartColor); err != nil {
			return p, err
		}
	}
	if req.EndColor != "" {
		if p.EndColor, err = hardware.ParseHex(req.EndColor); err != nil {
			return p, err
		}
	}
	for _, zc := range req.ZoneColors {
		c, err := hardware.ParseHex(zc)
		if err != nil {
			return p, err
		}
		p.ZoneColors = append(p.ZoneColors, c)
	}

	return p, nil
}
