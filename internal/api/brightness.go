package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/kbglow/internal/api/models"
)

// registerBrightnessRoutes registers the backlight brightness endpoints
func (s *Server) registerBrightnessRoutes() {
	// Set brightness
	huma.Register(s.api, huma.Operation{
		OperationID: "set-brightness",
		Method:      http.MethodPut,
		Path:        "/api/brightness",
		Summary:     "Set Brightness",
		Description: "Set keyboard backlight brightness as a percentage",
		Tags:        []string{"brightness"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.BrightnessRequest) (*models.BrightnessResponse, error) {
		if !s.controller.SetBrightness(ctx, input.Body.Percent) {
			return nil, errNotReady()
		}

		return &models.BrightnessResponse{
			Body: models.BrightnessData{Percent: input.Body.Percent},
		}, nil
	})

	// Get brightness
	huma.Register(s.api, huma.Operation{
		OperationID: "get-brightness",
		Method:      http.MethodGet,
		Path:        "/api/brightness",
		Summary:     "Get Brightness",
		Description: "Read keyboard backlight brightness; falls back to the last set value when no backend can read it",
		Tags:        []string{"brightness"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.BrightnessResponse, error) {
		pct, ok := s.controller.GetBrightness(ctx)
		if !ok {
			return nil, errNotReady()
		}

		return &models.BrightnessResponse{
			Body: models.BrightnessData{Percent: pct},
		}, nil
	})
}
