package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/kbglow/internal/api/models"
)

// registerHardwareRoutes registers the hardware status endpoint
func (s *Server) registerHardwareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-hardware",
		Method:      http.MethodGet,
		Path:        "/api/hardware",
		Summary:     "Hardware Status",
		Description: "Get backend capability matrix, detection state, and the cached zone colors",
		Tags:        []string{"hardware"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.HardwareResponse, error) {
		// Info blocks until detection finishes, bounded by the probe
		// timeout.
		return &models.HardwareResponse{Body: s.controller.Info()}, nil
	})
}
