package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/kbglow/internal/api/models"
	"github.com/smazurov/kbglow/internal/config"
	"github.com/smazurov/kbglow/internal/effects"
	"github.com/smazurov/kbglow/internal/hardware"
)

// registerProfileRoutes registers saved lighting profile endpoints
func (s *Server) registerProfileRoutes() {
	// List profiles
	huma.Register(s.api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/api/profiles",
		Summary:     "List Profiles",
		Description: "Get all saved lighting profiles",
		Tags:        []string{"profiles"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.ProfileListResponse, error) {
		profiles := s.profiles.GetProfiles()
		return &models.ProfileListResponse{
			Body: models.ProfileListData{
				Profiles: profiles,
				Count:    len(profiles),
			},
		}, nil
	})

	// Save a profile
	huma.Register(s.api, huma.Operation{
		OperationID: "save-profile",
		Method:      http.MethodPost,
		Path:        "/api/profiles",
		Summary:     "Save Profile",
		Description: "Save a named lighting profile for later re-application",
		Tags:        []string{"profiles"},
		Errors:      []int{400, 401, 409},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.ProfileRequest) (*models.ProfileResponse, error) {
		if input.Body.Name == "" {
			return nil, huma.Error400BadRequest("profile name is required")
		}
		if _, ok := effects.Lookup(input.Body.Effect); !ok {
			return nil, huma.Error400BadRequest("unknown effect: " + input.Body.Effect)
		}
		if _, err := profileParams(input.Body); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := s.profiles.AddProfile(input.Body); err != nil {
			return nil, huma.Error409Conflict(err.Error())
		}

		saved, _ := s.profiles.GetProfile(input.Body.Name)
		return &models.ProfileResponse{Body: saved}, nil
	})

	// Get a profile
	huma.Register(s.api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/api/profiles/{name}",
		Summary:     "Get Profile",
		Description: "Get a saved lighting profile by name",
		Tags:        []string{"profiles"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"night" doc:"Profile name"`
	}) (*models.ProfileResponse, error) {
		profile, ok := s.profiles.GetProfile(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("profile not found: " + input.Name)
		}

		return &models.ProfileResponse{Body: profile}, nil
	})

	// Delete a profile
	huma.Register(s.api, huma.Operation{
		OperationID: "delete-profile",
		Method:      http.MethodDelete,
		Path:        "/api/profiles/{name}",
		Summary:     "Delete Profile",
		Description: "Delete a saved lighting profile",
		Tags:        []string{"profiles"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"night" doc:"Profile name"`
	}) (*struct{}, error) {
		if err := s.profiles.RemoveProfile(input.Name); err != nil {
			return nil, huma.Error404NotFound(err.Error())
		}

		return &struct{}{}, nil
	})

	// Apply a profile
	huma.Register(s.api, huma.Operation{
		OperationID: "apply-profile",
		Method:      http.MethodPost,
		Path:        "/api/profiles/{name}/apply",
		Summary:     "Apply Profile",
		Description: "Apply a saved lighting profile, replacing any running effect",
		Tags:        []string{"profiles"},
		Errors:      []int{400, 401, 404, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"night" doc:"Profile name"`
	}) (*models.StatusResponse, error) {
		profile, ok := s.profiles.GetProfile(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("profile not found: " + input.Name)
		}

		params, err := profileParams(profile)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if !s.controller.Ready() {
			return nil, errNotReady()
		}
		if profile.Brightness >= 0 {
			if !s.controller.SetBrightness(ctx, profile.Brightness) {
				return nil, errNotReady()
			}
		}
		if !s.manager.Start(profile.Effect, params) {
			return nil, errNotReady()
		}

		return &models.StatusResponse{
			Body: models.StatusData{Status: "ok", Message: "profile applied: " + input.Name},
		}, nil
	})
}

// profileParams converts a stored profile into effect parameters.
func profileParams(p config.Profile) (effects.Params, error) {
	params := effects.Params{
		Speed:   p.Speed,
		Rainbow: p.Rainbow,
	}

	var err error
	if p.Color != "" {
		if params.Color, err = hardware.ParseHex(p.Color); err != nil {
			return params, err
		}
	}
	if p.StartColor != "" {
		if params.StartColor, err = hardware.ParseHex(p.StartColor); err != nil {
			return params, err
		}
	}
	if p.EndColor != "" {
		if params.EndColor, err = hardware.ParseHex(p.EndColor); err != nil {
			return params, err
		}
	}
	for _, zc := range p.ZoneColors {
		c, err := hardware.ParseHex(zc)
		if err != nil {
			return params, err
		}
		params.ZoneColors = append(params.ZoneColors, c)
	}

	return params, nil
}
