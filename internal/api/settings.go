package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/steamstat/steamstat/internal/contracts"
)

// DisplaySettings are the settings UI clients need. Secrets are never exposed.
type DisplaySettings struct {
	Configured             bool   `json:"configured"`
	StatusPageURL          string `json:"statusPageUrl"`
	RefreshIntervalSeconds int    `json:"refreshIntervalSeconds"`
	ShowHistory            bool   `json:"showHistory"`
	ShowRegions            bool   `json:"showRegions"`
	ShowTrendingGames      bool   `json:"showTrendingGames"`
	EnableNotifications    bool   `json:"enableNotifications"`
}

// DisplaySettingsResponse is the response for GET /settings/display.
type DisplaySettingsResponse struct {
	Body DisplaySettings
}

// RegisterSettingsRoutes sets up the settings endpoints.
func RegisterSettingsRoutes(routerAPI huma.API, reader contracts.SettingsReader, apiPathPrefix string) {
	settingsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Settings"}

	huma.Register(
		settingsAPI,
		huma.Operation{
			OperationID: "getDisplaySettings",
			Method:      http.MethodGet,
			Path:        "/display",
			Summary:     "Get the display refresh interval and toggles",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*DisplaySettingsResponse, error) {
			return handleDisplaySettings(reader)
		},
	)
}

func handleDisplaySettings(reader contracts.SettingsReader) (*DisplaySettingsResponse, error) {
	s, err := reader.Settings()
	if err != nil {
		return nil, err
	}

	return &DisplaySettingsResponse{
		Body: DisplaySettings{
			Configured:             s.Configured(),
			StatusPageURL:          s.StatusPageURL,
			RefreshIntervalSeconds: s.RefreshIntervalSeconds,
			ShowHistory:            s.ShowHistory,
			ShowRegions:            s.ShowRegions,
			ShowTrendingGames:      s.ShowTrendingGames,
			EnableNotifications:    s.EnableNotifications,
		},
	}, nil
}
