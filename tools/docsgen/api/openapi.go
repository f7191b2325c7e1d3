//go:build docsgen_api
// +build docsgen_api

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/api"
	"github.com/steamstat/steamstat/internal/cmd"
	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

// stubMonitor provides a stub implementation for documentation generation.
type stubMonitor struct{}

func (s *stubMonitor) State() monitor.State {
	return monitor.State{}
}

// stubRefresher provides a stub implementation for documentation generation.
type stubRefresher struct{}

func (s *stubRefresher) Refresh(context.Context) (status.Reading, error) {
	return status.Reading{}, nil
}

// stubSettings provides a stub implementation for documentation generation.
type stubSettings struct{}

func (s *stubSettings) Settings() (settings.Settings, error) {
	return settings.Defaults(), nil
}

// main generates the OpenAPI specification for the steamstat API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "steamstat.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	inbox, err := notify.NewInbox(notify.DefaultInboxSize)
	if err != nil {
		logger.Error("failed to create notification inbox", "error", err)
		os.Exit(1)
	}

	// Create a chi router (same as the daemon).
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Create Huma config and router (same as the daemon).
	config := huma.DefaultConfig("steamstat docs", cmd.Version())
	router := humachi.New(mux, config)

	// The OpenAPI spec generation only needs the route definitions, not working handlers.
	apiPathPrefix, err := api.RegisterRoutes(router, api.Services{
		Monitor:   &stubMonitor{},
		Status:    status.NewBoard(),
		Refresher: &stubRefresher{},
		Inbox:     inbox,
		Settings:  &stubSettings{},
	})
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, 0o644); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
