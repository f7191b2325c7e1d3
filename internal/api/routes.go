package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/steamstat/steamstat/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// Services bundles the collaborators the API reads from.
type Services struct {
	Monitor   contracts.MonitorStateReader
	Status    contracts.StatusReader
	Refresher contracts.StatusRefresher
	Inbox     contracts.NotificationInbox
	Settings  contracts.SettingsReader
}

// Validate ensures every service is provided.
func (s Services) Validate() error {
	if isNil(s.Monitor) {
		return fmt.Errorf("monitor cannot be nil")
	}
	if isNil(s.Status) {
		return fmt.Errorf("status reader cannot be nil")
	}
	if isNil(s.Refresher) {
		return fmt.Errorf("refresher cannot be nil")
	}
	if isNil(s.Inbox) {
		return fmt.Errorf("notification inbox cannot be nil")
	}
	if isNil(s.Settings) {
		return fmt.Errorf("settings reader cannot be nil")
	}
	return nil
}

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(router huma.API, services Services) (string, error) {
	if isNil(router) {
		return "", fmt.Errorf("router cannot be nil")
	}
	if err := services.Validate(); err != nil {
		return "", err
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterMonitorRoutes(versionedGroup, services.Monitor, "/monitor")
	RegisterStatusRoutes(versionedGroup, services.Status, services.Refresher, "/status")
	RegisterSettingsRoutes(versionedGroup, services.Settings, "/settings")
	RegisterNotificationRoutes(versionedGroup, services.Inbox, "/notifications")

	return apiPathPrefix, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
