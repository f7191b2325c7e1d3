package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steamstat/steamstat/internal/api"
	"github.com/steamstat/steamstat/internal/cmd"
	"github.com/steamstat/steamstat/internal/errors"
)

const (
	// EventsPath serves the WebSocket event stream.
	EventsPath = "/events"

	// MetricsPath serves Prometheus metrics.
	MetricsPath = "/metrics"
)

// APIServer manages the HTTP API for the daemon.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// Services are the collaborators the API routes read from.
	services api.Services

	// Events serves the WebSocket event stream.
	events http.Handler

	// Gatherer exposes collected metrics.
	gatherer prometheus.Gatherer

	// Metrics records API traffic, nil when metrics are disabled.
	metrics *APIMetrics

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration

	// ready is closed once the listener is bound.
	ready chan struct{}

	// boundAddr is the address actually bound, useful when Addr uses port 0.
	boundAddr string
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	// Ensure we always start with defaults and apply user options on top.
	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	var metrics *APIMetrics
	if apiOpts.MetricsRegistry != nil {
		metrics = NewAPIMetrics(apiOpts.MetricsRegistry)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		services:        deps.Services,
		events:          deps.Events,
		gatherer:        deps.Gatherer,
		metrics:         metrics,
		addr:            deps.Addr,
		cors:            apiOpts.CORS,
		shutdownTimeout: apiOpts.ShutdownTimeout,
		ready:           make(chan struct{}),
	}, nil
}

// Handler builds the HTTP handler serving the API, the event stream and metrics.
func (a *APIServer) Handler() (http.Handler, string, error) {
	// Create router.
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)
	if a.metrics != nil {
		mux.Use(a.metrics.Middleware)
	}

	// Add CORS middleware if enabled.
	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	config := huma.DefaultConfig("steamstat docs", cmd.Version())
	router := humachi.New(mux, config)

	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	apiPathPrefix, err := api.RegisterRoutes(router, a.services)
	if err != nil {
		return nil, "", err
	}

	mux.Handle(EventsPath, a.events)
	mux.Handle(MetricsPath, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	return mux, apiPathPrefix, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	handler, apiPathPrefix, err := a.Handler()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.addr, err)
	}
	a.boundAddr = listener.Addr().String()
	close(a.ready)

	srv := &http.Server{
		Addr:              a.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)

	// Start the API.
	go func() {
		a.logger.Info("Starting API server", "address", a.boundAddr, "prefix", apiPathPrefix)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if err := srv.Serve(listener); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Handle graceful shutdown.
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		_ = srv.Shutdown(shutdownCtx)
		a.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Ready is closed once Start has bound its listener.
func (a *APIServer) Ready() <-chan struct{} {
	return a.ready
}

// BoundAddr returns the address the server listens on. It is only valid after Ready is closed.
func (a *APIServer) BoundAddr() string {
	return a.boundAddr
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   a.cors.AllowOrigins,
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		ExposedHeaders:   a.cors.ExposedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// Handle wildcard origins properly.
	for i, origin := range corsOptions.AllowedOrigins {
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// NOTE: Keep this function in sync with internal/errors/errors.go.
// Every error defined there should have an explicit case here otherwise it will default to 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 404: Resource not found errors
//   - 409: Requests that cannot be served in the current state
//   - 502: Status gateway failures
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to:
// 1. Add test cases to TestMapError (internal/daemon/api_server_test.go)
// 2. Update the documentation in internal/errors/errors.go
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrNotConfigured):
		return huma.Error409Conflict(err.Error())
	case stdErrors.Is(err, errors.ErrNoSnapshot):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrNotificationNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrFetchFailed):
		logger.Warn("Status fetch failed", "error", err)
		return huma.Error502BadGateway("Status gateway request failed", err)
	case stdErrors.Is(err, errors.ErrInvalidSnapshot):
		logger.Warn("Status gateway returned an invalid snapshot", "error", err)
		return huma.Error502BadGateway("Status gateway returned an invalid snapshot", err)
	case stdErrors.Is(err, errors.ErrActivationFailed):
		logger.Error("Notification activation failed", "error", err)
		return huma.Error500InternalServerError("Notification activation failed", err)
	default:
		logger.Error("Unexpected error serving API request", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// It allows the logger to be supplied to functions that resolve huma.StatusError,
// and it supports different behaviors based on the variadic errors parameter.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch {
		case len(errs) == 0:
			// No errors provided; return a generic error.
			return huma.NewError(status, msg)
		case allDetails(errs):
			// Request validation failures from huma keep their status.
			return huma.NewError(status, msg, errs...)
		case len(errs) == 1:
			// Single error; map it directly.
			return mapError(logger, errs[0])
		default:
			// Multiple errors; join them and map.
			combinedErr := stdErrors.Join(errs...)
			return mapError(logger, combinedErr)
		}
	}
}

func allDetails(errs []error) bool {
	for _, err := range errs {
		var detailer huma.ErrorDetailer
		if !stdErrors.As(err, &detailer) {
			return false
		}
	}
	return true
}
