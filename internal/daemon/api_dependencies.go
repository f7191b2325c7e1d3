package daemon

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/steamstat/steamstat/internal/api"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// Services are the collaborators the API routes read from.
	Services api.Services

	// Events serves the WebSocket event stream.
	Events http.Handler

	// Gatherer exposes collected metrics on /metrics.
	Gatherer prometheus.Gatherer

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	services api.Services,
	events http.Handler,
	gatherer prometheus.Gatherer,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:     addr,
		Services: services,
		Events:   events,
		Gatherer: gatherer,
		Logger:   logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if err := d.Services.Validate(); err != nil {
		return err
	}
	if d.Events == nil || reflect.ValueOf(d.Events).IsNil() {
		return fmt.Errorf("events handler cannot be nil")
	}
	if d.Gatherer == nil || reflect.ValueOf(d.Gatherer).IsNil() {
		return fmt.Errorf("metrics gatherer cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
