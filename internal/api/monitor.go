package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/steamstat/steamstat/internal/contracts"
	"github.com/steamstat/steamstat/internal/monitor"
)

// MonitorStateResponse is the response for GET /monitor.
type MonitorStateResponse struct {
	Body monitor.State
}

// RegisterMonitorRoutes sets up the background monitor endpoints.
func RegisterMonitorRoutes(routerAPI huma.API, reader contracts.MonitorStateReader, apiPathPrefix string) {
	monitorAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Monitor"}

	huma.Register(
		monitorAPI,
		huma.Operation{
			OperationID: "getMonitorState",
			Method:      http.MethodGet,
			Summary:     "Get the background monitor state",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*MonitorStateResponse, error) {
			return handleMonitorState(reader)
		},
	)
}

func handleMonitorState(reader contracts.MonitorStateReader) (*MonitorStateResponse, error) {
	return &MonitorStateResponse{Body: reader.State()}, nil
}
