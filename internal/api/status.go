package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/steamstat/steamstat/internal/contracts"
	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/outage"
	"github.com/steamstat/steamstat/internal/status"
)

// StatusResponse is the response for GET /status and POST /status/refresh.
type StatusResponse struct {
	Body status.Reading
}

// StatusSummary is the display summary of the latest snapshot.
type StatusSummary struct {
	// AllOnline is true when every core service is online.
	AllOnline bool `json:"allOnline"`

	// Affected lists the core services that are not online.
	Affected []string `json:"affected"`

	// Online is the reported number of online users.
	Online int64 `json:"online"`

	// Outages summarizes the outage log over the recent window.
	Outages outage.Summary `json:"outages"`

	// FetchedAt is when the snapshot was fetched.
	FetchedAt time.Time `json:"fetchedAt"`
}

// StatusSummaryResponse is the response for GET /status/summary.
type StatusSummaryResponse struct {
	Body StatusSummary
}

// RegisterStatusRoutes sets up the status display endpoints.
func RegisterStatusRoutes(
	routerAPI huma.API,
	reader contracts.StatusReader,
	refresher contracts.StatusRefresher,
	apiPathPrefix string,
) {
	statusAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Status"}

	huma.Register(
		statusAPI,
		huma.Operation{
			OperationID: "getStatus",
			Method:      http.MethodGet,
			Summary:     "Get the last fetched status snapshot",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*StatusResponse, error) {
			return handleStatus(reader)
		},
	)

	huma.Register(
		statusAPI,
		huma.Operation{
			OperationID: "refreshStatus",
			Method:      http.MethodPost,
			Path:        "/refresh",
			Summary:     "Fetch the status snapshot now",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*StatusResponse, error) {
			return handleRefresh(ctx, refresher)
		},
	)

	huma.Register(
		statusAPI,
		huma.Operation{
			OperationID: "getStatusSummary",
			Method:      http.MethodGet,
			Path:        "/summary",
			Summary:     "Summarize availability and recent outages",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*StatusSummaryResponse, error) {
			return handleStatusSummary(reader, time.Now())
		},
	)
}

func handleStatus(reader contracts.StatusReader) (*StatusResponse, error) {
	reading := reader.Reading()
	if reading.Snapshot == nil {
		return nil, errors.ErrNoSnapshot
	}

	return &StatusResponse{Body: reading}, nil
}

func handleRefresh(ctx context.Context, refresher contracts.StatusRefresher) (*StatusResponse, error) {
	reading, err := refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return &StatusResponse{Body: reading}, nil
}

func handleStatusSummary(reader contracts.StatusReader, now time.Time) (*StatusSummaryResponse, error) {
	snap, fetchedAt, err := reader.Latest()
	if err != nil {
		return nil, err
	}

	affected := snap.AffectedServices()
	if affected == nil {
		affected = []string{}
	}

	return &StatusSummaryResponse{
		Body: StatusSummary{
			AllOnline: snap.AllCoreOnline(),
			Affected:  affected,
			Online:    snap.Online,
			Outages:   outage.Summarize(snap, now),
			FetchedAt: fetchedAt,
		},
	}, nil
}
