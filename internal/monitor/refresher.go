package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/status"
)

// Refresher performs on demand fetches for display surfaces.
// It writes the status board and snapshot store but never the monitor state,
// so a manual refresh can never raise or swallow a notification.
type Refresher struct {
	logger       hclog.Logger
	settings     SettingsProvider
	fetcher      Fetcher
	board        *status.Board
	store        SnapshotStore
	fetchTimeout time.Duration
}

// NewRefresher creates a refresher. Only the FetchTimeout and Store options apply.
func NewRefresher(
	logger hclog.Logger,
	settingsProvider SettingsProvider,
	fetcher Fetcher,
	board *status.Board,
	opt ...Option,
) (*Refresher, error) {
	if isNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if isNil(settingsProvider) {
		return nil, fmt.Errorf("settings provider cannot be nil")
	}
	if isNil(fetcher) {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if board == nil {
		return nil, fmt.Errorf("status board cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid refresher options: %w", err)
	}

	return &Refresher{
		logger:       logger.Named("refresh"),
		settings:     settingsProvider,
		fetcher:      fetcher,
		board:        board,
		store:        opts.Store,
		fetchTimeout: opts.FetchTimeout,
	}, nil
}

// Refresh fetches a snapshot now and returns the updated board reading.
func (r *Refresher) Refresh(ctx context.Context) (status.Reading, error) {
	cfg, err := r.settings.Settings()
	if err != nil {
		return status.Reading{}, fmt.Errorf("%w: %w", errors.ErrNotConfigured, err)
	}
	if !cfg.Configured() {
		return status.Reading{}, fmt.Errorf("%w: gateway URL and API key are required", errors.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := r.fetcher.Fetch(ctx, cfg.GatewayURL, cfg.GatewayAPIKey)
	latency := time.Since(start)
	if err == nil && snap == nil {
		err = fmt.Errorf("%w: empty snapshot", errors.ErrInvalidSnapshot)
	}
	if err != nil {
		r.board.Failed(err, latency)
		r.logger.Warn("Manual refresh failed", "error", err, "duration", latency)
		return status.Reading{}, err
	}

	r.board.Succeeded(snap, latency)
	if r.store != nil {
		if err := r.store.Store(cfg.GatewayURL, snap); err != nil {
			r.logger.Warn("Failed to cache snapshot", "error", err)
		}
	}
	r.logger.Debug("Manual refresh succeeded", "duration", latency)

	return r.board.Reading(), nil
}
