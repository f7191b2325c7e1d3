package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/steamstat/steamstat/internal/api"
	"github.com/steamstat/steamstat/internal/events"
	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/status"
)

// Daemon runs the background monitor, the HTTP API and the event stream until its context ends.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	monitor   *monitor.Monitor
	refresher *monitor.Refresher
	board     *status.Board
	inbox     *notify.Inbox
	hub       *events.Hub
	apiServer *APIServer
	registry  *prometheus.Registry

	// closers are released once every component has stopped.
	closers []io.Closer
}

// NewDaemon wires the daemon components together.
// Settings are read once here for the optional NATS forwarder and to seed the status board from the cache,
// the monitor itself re-reads them on every tick.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	logger := deps.Logger.Named("daemon")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	board := status.NewBoard()

	inbox, err := notify.NewInbox(opts.InboxSize)
	if err != nil {
		return nil, err
	}

	hub := events.NewHub(deps.Logger)

	d := &Daemon{
		logger:   logger,
		board:    board,
		inbox:    inbox,
		hub:      hub,
		registry: registry,
	}

	dispatchers := notify.Fanout{notify.NewLogDispatcher(deps.Logger), inbox, hub}

	cfg, err := deps.Settings.Settings()
	if err != nil {
		logger.Warn("Settings could not be read, starting unconfigured", "error", err)
	} else {
		if cfg.NATSURL != "" {
			natsDispatcher, err := notify.NewNATSDispatcher(deps.Logger, cfg.NATSURL, cfg.NATSSubject)
			if err != nil {
				return nil, fmt.Errorf("failed to configure NATS forwarding: %w", err)
			}
			dispatchers = append(dispatchers, natsDispatcher)
			d.closers = append(d.closers, natsDispatcher)
		}

		if cfg.Configured() {
			if snap, cachedAt, err := deps.Cache.Load(cfg.GatewayURL); err == nil {
				board.Seed(snap, cachedAt)
				logger.Info("Loaded cached snapshot", "cachedAt", cachedAt)
			} else {
				logger.Debug("No cached snapshot", "reason", err)
			}
		}
	}

	monitorDeps, err := monitor.NewDependencies(deps.Logger, deps.Settings, deps.Fetcher, dispatchers, board)
	if err != nil {
		return nil, err
	}

	// Daemon wiring first, so callers can still override the timing.
	monitorOpts := append([]monitor.Option{
		monitor.WithMetrics(monitor.NewMetrics(registry)),
		monitor.WithSnapshotStore(deps.Cache),
		monitor.WithOpener(opts.Opener),
	}, opts.MonitorOptions...)

	d.monitor, err = monitor.NewMonitor(monitorDeps, monitorOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}

	d.refresher, err = monitor.NewRefresher(
		deps.Logger,
		deps.Settings,
		deps.Fetcher,
		board,
		append([]monitor.Option{monitor.WithSnapshotStore(deps.Cache)}, opts.MonitorOptions...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresher: %w", err)
	}

	services := api.Services{
		Monitor:   d.monitor,
		Status:    board,
		Refresher: d.refresher,
		Inbox:     inbox,
		Settings:  deps.Settings,
	}

	apiOpts, err := NewAPIOptions(opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}
	var origins []string
	if apiOpts.CORS.Enabled {
		origins = apiOpts.CORS.AllowOrigins
	}

	apiDeps, err := NewAPIDependencies(
		deps.Logger,
		services,
		events.NewHandler(hub, origins, deps.Logger),
		registry,
		deps.APIAddr,
	)
	if err != nil {
		return nil, err
	}

	d.apiServer, err = NewAPIServer(apiDeps, append([]APIOption{WithMetricsRegistry(registry)}, opts.APIOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}

	return d, nil
}

// StartAndManage runs every component until ctx is cancelled or one of them fails.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	defer d.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.hub.Run(gctx)
	})

	// Subscribe before the first tick so no transition is missed.
	evs, unsubscribe := d.monitor.Subscribe()
	defer unsubscribe()

	g.Go(func() error {
		d.hub.Relay(gctx, evs)
		return nil
	})

	g.Go(func() error {
		return d.monitor.Run(gctx)
	})

	g.Go(func() error {
		return d.apiServer.Start(gctx)
	})

	err := g.Wait()
	if stdErrors.Is(err, context.Canceled) && ctx.Err() != nil {
		d.logger.Info("Daemon stopped")
		return ctx.Err()
	}

	return err
}

// APIServer returns the daemon's API server.
func (d *Daemon) APIServer() *APIServer {
	return d.apiServer
}

// Monitor returns the daemon's background monitor.
func (d *Daemon) Monitor() *monitor.Monitor {
	return d.monitor
}

func (d *Daemon) close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			d.logger.Warn("Failed to release resource", "error", err)
		}
	}
}
