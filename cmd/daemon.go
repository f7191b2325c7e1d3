package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cache"
	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/daemon"
	"github.com/steamstat/steamstat/internal/flags"
	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

const (
	defaultAddr = "0.0.0.0:8090"
	devAddr     = "localhost:8090"

	flagDev                = "dev"
	flagAddr               = "addr"
	flagCORSEnable         = "cors-enable"
	flagCORSOrigin         = "cors-allow-origin"
	flagCORSMethod         = "cors-allow-method"
	flagCORSCredentials    = "cors-allow-credentials"
	flagCORSMaxAge         = "cors-max-age"
	flagTimeoutAPIShutdown = "timeout-api-shutdown"
	flagTimeoutFetch       = "timeout-fetch"
	flagOpenLinks          = "open-links"
)

type apiFlagConfig struct {
	addr string
}

type corsFlagConfig struct {
	enable      bool
	origins     []string
	methods     []string
	credentials bool
	maxAge      string
}

type timeoutFlagConfig struct {
	apiShutdown string
	fetch       string
}

type daemonFlagConfig struct {
	api       apiFlagConfig
	cors      corsFlagConfig
	timeout   timeoutFlagConfig
	openLinks bool
}

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	dev            bool
	config         daemonFlagConfig
	settingsLoader settings.Loader
	fetcher        monitor.Fetcher
	cache          daemon.SnapshotCache
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{
		BaseCmd:        baseCmd,
		settingsLoader: opts.SettingsLoader,
		fetcher:        opts.Fetcher,
		cache:          opts.Cache,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches the steamstat daemon",
		Long: "Launches the steamstat daemon, which monitors Steam service availability in the background, " +
			"sends outage and recovery notifications and serves status via HTTP API",
		RunE: c.run,
	}

	fs := cobraCommand.Flags()
	fs.BoolVar(&c.dev, flagDev, false, "Run the daemon in development-focused mode")
	fs.StringVar(&c.config.api.addr, flagAddr, defaultAddr, "Address for the daemon to bind (not applicable in --dev mode)")

	fs.BoolVar(&c.config.cors.enable, flagCORSEnable, false, "Enable CORS for the API and event stream")
	fs.StringSliceVar(&c.config.cors.origins, flagCORSOrigin, nil, "Allowed CORS origin (repeatable)")
	fs.StringSliceVar(&c.config.cors.methods, flagCORSMethod, nil, "Allowed CORS method (repeatable)")
	fs.BoolVar(&c.config.cors.credentials, flagCORSCredentials, false, "Allow credentials in CORS requests")
	fs.StringVar(&c.config.cors.maxAge, flagCORSMaxAge, "", "CORS preflight cache duration (e.g. 5m)")

	fs.StringVar(&c.config.timeout.apiShutdown, flagTimeoutAPIShutdown, "", "API graceful shutdown timeout (e.g. 5s)")
	fs.StringVar(&c.config.timeout.fetch, flagTimeoutFetch, "", "Status gateway fetch timeout (e.g. 10s)")

	fs.BoolVar(&c.config.openLinks, flagOpenLinks, true, "Open the status page in a browser when a notification is activated")

	cobraCommand.MarkFlagsMutuallyExclusive(flagDev, flagAddr)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.LoggerOr(os.Stderr)
	if err != nil {
		return err
	}

	if err := c.validateFlags(cobraCmd); err != nil {
		return err
	}

	addr := strings.TrimSpace(c.config.api.addr)
	if c.dev {
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	apiOpts, err := c.buildAPIOptions()
	if err != nil {
		return err
	}
	daemonOpts, err := c.buildDaemonOptions(apiOpts)
	if err != nil {
		return err
	}

	deps, err := c.buildDependencies(logger, addr, flags.SettingsFile)
	if err != nil {
		return fmt.Errorf("error configuring steamstat daemon: %w", err)
	}

	d, err := daemon.NewDaemon(deps, daemonOpts...)
	if err != nil {
		return fmt.Errorf("failed to create steamstat daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	if c.dev {
		c.printDevBanner(cobraCmd.OutOrStdout(), logger, addr)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("daemon exited with error", "error", err)
		return err // Propagate daemon failure.
	}
}

// buildDependencies creates the settings provider, status client and snapshot cache,
// preferring collaborators supplied through command options.
func (c *DaemonCmd) buildDependencies(logger hclog.Logger, addr string, settingsPath string) (daemon.Dependencies, error) {
	provider, err := settings.NewFileProvider(c.settingsLoader, settingsPath)
	if err != nil {
		return daemon.Dependencies{}, err
	}

	fetcher := c.fetcher
	if fetcher == nil {
		client, err := status.NewClient(logger)
		if err != nil {
			return daemon.Dependencies{}, err
		}
		fetcher = client
	}

	snapshotCache := c.cache
	if snapshotCache == nil {
		fileCache, err := cache.NewCache(logger)
		if err != nil {
			return daemon.Dependencies{}, err
		}
		snapshotCache = fileCache
	}

	return daemon.NewDependencies(logger, addr, provider, fetcher, snapshotCache)
}

// validateFlags checks durations and flag combinations before anything is started.
func (c *DaemonCmd) validateFlags(cobraCmd *cobra.Command) error {
	durations := []struct {
		flag  string
		value string
	}{
		{flagCORSMaxAge, c.config.cors.maxAge},
		{flagTimeoutAPIShutdown, c.config.timeout.apiShutdown},
		{flagTimeoutFetch, c.config.timeout.fetch},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid --%s duration: %w", d.flag, err)
		}
	}

	if cobraCmd != nil && !c.config.cors.enable {
		for _, name := range []string{flagCORSOrigin, flagCORSMethod, flagCORSCredentials, flagCORSMaxAge} {
			if cobraCmd.Flags().Changed(name) {
				return fmt.Errorf("--%s requires --%s", name, flagCORSEnable)
			}
		}
	}

	return nil
}

// buildAPIOptions converts flag values into API server options.
func (c *DaemonCmd) buildAPIOptions() ([]daemon.APIOption, error) {
	var opts []daemon.APIOption

	if c.config.cors.enable {
		opts = append(opts,
			daemon.WithCORSEnabled(true),
			daemon.WithCORSAllowOrigins(c.config.cors.origins),
			daemon.WithCORSAllowCredentials(c.config.cors.credentials),
		)
		if len(c.config.cors.methods) > 0 {
			opts = append(opts, daemon.WithCORSAllowMethods(c.config.cors.methods))
		}
		if c.config.cors.maxAge != "" {
			maxAge, err := time.ParseDuration(c.config.cors.maxAge)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", flagCORSMaxAge, err)
			}
			opts = append(opts, daemon.WithCORSMaxAge(maxAge))
		}
	}

	if c.config.timeout.apiShutdown != "" {
		timeout, err := time.ParseDuration(c.config.timeout.apiShutdown)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", flagTimeoutAPIShutdown, err)
		}
		opts = append(opts, daemon.WithShutdownTimeout(timeout))
	}

	return opts, nil
}

// buildDaemonOptions converts flag values into daemon options.
func (c *DaemonCmd) buildDaemonOptions(apiOpts []daemon.APIOption) ([]daemon.Option, error) {
	opts := []daemon.Option{daemon.WithAPIOptions(apiOpts...)}

	if c.config.timeout.fetch != "" {
		timeout, err := time.ParseDuration(c.config.timeout.fetch)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", flagTimeoutFetch, err)
		}
		opts = append(opts, daemon.WithMonitorOptions(monitor.WithFetchTimeout(timeout)))
	}

	if !c.config.openLinks {
		opts = append(opts, daemon.WithOpener(nil))
	}

	return opts, nil
}

// formatConfigInfo lists the flag values that differ from their defaults.
// addr is the runtime address, which differs from the flag in dev mode.
func (c *DaemonCmd) formatConfigInfo(addr string) string {
	var b strings.Builder

	if c.dev || strings.TrimSpace(c.config.api.addr) != defaultAddr {
		_, _ = fmt.Fprintf(&b, "  API address:\t%s\n", addr)
	}

	if c.config.cors.enable {
		_, _ = fmt.Fprintf(&b, "  CORS enabled:\ttrue (origins: %s)\n", strings.Join(c.config.cors.origins, ", "))
		if len(c.config.cors.methods) > 0 {
			_, _ = fmt.Fprintf(&b, "  CORS methods:\t%s\n", strings.Join(c.config.cors.methods, ", "))
		}
		if c.config.cors.credentials {
			_, _ = fmt.Fprintf(&b, "  CORS credentials:\ttrue\n")
		}
		if c.config.cors.maxAge != "" {
			_, _ = fmt.Fprintf(&b, "  CORS max age:\t%s\n", c.config.cors.maxAge)
		}
	}

	if c.config.timeout.apiShutdown != "" {
		_, _ = fmt.Fprintf(&b, "  API shutdown timeout:\t%s\n", c.config.timeout.apiShutdown)
	}
	if c.config.timeout.fetch != "" {
		_, _ = fmt.Fprintf(&b, "  Fetch timeout:\t%s\n", c.config.timeout.fetch)
	}

	return b.String()
}

func (c *DaemonCmd) printDevBanner(w io.Writer, logger hclog.Logger, addr string) {
	logger.Info("Launching daemon in dev mode", "addr", addr)

	banner := fmt.Sprintf("steamstat daemon running in 'dev' mode.\n\n"+
		"  Local API:\thttp://%s/api/v1\n"+
		"  OpenAPI UI:\thttp://%s/docs\n"+
		"  Events:\tws://%s%s\n"+
		"  Metrics:\thttp://%s%s\n"+
		"  Settings file:\t%s\n",
		addr, addr, addr, daemon.EventsPath, addr, daemon.MetricsPath, flags.SettingsFile)

	if flags.LogPath != "" {
		banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
	}

	banner += c.formatConfigInfo(addr)
	banner += "\nPress Ctrl+C to stop.\n\n"

	_, _ = fmt.Fprint(w, banner)
}
