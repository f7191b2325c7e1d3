package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cache"
	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/cmd/output"
	"github.com/steamstat/steamstat/internal/daemon"
	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/printer"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

const flagCached = "cached"

// StatusCmd should be used to represent the 'status' command.
type StatusCmd struct {
	*cmd.BaseCmd
	format         cmd.OutputFormat
	cached         bool
	timeout        time.Duration
	settingsLoader settings.Loader
	fetcher        monitor.Fetcher
	cache          daemon.SnapshotCache
	now            func() time.Time
}

// NewStatusCmd creates a newly configured (Cobra) command.
func NewStatusCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &StatusCmd{
		BaseCmd:        baseCmd,
		format:         cmd.FormatText,
		settingsLoader: opts.SettingsLoader,
		fetcher:        opts.Fetcher,
		cache:          opts.Cache,
		now:            time.Now,
	}

	cobraCommand := &cobra.Command{
		Use:   "status",
		Short: "Shows the current Steam service status",
		Long: "Fetches the current status from the configured gateway once and prints it. " +
			"Successful fetches are cached, use --cached to print the cached snapshot without contacting the gateway",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	flagSet := cobraCommand.Flags()
	flagSet.Var(
		&c.format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)
	flagSet.BoolVar(&c.cached, flagCached, false, "Print the cached snapshot instead of fetching")
	flagSet.DurationVar(&c.timeout, "timeout", monitor.FetchTimeout, "Timeout for the gateway request")

	return cobraCommand, nil
}

func (c *StatusCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	s, err := c.loadSettings()
	if err != nil {
		return err
	}

	handler, err := cmd.NewOutputHandler[printer.StatusReport](
		c.format,
		cobraCmd.OutOrStdout(),
		printer.NewStatusPrinter(s.ShowRegions, s.ShowHistory, s.ShowTrendingGames),
	)
	if err != nil {
		return err
	}

	report, err := c.report(cobraCmd.Context(), logger, s)
	if err != nil {
		return reportError(handler, err)
	}

	return handler.HandleResult(report)
}

// loadSettings resolves settings, treating a missing settings file as the defaults.
func (c *StatusCmd) loadSettings() (settings.Settings, error) {
	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return settings.Defaults(), nil
		}
		return settings.Settings{}, err
	}

	return m.Settings(), nil
}

func (c *StatusCmd) report(ctx context.Context, logger hclog.Logger, s settings.Settings) (printer.StatusReport, error) {
	if !s.Configured() {
		return printer.StatusReport{}, fmt.Errorf(
			"%w: set %s and %s using 'steamstat config set'",
			errors.ErrNotConfigured,
			settings.KeyGatewayURL,
			settings.KeyGatewayAPIKey,
		)
	}

	snapshotCache, err := c.snapshotCache(logger)
	if err != nil {
		return printer.StatusReport{}, err
	}

	if c.cached {
		snap, cachedAt, err := snapshotCache.Load(s.GatewayURL)
		if err != nil {
			return printer.StatusReport{}, err
		}
		return printer.NewStatusReport(snap, cachedAt, true, c.now()), nil
	}

	fetcher, err := c.statusFetcher(logger)
	if err != nil {
		return printer.StatusReport{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snap, err := fetcher.Fetch(fetchCtx, s.GatewayURL, s.GatewayAPIKey)
	if err != nil {
		return printer.StatusReport{}, err
	}

	if err := snapshotCache.Store(s.GatewayURL, snap); err != nil {
		logger.Warn("Failed to cache snapshot", "error", err)
	}

	now := c.now()

	return printer.NewStatusReport(snap, now, false, now), nil
}

func (c *StatusCmd) statusFetcher(logger hclog.Logger) (monitor.Fetcher, error) {
	if c.fetcher != nil {
		return c.fetcher, nil
	}
	return status.NewClient(logger)
}

func (c *StatusCmd) snapshotCache(logger hclog.Logger) (daemon.SnapshotCache, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	return cache.NewCache(logger)
}

// reportError renders err through the handler and still fails the command,
// so structured output carries the error while the exit code reflects it.
func reportError[T any](handler output.Handler[T], err error) error {
	if herr := handler.HandleError(err); herr != nil && herr != err {
		return herr
	}
	return err
}
