package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/flags"
	"github.com/steamstat/steamstat/internal/perms"
	"github.com/steamstat/steamstat/internal/settings"
)

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the command logger, configured from flags and environment.
// Output is discarded unless a log path is set.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	return c.LoggerOr(io.Discard)
}

// LoggerOr returns the command logger, writing to fallback when no log path is set.
func (c *BaseCmd) LoggerOr(fallback io.Writer) (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	output := fallback
	if logPath := strings.TrimSpace(flags.LogPath); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "steamstat",
		Level:  hclog.LevelFromString(LogLevel(flags.LogLevel)),
		Output: output,
	})

	return c.logger, nil
}

// LoadSettings loads the settings file named by the --settings-file flag.
func (c *BaseCmd) LoadSettings(loader settings.Loader) (settings.Modifier, error) {
	m, err := loader.Load(flags.SettingsFile)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RequireTogether returns an error unless either all or none of the named flags were set.
func (c *BaseCmd) RequireTogether(cmd *cobra.Command, flagNames ...string) error {
	set := 0
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			set++
		}
	}

	if set == 0 || set == len(flagNames) {
		return nil
	}

	names := slices.Clone(flagNames)
	slices.Sort(names)

	return fmt.Errorf("flags must be provided together or not at all: (%s)", strings.Join(names, ", "))
}

// LogLevel normalizes a log level name, falling back to the default for unknown values.
func LogLevel(lvl string) string {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	switch lvl {
	case "trace", "debug", "info", "warn", "error", "off":
		return lvl
	default:
		return flags.DefaultLogLevel
	}
}
