package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/settings"
)

type SetCmd struct {
	*cmd.BaseCmd
	settingsLoader settings.Loader
}

func NewSetCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &SetCmd{
		BaseCmd:        baseCmd,
		settingsLoader: opts.SettingsLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "set <key=value> [key=value ...]",
		Short: "Set setting values",
		Long: `Set one or more settings. An empty value clears the setting so its default applies.

The running daemon picks up changes on its next check, no restart is needed.

Examples:
  steamstat config set gateway_url="https://status.example.com:18888" gateway_api_key=abc123
  steamstat config set refresh_interval_seconds=300
  steamstat config set enable_notification_antiflood=false`,
		RunE: c.run,
		Args: cobra.MinimumNArgs(1),
	}

	return cobraCmd, nil
}

func (c *SetCmd) run(cobraCmd *cobra.Command, args []string) error {
	type assignment struct {
		key   settings.Key
		value string
	}

	// Every argument is parsed before anything is written.
	assignments := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, value, err := parseKeyValue(arg)
		if err != nil {
			return err
		}
		key, err := settings.ParseKey(name)
		if err != nil {
			return err
		}
		assignments = append(assignments, assignment{key: key, value: value})
	}

	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		return err
	}

	for _, a := range assignments {
		if err := m.Set(a.key, a.value); err != nil {
			return err
		}
	}

	for _, a := range assignments {
		_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Setting '%s' updated\n", a.key)
	}

	if !m.Settings().Configured() {
		_, _ = fmt.Fprintf(
			cobraCmd.ErrOrStderr(),
			"⚠ %s and %s are both required before the daemon fetches anything\n",
			settings.KeyGatewayURL,
			settings.KeyGatewayAPIKey,
		)
	}

	return nil
}

func parseKeyValue(keyValue string) (string, string, error) {
	parts := strings.SplitN(keyValue, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid format, expected key=value: %s", keyValue)
	}

	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	// Remove quotes if present
	if len(value) >= 2 &&
		((value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'')) {
		value = value[1 : len(value)-1]
	}

	return key, value, nil
}
