package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/settings"
)

type ValidateCmd struct {
	*cmd.BaseCmd
	settingsLoader settings.Loader
}

func NewValidateCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ValidateCmd{
		BaseCmd:        baseCmd,
		settingsLoader: opts.SettingsLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the settings file",
		Long:  "Validate the settings file and report whether the status gateway is configured",
		RunE:  c.run,
		Args:  cobra.NoArgs,
	}

	return cobraCmd, nil
}

func (c *ValidateCmd) run(cobraCmd *cobra.Command, _ []string) error {
	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		_, _ = fmt.Fprintf(cobraCmd.ErrOrStderr(), "✗ Settings validation failed: %v\n", err)
		return err
	}

	_, _ = fmt.Fprintln(cobraCmd.OutOrStdout(), "✓ Settings are valid")

	if !m.Settings().Configured() {
		_, _ = fmt.Fprintf(
			cobraCmd.OutOrStdout(),
			"⚠ Gateway not configured, set %s and %s\n",
			settings.KeyGatewayURL,
			settings.KeyGatewayAPIKey,
		)
	}

	return nil
}
