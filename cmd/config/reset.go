package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/settings"
)

type ResetCmd struct {
	*cmd.BaseCmd
	settingsLoader settings.Loader
}

func NewResetCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ResetCmd{
		BaseCmd:        baseCmd,
		settingsLoader: opts.SettingsLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restores every setting to its default",
		Long:  "Restores every setting to its default. The gateway URL and API key are cleared",
		RunE:  c.run,
		Args:  cobra.NoArgs,
	}

	return cobraCmd, nil
}

func (c *ResetCmd) run(cobraCmd *cobra.Command, _ []string) error {
	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		return err
	}

	if err := m.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	_, _ = fmt.Fprintln(cobraCmd.OutOrStdout(), "✓ Settings reset to defaults")

	return nil
}
