package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/flags"
	"github.com/steamstat/steamstat/internal/settings"
)

type InitCmd struct {
	*cmd.BaseCmd
	settingsInitializer settings.Initializer
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:             baseCmd,
		settingsInitializer: opts.SettingsInitializer,
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Creates a settings file containing the defaults",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	return cobraCommand, nil
}

func (c *InitCmd) longDescription() string {
	return fmt.Sprintf(
		"Creates a settings file containing the defaults.\n\n"+
			"The gateway URL and API key must be set afterwards, using 'steamstat config set', "+
			"before the daemon fetches anything.\n\n"+
			"The settings file path can be overridden using the `--%s` flag or the `%s` environment variable",
		flags.FlagNameSettingsFile,
		flags.EnvVarSettingsFile,
	)
}

func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	path := flags.SettingsFile

	if _, err := fmt.Fprintf(cobraCmd.OutOrStdout(), "🚀 Initializing settings at: %s\n", path); err != nil {
		return err
	}

	if err := c.settingsInitializer.Init(path); err != nil {
		logger.Error("Settings initialization failed", "error", err)
		return fmt.Errorf("error initializing settings: %w", err)
	}

	if _, err := fmt.Fprintf(
		cobraCmd.OutOrStdout(),
		"✅ Settings file created: %s\n"+
			"   Next: steamstat config set %s=<url> %s=<key>\n",
		path,
		settings.KeyGatewayURL,
		settings.KeyGatewayAPIKey,
	); err != nil {
		return err
	}

	return nil
}
