package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/printer"
	"github.com/steamstat/steamstat/internal/settings"
)

type GetCmd struct {
	*cmd.BaseCmd
	format         cmd.OutputFormat
	showSecrets    bool
	settingsLoader settings.Loader
}

func NewGetCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &GetCmd{
		BaseCmd:        baseCmd,
		format:         cmd.FormatText,
		settingsLoader: opts.SettingsLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a setting value",
		Long: `Get the resolved value of a single setting, defaults included.

Examples:
  steamstat config get gateway_url
  steamstat config get refresh_interval_seconds
  steamstat config get gateway_api_key --show-secrets`,
		RunE: c.run,
		Args: cobra.ExactArgs(1),
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)
	cobraCmd.Flags().BoolVar(&c.showSecrets, flagShowSecrets, false, "Print secret values in clear text")

	return cobraCmd, nil
}

func (c *GetCmd) run(cobraCmd *cobra.Command, args []string) error {
	key, err := settings.ParseKey(args[0])
	if err != nil {
		return err
	}

	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		return err
	}

	entry, err := settingEntry(m, key, c.showSecrets)
	if err != nil {
		return err
	}

	// Plain text prints the bare value so it can be used in scripts.
	if c.format == cmd.FormatText {
		_, err := fmt.Fprintln(cobraCmd.OutOrStdout(), entry.Value)
		return err
	}

	handler, err := cmd.NewOutputHandler[printer.SettingEntry](c.format, cobraCmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}

	return handler.HandleResult(entry)
}
