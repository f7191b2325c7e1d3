package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/printer"
	"github.com/steamstat/steamstat/internal/settings"
)

type ListCmd struct {
	*cmd.BaseCmd
	format         cmd.OutputFormat
	showSecrets    bool
	settingsLoader settings.Loader
}

func NewListCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd:        baseCmd,
		format:         cmd.FormatText,
		settingsLoader: opts.SettingsLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists every setting and its resolved value",
		Long:  "Lists every setting and its resolved value, defaults included. Secret values are masked",
		RunE:  c.run,
		Args:  cobra.NoArgs,
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

func (c *ListCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := cmd.NewOutputHandler[printer.SettingEntry](
		c.format,
		cobraCmd.OutOrStdout(),
		printer.NewSettingPrinter(),
	)
	if err != nil {
		return err
	}

	m, err := c.LoadSettings(c.settingsLoader)
	if err != nil {
		return handler.HandleError(err)
	}

	keys := settings.Keys()
	entries := make([]printer.SettingEntry, 0, len(keys))
	for _, key := range keys {
		entry, err := settingEntry(m, key, c.showSecrets)
		if err != nil {
			return handler.HandleError(err)
		}
		entries = append(entries, entry)
	}

	return handler.HandleResults(entries...)
}

// settingEntry reads key from m, masking secrets unless reveal is set.
func settingEntry(m settings.Modifier, key settings.Key, reveal bool) (printer.SettingEntry, error) {
	value, err := m.Get(key)
	if err != nil {
		return printer.SettingEntry{}, err
	}

	entry := printer.SettingEntry{
		Key:    string(key),
		Value:  value,
		Secret: settings.IsSecret(key),
	}
	if !reveal {
		entry = entry.Masked()
	}

	return entry, nil
}
