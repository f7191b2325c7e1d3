package config

import (
	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/internal/cmd"
	"github.com/steamstat/steamstat/internal/cmd/options"
)

const flagShowSecrets = "show-secrets"

func NewCmd(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error) {
	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Manages steamstat settings",
		Long: "Manages the settings file read by the daemon and the status command, " +
			"including the status gateway, display toggles and notification switches",
	}

	// Sub-commands for: steamstat config
	fns := []func(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error){
		NewListCmd,     // list
		NewGetCmd,      // get
		NewSetCmd,      // set
		NewResetCmd,    // reset
		NewValidateCmd, // validate
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		cobraCmd.AddCommand(tempCmd)
	}

	return cobraCmd, nil
}
