package cmd

import (
	"github.com/spf13/cobra"

	"github.com/steamstat/steamstat/cmd/config"
	"github.com/steamstat/steamstat/internal/cmd"
	cmdopts "github.com/steamstat/steamstat/internal/cmd/options"
	"github.com/steamstat/steamstat/internal/flags"
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the root command with every sub-command attached.
// Options are passed through to each sub-command.
func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "steamstat <command> [args]",
		Short:         "Monitors Steam service availability",
		Long:          c.longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,    // init
		NewDaemonCmd,  // daemon
		NewStatusCmd,  // status
		config.NewCmd, // config
	}

	for _, fn := range fns {
		tempCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'steamstat' CLI watches a Steam status gateway in the background,
notifies when core services go down or come back, and reports the current status on demand.`
}
