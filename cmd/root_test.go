package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steamstat/steamstat/internal/cmd"
	"github.com/steamstat/steamstat/internal/flags"
)

// NewRootCmd registers the global flags against package level variables, so these tests are not parallel.

func TestNewRootCmd(t *testing.T) {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	require.NoError(t, err)

	require.Equal(t, "steamstat", rootCmd.Name())
	require.Equal(t, cmd.Version(), rootCmd.Version)
	require.True(t, rootCmd.SilenceUsage)

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"init", "daemon", "status", "config"}, names)

	for _, name := range []string{flags.FlagNameSettingsFile, flags.FlagNameLogPath, flags.FlagNameLogLevel} {
		require.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing global flag --%s", name)
	}
}

func TestNewRootCmd_Version(t *testing.T) {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "steamstat version "+cmd.Version())
}
