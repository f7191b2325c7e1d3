package flags

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/steamstat/steamstat/internal/files"
)

func TestFlags_InitSettingsFile_EnvVars(t *testing.T) {
	t.Setenv(files.EnvVarXDGConfigHome, "/xdg")
	defaultPath := filepath.Join("/xdg", files.AppDirName(), DefaultSettingsFileName)

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /custom/path/settings.toml  ",
			expected: "/custom/path/settings.toml",
		},
		{
			name:     "env var missing",
			value:    "",
			expected: defaultPath,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: defaultPath,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarSettingsFile, tc.value)
			t.Cleanup(func() {
				SettingsFile = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initSettingsFile(fs)

			require.Equal(t, tc.expected, SettingsFile)
			flag := fs.Lookup(FlagNameSettingsFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestFlags_InitLogger_EnvVars(t *testing.T) {
	t.Setenv(EnvVarLogPath, " /tmp/steamstat.log ")
	t.Setenv(EnvVarLogLevel, "DEBUG")
	t.Cleanup(func() {
		LogPath = ""
		LogLevel = ""
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	initLogger(fs)

	require.Equal(t, "/tmp/steamstat.log", LogPath)
	require.Equal(t, "debug", LogLevel)
}

func TestFlags_FlagOverridesEnv(t *testing.T) {
	t.Setenv(EnvVarSettingsFile, "/from/env.toml")
	t.Cleanup(func() {
		SettingsFile = ""
		LogPath = ""
		LogLevel = ""
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)

	require.NoError(t, fs.Parse([]string{"--settings-file", "/from/flag.toml", "--log-level", "warn"}))
	require.Equal(t, "/from/flag.toml", SettingsFile)
	require.Equal(t, "warn", LogLevel)
}
