package flags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/steamstat/steamstat/internal/files"
)

const (
	// Env vars
	EnvVarSettingsFile = "STEAMSTAT_SETTINGS_FILE"
	EnvVarLogPath      = "STEAMSTAT_LOG_PATH"
	EnvVarLogLevel     = "STEAMSTAT_LOG_LEVEL"

	// Defaults
	DefaultSettingsFileName = "settings.toml"
	DefaultLogPath          = ""
	DefaultLogLevel         = "info"

	// Flag names
	FlagNameSettingsFile = "settings-file"
	FlagNameLogPath      = "log-path"
	FlagNameLogLevel     = "log-level"
)

var (
	SettingsFile string
	LogPath      string
	LogLevel     string
)

func InitFlags(fs *pflag.FlagSet) {
	initSettingsFile(fs)
	initLogger(fs)
}

// DefaultSettingsFile returns the settings file path used when neither the flag nor the env var is set.
// It lives in the user's XDG config directory, or the working directory if that cannot be determined.
func DefaultSettingsFile() string {
	dir, err := files.UserSpecificConfigDir()
	if err != nil {
		return DefaultSettingsFileName
	}
	return filepath.Join(dir, DefaultSettingsFileName)
}

func initSettingsFile(fs *pflag.FlagSet) {
	if SettingsFile == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarSettingsFile)); env != "" {
			SettingsFile = env
		} else {
			SettingsFile = DefaultSettingsFile()
		}
	}
	fs.StringVar(&SettingsFile, FlagNameSettingsFile, SettingsFile, "path to settings file")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogPath)); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for steamstat logs")
}
