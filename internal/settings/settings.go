package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/steamstat/steamstat/internal/files"
	"github.com/steamstat/steamstat/internal/perms"
)

// Init creates a settings file containing the defaults.
func (d *DefaultLoader) Init(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("settings path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f := &File{filePath: path}
	if err := f.Reset(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load reads the settings file at path.
// A missing file is reported wrapping fs.ErrNotExist so callers can fall back to defaults.
func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrSettingsLoadFailed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(
				"%w: settings file cannot be found, run: 'steamstat init': %w",
				ErrSettingsLoadFailed,
				err,
			)
		}
		return nil, fmt.Errorf("%w: failed to read settings file (%s): %w", ErrSettingsLoadFailed, path, err)
	}

	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode settings from file (%s): %w", ErrSettingsLoadFailed, path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid settings file (%s): %w", ErrSettingsLoadFailed, path, err)
	}

	f.filePath = path

	return &f, nil
}

// Settings resolves the file against Defaults. Missing or empty values never override a default.
func (f *File) Settings() Settings {
	s := Defaults()

	mergeString(&s.GatewayURL, f.GatewayURL)
	mergeString(&s.GatewayAPIKey, f.GatewayAPIKey)
	mergeString(&s.StatusPageURL, f.StatusPageURL)
	mergeString(&s.NATSURL, f.NATSURL)
	mergeString(&s.NATSSubject, f.NATSSubject)

	if f.RefreshIntervalSeconds != nil {
		s.RefreshIntervalSeconds = *f.RefreshIntervalSeconds
	}

	mergeBool(&s.ShowHistory, f.ShowHistory)
	mergeBool(&s.ShowRegions, f.ShowRegions)
	mergeBool(&s.ShowTrendingGames, f.ShowTrendingGames)
	mergeBool(&s.EnableNotifications, f.EnableNotifications)
	mergeBool(&s.EnableNotificationAntiFlood, f.EnableNotificationAntiFlood)

	return s
}

// Get returns the resolved value for key.
func (f *File) Get(key Key) (string, error) {
	spec, ok := keySpecs[key]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidKey, key)
	}
	return spec.get(f.Settings()), nil
}

// Set updates a single key and saves the file. Unknown keys are rejected.
func (f *File) Set(key Key, value string) error {
	spec, ok := keySpecs[key]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrInvalidKey, key)
	}

	if err := spec.set(f, value); err != nil {
		return err
	}

	if err := f.validate(); err != nil {
		return err
	}

	if err := f.save(); err != nil {
		return fmt.Errorf("failed to save updated settings: %w", err)
	}

	return nil
}

// Reset writes every default explicitly, so the file documents the available settings.
func (f *File) Reset() error {
	d := Defaults()

	*f = File{
		GatewayURL:                  &d.GatewayURL,
		GatewayAPIKey:               &d.GatewayAPIKey,
		StatusPageURL:               &d.StatusPageURL,
		RefreshIntervalSeconds:      &d.RefreshIntervalSeconds,
		ShowHistory:                 &d.ShowHistory,
		ShowRegions:                 &d.ShowRegions,
		ShowTrendingGames:           &d.ShowTrendingGames,
		EnableNotifications:         &d.EnableNotifications,
		EnableNotificationAntiFlood: &d.EnableNotificationAntiFlood,
		NATSURL:                     &d.NATSURL,
		NATSSubject:                 &d.NATSSubject,
		filePath:                    f.filePath,
	}

	return f.save()
}

func (f *File) save() error {
	if f.filePath == "" {
		return fmt.Errorf("settings file path not present")
	}

	// Only directories created here are held to secure permissions, existing ones are left alone.
	dir := filepath.Dir(f.filePath)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := files.EnsureAtLeastSecureDir(dir); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return err
	}

	return files.WriteFileAtomic(f.filePath, buf.Bytes(), perms.SecureFile)
}

// validate checks values that can be set by editing the file directly.
func (f *File) validate() error {
	for key, v := range map[Key]*string{
		KeyGatewayURL:    f.GatewayURL,
		KeyStatusPageURL: f.StatusPageURL,
	} {
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		if err := validateOptionalURL(key, strings.TrimSpace(*v)); err != nil {
			return err
		}
	}

	if f.RefreshIntervalSeconds != nil {
		if err := validateRefreshInterval(*f.RefreshIntervalSeconds); err != nil {
			return err
		}
	}

	return nil
}

func mergeString(dst *string, src *string) {
	if src == nil {
		return
	}
	if v := strings.TrimSpace(*src); v != "" {
		*dst = v
	}
}

func mergeBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
