package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
)

// FileProvider reads the settings file on every call, so edits made through the CLI or by hand
// take effect on the next monitor tick without a restart.
type FileProvider struct {
	loader Loader
	path   string
}

// NewFileProvider returns a provider reading path with loader.
func NewFileProvider(loader Loader, path string) (*FileProvider, error) {
	if loader == nil || reflect.ValueOf(loader).IsNil() {
		return nil, fmt.Errorf("settings loader cannot be nil")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("settings path cannot be empty")
	}

	return &FileProvider{loader: loader, path: path}, nil
}

// Settings loads and resolves the current settings.
// A missing settings file yields the defaults, which are not configured.
func (p *FileProvider) Settings() (Settings, error) {
	m, err := p.loader.Load(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, err
	}

	return m.Settings(), nil
}

// Path returns the settings file path being read.
func (p *FileProvider) Path() string {
	return p.path
}
