package options

import (
	"fmt"
	"reflect"

	"github.com/steamstat/steamstat/internal/daemon"
	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/settings"
)

type CmdOption func(*CmdOptions) error

// CmdOptions holds the collaborators shared by commands.
// Fetcher and Cache are built from the command logger when left nil.
type CmdOptions struct {
	SettingsLoader      settings.Loader
	SettingsInitializer settings.Initializer
	Fetcher             monitor.Fetcher
	Cache               daemon.SnapshotCache
}

func defaultOptions() CmdOptions {
	loader := &settings.DefaultLoader{}
	return CmdOptions{
		SettingsLoader:      loader,
		SettingsInitializer: loader,
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

func WithSettingsLoader(l settings.Loader) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(l) {
			return fmt.Errorf("settings loader cannot be nil")
		}
		o.SettingsLoader = l
		return nil
	}
}

func WithSettingsInitializer(i settings.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(i) {
			return fmt.Errorf("settings initializer cannot be nil")
		}
		o.SettingsInitializer = i
		return nil
	}
}

// WithFetcher replaces the status gateway client.
func WithFetcher(f monitor.Fetcher) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(f) {
			return fmt.Errorf("fetcher cannot be nil")
		}
		o.Fetcher = f
		return nil
	}
}

// WithCache replaces the on-disk snapshot cache.
func WithCache(c daemon.SnapshotCache) CmdOption {
	return func(o *CmdOptions) error {
		if isNil(c) {
			return fmt.Errorf("snapshot cache cannot be nil")
		}
		o.Cache = c
		return nil
	}
}

func isNil(v any) bool {
	return v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
}
