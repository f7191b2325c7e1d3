package settings

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidValue       = errors.New("setting value invalid")
	ErrInvalidKey         = errors.New("setting key invalid")
	ErrSettingsLoadFailed = errors.New("failed to load settings")
)

// NewErrInvalidValue returns an error for an invalid setting value.
func NewErrInvalidValue(key string, value string) error {
	return fmt.Errorf("%w: '%s' (value: '%s')", ErrInvalidValue, key, value)
}
