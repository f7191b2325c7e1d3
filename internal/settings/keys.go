package settings

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Key names a single setting as it appears in the settings file.
type Key string

const (
	KeyGatewayURL                  Key = "gateway_url"
	KeyGatewayAPIKey               Key = "gateway_api_key"
	KeyStatusPageURL               Key = "status_page_url"
	KeyRefreshIntervalSeconds      Key = "refresh_interval_seconds"
	KeyShowHistory                 Key = "show_history"
	KeyShowRegions                 Key = "show_regions"
	KeyShowTrendingGames           Key = "show_trending_games"
	KeyEnableNotifications         Key = "enable_notifications"
	KeyEnableNotificationAntiFlood Key = "enable_notification_antiflood"
	KeyNATSURL                     Key = "nats_url"
	KeyNATSSubject                 Key = "nats_subject"
)

const (
	// MinRefreshIntervalSeconds bounds how often UI clients may poll the gateway.
	MinRefreshIntervalSeconds = 30

	// MaxRefreshIntervalSeconds bounds how stale the UI may become.
	MaxRefreshIntervalSeconds = 3600
)

// Defaults returns the settings used for any value missing or empty in the settings file.
func Defaults() Settings {
	return Settings{
		GatewayURL:                  "",
		GatewayAPIKey:               "",
		StatusPageURL:               "https://steamstatus.schelstraete.org/status",
		RefreshIntervalSeconds:      180,
		ShowHistory:                 true,
		ShowRegions:                 true,
		ShowTrendingGames:           true,
		EnableNotifications:         true,
		EnableNotificationAntiFlood: true,
		NATSURL:                     "",
		NATSSubject:                 "steamstat.notifications",
	}
}

type keySpec struct {
	// get renders the resolved value.
	get func(s Settings) string

	// set parses and stores the value on the file, nil clears it.
	set func(f *File, value string) error

	// secret values are masked by callers that list settings.
	secret bool
}

var keySpecs = map[Key]keySpec{
	KeyGatewayURL: {
		get: func(s Settings) string { return s.GatewayURL },
		set: stringSetter(KeyGatewayURL, func(f *File) **string { return &f.GatewayURL }, validateOptionalURL),
	},
	KeyGatewayAPIKey: {
		get:    func(s Settings) string { return s.GatewayAPIKey },
		set:    stringSetter(KeyGatewayAPIKey, func(f *File) **string { return &f.GatewayAPIKey }, nil),
		secret: true,
	},
	KeyStatusPageURL: {
		get: func(s Settings) string { return s.StatusPageURL },
		set: stringSetter(KeyStatusPageURL, func(f *File) **string { return &f.StatusPageURL }, validateOptionalURL),
	},
	KeyRefreshIntervalSeconds: {
		get: func(s Settings) string { return strconv.Itoa(s.RefreshIntervalSeconds) },
		set: func(f *File, value string) error {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return NewErrInvalidValue(string(KeyRefreshIntervalSeconds), value)
			}
			if err := validateRefreshInterval(n); err != nil {
				return err
			}
			f.RefreshIntervalSeconds = &n
			return nil
		},
	},
	KeyShowHistory: {
		get: func(s Settings) string { return strconv.FormatBool(s.ShowHistory) },
		set: boolSetter(KeyShowHistory, func(f *File) **bool { return &f.ShowHistory }),
	},
	KeyShowRegions: {
		get: func(s Settings) string { return strconv.FormatBool(s.ShowRegions) },
		set: boolSetter(KeyShowRegions, func(f *File) **bool { return &f.ShowRegions }),
	},
	KeyShowTrendingGames: {
		get: func(s Settings) string { return strconv.FormatBool(s.ShowTrendingGames) },
		set: boolSetter(KeyShowTrendingGames, func(f *File) **bool { return &f.ShowTrendingGames }),
	},
	KeyEnableNotifications: {
		get: func(s Settings) string { return strconv.FormatBool(s.EnableNotifications) },
		set: boolSetter(KeyEnableNotifications, func(f *File) **bool { return &f.EnableNotifications }),
	},
	KeyEnableNotificationAntiFlood: {
		get: func(s Settings) string { return strconv.FormatBool(s.EnableNotificationAntiFlood) },
		set: boolSetter(KeyEnableNotificationAntiFlood, func(f *File) **bool { return &f.EnableNotificationAntiFlood }),
	},
	KeyNATSURL: {
		get: func(s Settings) string { return s.NATSURL },
		set: stringSetter(KeyNATSURL, func(f *File) **string { return &f.NATSURL }, nil),
	},
	KeyNATSSubject: {
		get: func(s Settings) string { return s.NATSSubject },
		set: stringSetter(KeyNATSSubject, func(f *File) **string { return &f.NATSSubject }, nil),
	},
}

// Keys returns every known setting key in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(keySpecs))
	for k := range keySpecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ParseKey validates a user supplied key name.
func ParseKey(name string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := keySpecs[k]; !ok {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidKey, name)
	}
	return k, nil
}

// IsSecret reports whether the value of key should be masked when displayed.
func IsSecret(key Key) bool {
	return keySpecs[key].secret
}

// stringSetter stores a trimmed string, clearing the value when empty so the default applies.
func stringSetter(key Key, field func(f *File) **string, validate func(key Key, v string) error) func(*File, string) error {
	return func(f *File, value string) error {
		v := strings.TrimSpace(value)
		if v == "" {
			*field(f) = nil
			return nil
		}
		if validate != nil {
			if err := validate(key, v); err != nil {
				return err
			}
		}
		*field(f) = &v
		return nil
	}
}

func boolSetter(key Key, field func(f *File) **bool) func(*File, string) error {
	return func(f *File, value string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return NewErrInvalidValue(string(key), value)
		}
		*field(f) = &b
		return nil
	}
}

func validateOptionalURL(key Key, v string) error {
	u, err := url.Parse(v)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewErrInvalidValue(string(key), v)
	}
	return nil
}

func validateRefreshInterval(n int) error {
	if n < MinRefreshIntervalSeconds || n > MaxRefreshIntervalSeconds {
		return fmt.Errorf(
			"%w: '%s' must be between %d and %d (value: '%d')",
			ErrInvalidValue,
			KeyRefreshIntervalSeconds,
			MinRefreshIntervalSeconds,
			MaxRefreshIntervalSeconds,
			n,
		)
	}
	return nil
}
