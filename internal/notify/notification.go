package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OutageTitle   = "Steam Service Outage"
	RecoveryTitle = "Steam Services Restored"
	RecoveryBody  = "All Steam services are now online"

	OutageDuration   = 8000 * time.Millisecond
	RecoveryDuration = 5000 * time.Millisecond
)

const (
	KindOutage   Kind = "outage"
	KindRecovery Kind = "recovery"
)

// Kind identifies which transition a notification announces.
type Kind string

// Badge is the icon shown beside a notification.
type Badge string

const (
	BadgeWarning Badge = "warning"
	BadgeCheck   Badge = "check"
)

// Icon describes how a notification is decorated.
type Icon struct {
	Badge Badge  `json:"badge" yaml:"badge"`
	Color string `json:"color" yaml:"color"`
}

var (
	WarningIcon = Icon{Badge: BadgeWarning, Color: "#ff9800"}
	CheckIcon   = Icon{Badge: BadgeCheck, Color: "#4caf50"}
)

// Notification is a user-facing message about an availability transition.
type Notification struct {
	ID        uuid.UUID `json:"id"        yaml:"id"`
	Kind      Kind      `json:"kind"      yaml:"kind"`
	Title     string    `json:"title"     yaml:"title"`
	Body      string    `json:"body"      yaml:"body"`
	Icon      Icon      `json:"icon"      yaml:"icon"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`

	// Link is the status page opened on activation.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// Duration is how long the notification stays on screen.
	Duration time.Duration `json:"-" yaml:"-"`

	// DurationMs mirrors Duration for JSON consumers.
	DurationMs int64 `json:"durationMs" yaml:"duration_ms"`

	Critical  bool `json:"critical"  yaml:"critical"`
	PlaySound bool `json:"playSound" yaml:"play_sound"`

	// OnActivate runs when the user activates the notification. It may be nil.
	OnActivate func() error `json:"-" yaml:"-"`
}

// NewOutageNotification announces that the named services are not online.
// affected is expected to be sorted.
func NewOutageNotification(affected []string, link string, opener Opener) Notification {
	n := Notification{
		ID:         uuid.New(),
		Kind:       KindOutage,
		Title:      OutageTitle,
		Body:       "Services affected: " + strings.Join(affected, ", "),
		Icon:       WarningIcon,
		CreatedAt:  time.Now().UTC(),
		Link:       link,
		Duration:   OutageDuration,
		DurationMs: OutageDuration.Milliseconds(),
		Critical:   true,
		PlaySound:  true,
	}
	n.OnActivate = openLink(opener, link)

	return n
}

// NewRecoveryNotification announces that every service is online again.
func NewRecoveryNotification(link string, opener Opener) Notification {
	n := Notification{
		ID:         uuid.New(),
		Kind:       KindRecovery,
		Title:      RecoveryTitle,
		Body:       RecoveryBody,
		Icon:       CheckIcon,
		CreatedAt:  time.Now().UTC(),
		Link:       link,
		Duration:   RecoveryDuration,
		DurationMs: RecoveryDuration.Milliseconds(),
		Critical:   false,
		PlaySound:  true,
	}
	n.OnActivate = openLink(opener, link)

	return n
}

func openLink(opener Opener, link string) func() error {
	if opener == nil || strings.TrimSpace(link) == "" {
		return nil
	}
	return func() error {
		return opener.Open(link)
	}
}
