package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Dispatcher delivers a notification to the user or another system.
// Implementations should return promptly; delivery is fire-and-forget from the caller's perspective.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, n Notification) error

func (f DispatcherFunc) Dispatch(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Fanout dispatches to every dispatcher in order, continuing past failures.
type Fanout []Dispatcher

// Dispatch delivers n to every dispatcher and joins their errors.
// A panicking dispatcher is reported as an error and does not prevent delivery to the others.
func (f Fanout) Dispatch(ctx context.Context, n Notification) error {
	var errs []error
	for _, d := range f {
		if d == nil {
			continue
		}
		if err := SafeDispatch(ctx, d, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SafeDispatch calls d.Dispatch, converting a panic into an error.
func SafeDispatch(ctx context.Context, d Dispatcher, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification dispatcher panicked: %v", r)
		}
	}()

	return d.Dispatch(ctx, n)
}

// LogDispatcher writes notifications to a logger.
type LogDispatcher struct {
	logger hclog.Logger
}

func NewLogDispatcher(logger hclog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.Named("notify")}
}

func (l *LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	level := hclog.Info
	if n.Critical {
		level = hclog.Warn
	}

	l.logger.Log(level, n.Title, "id", n.ID, "kind", n.Kind, "body", n.Body, "link", n.Link)

	return nil
}
