package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/steamstat/steamstat/internal/errors"
)

// DefaultInboxSize is the number of notifications retained for activation.
const DefaultInboxSize = 50

// Inbox retains the most recent notifications so they can be listed and activated later.
// Once full, the oldest notification is evicted.
type Inbox struct {
	mu    sync.RWMutex
	size  int
	order []uuid.UUID
	items map[uuid.UUID]Notification
}

func NewInbox(size int) (*Inbox, error) {
	if size <= 0 {
		return nil, fmt.Errorf("inbox size must be positive, got %d", size)
	}

	return &Inbox{
		size:  size,
		items: make(map[uuid.UUID]Notification, size),
	}, nil
}

// Dispatch stores the notification.
func (i *Inbox) Dispatch(_ context.Context, n Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.items[n.ID]; !ok {
		i.order = append(i.order, n.ID)
	}
	i.items[n.ID] = n

	for len(i.order) > i.size {
		delete(i.items, i.order[0])
		i.order = slices.Delete(i.order, 0, 1)
	}

	return nil
}

// List returns the retained notifications, newest first.
func (i *Inbox) List() []Notification {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]Notification, 0, len(i.order))
	for idx := len(i.order) - 1; idx >= 0; idx-- {
		out = append(out, i.items[i.order[idx]])
	}

	return out
}

// Get returns a retained notification.
func (i *Inbox) Get(id uuid.UUID) (Notification, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n, ok := i.items[id]
	if !ok {
		return Notification{}, fmt.Errorf("%w: %s", errors.ErrNotificationNotFound, id)
	}

	return n, nil
}

// Activate runs the activation action of a retained notification.
func (i *Inbox) Activate(id uuid.UUID) (Notification, error) {
	n, err := i.Get(id)
	if err != nil {
		return Notification{}, err
	}

	if n.OnActivate == nil {
		return n, nil
	}

	if err := n.OnActivate(); err != nil {
		return n, fmt.Errorf("%w: %w", errors.ErrActivationFailed, err)
	}

	return n, nil
}
