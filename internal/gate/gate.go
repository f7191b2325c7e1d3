package gate

import (
	"slices"
	"sync"
	"time"
)

// Gate is a sliding-window limiter for user-facing notifications.
// Checking and recording are separate: Allow never records, Record never checks.
// NewGate should be used to create instances of Gate.
type Gate struct {
	mu      sync.Mutex
	window  time.Duration
	ceiling int
	now     func() time.Time

	// sent holds dispatch times in ascending order.
	sent []time.Time
}

// NewGate creates a gate with the given options applied over defaults.
func NewGate(opt ...Option) (*Gate, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Gate{
		window:  opts.Window,
		ceiling: opts.Ceiling,
		now:     opts.Clock,
	}, nil
}

// Allow reports whether a notification may be dispatched now.
// When antiFlood is false every request is allowed and nothing is tracked.
// Otherwise records older than the window are discarded and the request is allowed
// while fewer than the ceiling remain.
func (g *Gate) Allow(antiFlood bool) bool {
	if !antiFlood {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(g.now())

	return len(g.sent) < g.ceiling
}

// Record notes that a notification was dispatched now.
func (g *Gate) Record() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sent = append(g.sent, g.now())
}

// History returns a copy of the recorded dispatch times, oldest first.
func (g *Gate) History() []time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	return slices.Clone(g.sent)
}

// Remaining returns how many notifications may still be dispatched within the current window.
func (g *Gate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(g.now())

	return max(g.ceiling-len(g.sent), 0)
}

// prune drops records from the front of the queue that fall before now-window.
// A record exactly at the window boundary is retained.
func (g *Gate) prune(now time.Time) {
	cutoff := now.Add(-g.window)

	i := 0
	for i < len(g.sent) && g.sent[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		g.sent = slices.Delete(g.sent, 0, i)
	}
}
