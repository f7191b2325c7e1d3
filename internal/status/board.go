package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/steamstat/steamstat/internal/errors"
)

// Duration renders as a Go duration string in JSON.
type Duration time.Duration

// MarshalJSON encodes the duration as a string such as "250ms".
func (d *Duration) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	s := fmt.Sprintf(`"%s"`, time.Duration(*d).String())
	return []byte(s), nil
}

// Reading is what the board knows about the gateway at a point in time.
type Reading struct {
	// Snapshot is the most recent successfully fetched snapshot, nil if none yet.
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// Latency of the most recent fetch attempt.
	Latency *Duration `json:"latency,omitempty"`

	// LastChecked is when the most recent fetch attempt finished.
	LastChecked *time.Time `json:"lastChecked,omitempty"`

	// LastSuccessful is when Snapshot was fetched.
	LastSuccessful *time.Time `json:"lastSuccessful,omitempty"`

	// LastError is the error of the most recent fetch attempt, empty after a success.
	LastError string `json:"lastError,omitempty"`
}

// Board holds the last fetched snapshot for display surfaces.
// It is written by every fetch path (monitor ticks and manual refreshes) and never feeds back into the monitor.
type Board struct {
	mu      sync.RWMutex
	reading Reading
	now     func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Seed populates an empty board with a previously cached snapshot.
// It does nothing once a fetch has been recorded.
func (b *Board) Seed(snap *Snapshot, fetchedAt time.Time) {
	if snap == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.reading.LastChecked != nil || b.reading.Snapshot != nil {
		return
	}

	at := fetchedAt.UTC()
	b.reading.Snapshot = snap
	b.reading.LastSuccessful = &at
}

// Succeeded records a successful fetch.
func (b *Board) Succeeded(snap *Snapshot, latency time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	d := Duration(latency)

	b.reading = Reading{
		Snapshot:       snap,
		Latency:        &d,
		LastChecked:    &now,
		LastSuccessful: &now,
	}
}

// Failed records a failed fetch, the previous snapshot is kept.
func (b *Board) Failed(err error, latency time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	d := Duration(latency)

	b.reading.Latency = &d
	b.reading.LastChecked = &now
	if err != nil {
		b.reading.LastError = err.Error()
	}
}

// Reading returns a copy of the current reading.
func (b *Board) Reading() Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.reading
}

// Latest returns the most recent snapshot and when it was fetched.
func (b *Board) Latest() (*Snapshot, time.Time, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.reading.Snapshot == nil || b.reading.LastSuccessful == nil {
		return nil, time.Time{}, errors.ErrNoSnapshot
	}

	return b.reading.Snapshot, *b.reading.LastSuccessful, nil
}
