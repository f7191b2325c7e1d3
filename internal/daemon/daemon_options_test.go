package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
)

type nopOpener struct{}

func (nopOpener) Open(string) error { return nil }

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()

	assert.Nil(t, opts.APIOptions) // No API options by default - NewAPIServer will apply its own defaults
	assert.Nil(t, opts.MonitorOptions)
	assert.Equal(t, notify.DefaultInboxSize, opts.InboxSize)
	assert.Equal(t, notify.BrowserOpener{}, opts.Opener)
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	t.Run("default options", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions()

		require.NoError(t, err)
		assert.Equal(t, defaultOptions(), opts)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(nil, WithInboxSize(3), nil)

		require.NoError(t, err)
		assert.Equal(t, 3, opts.InboxSize)
	})

	t.Run("with API options", func(t *testing.T) {
		t.Parallel()

		apiOptions := []APIOption{
			WithCORSEnabled(true),
			WithCORSAllowOrigins([]string{"http://localhost:3000"}),
			WithCORSMaxAge(10 * time.Minute),
			WithShutdownTimeout(10 * time.Second),
		}
		opts, err := NewOptions(WithAPIOptions(apiOptions...))

		require.NoError(t, err)
		require.Len(t, opts.APIOptions, 4)

		// Verify the options work by creating an APIOptions struct
		resultAPIOptions, err := NewAPIOptions(opts.APIOptions...)
		require.NoError(t, err)
		assert.True(t, resultAPIOptions.CORS.Enabled)
		assert.ElementsMatch(t, []string{"http://localhost:3000"}, resultAPIOptions.CORS.AllowOrigins)
		assert.Equal(t, 10*time.Minute, resultAPIOptions.CORS.MaxAge)
		assert.Equal(t, 10*time.Second, resultAPIOptions.ShutdownTimeout)
	})

	t.Run("with monitor options", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(WithMonitorOptions(
			monitor.WithInterval(5*time.Second),
			monitor.WithFetchTimeout(time.Second),
		))

		require.NoError(t, err)
		require.Len(t, opts.MonitorOptions, 2)

		monitorOpts, err := monitor.NewOptions(opts.MonitorOptions...)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, monitorOpts.Interval)
		assert.Equal(t, time.Second, monitorOpts.FetchTimeout)
	})

	t.Run("with opener", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(WithOpener(nopOpener{}))
		require.NoError(t, err)
		assert.Equal(t, nopOpener{}, opts.Opener)

		opts, err = NewOptions(WithOpener(nil))
		require.NoError(t, err)
		assert.Nil(t, opts.Opener)
	})

	t.Run("options override in order", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(
			WithInboxSize(5),
			WithInboxSize(10), // This should win
		)

		require.NoError(t, err)
		assert.Equal(t, 10, opts.InboxSize)
	})
}

func TestWithInboxSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr string
	}{
		{
			name: "valid size",
			size: 10,
		},
		{
			name:    "zero size fails",
			size:    0,
			wantErr: "inbox size must be positive, got 0",
		},
		{
			name:    "negative size fails",
			size:    -1,
			wantErr: "inbox size must be positive, got -1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(WithInboxSize(tc.size))

			if tc.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tc.wantErr)
			}
		})
	}
}
