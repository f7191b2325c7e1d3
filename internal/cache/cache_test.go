package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/perms"
	"github.com/steamstat/steamstat/internal/status"
)

const testGateway = "https://gateway.example.com"

func testSnapshot() *status.Snapshot {
	return &status.Snapshot{
		Online: 31_000_000,
		Services: map[string]status.Service{
			"store":     {Status: status.ServiceOnline, ResponseTimeMs: 120},
			"community": {Status: status.ServiceDegraded, ResponseTimeMs: 900},
		},
		Timestamp: "2026-10-19T10:00:00Z",
	}
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func TestCache_New(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	logger := hclog.NewNullLogger()

	tc := []struct {
		name      string
		dir       string
		enabled   bool
		expectDir bool
	}{
		{
			name:      "creates cache directory when caching is enabled",
			dir:       filepath.Join(tempDir, "enabled"),
			enabled:   true,
			expectDir: true,
		},
		{
			name:      "does not create cache directory when caching is disabled",
			dir:       filepath.Join(tempDir, "disabled"),
			enabled:   false,
			expectDir: false,
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewCache(logger, WithDirectory(testCase.dir), WithCaching(testCase.enabled))
			require.NoError(t, err)
			require.NotNil(t, c)

			info, err := os.Stat(testCase.dir)
			if !testCase.expectDir {
				require.True(t, os.IsNotExist(err))
				return
			}

			require.NoError(t, err)
			require.True(t, info.IsDir())
			require.Equal(t, perms.RegularDir, info.Mode().Perm())
		})
	}
}

func TestCache_StoreLoad(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	c, err := NewCache(hclog.NewNullLogger(), WithDirectory(t.TempDir()), WithClock(clk.Now))
	require.NoError(t, err)

	snap := testSnapshot()
	require.NoError(t, c.Store(testGateway, snap))

	info, err := os.Stat(c.Path(testGateway))
	require.NoError(t, err)
	require.Equal(t, perms.RegularFile, info.Mode().Perm())

	got, cachedAt, err := c.Load(testGateway)
	require.NoError(t, err)
	require.Equal(t, snap, got)
	require.True(t, clk.now.Equal(cachedAt))
}

func TestCache_PathPerGateway(t *testing.T) {
	t.Parallel()

	c, err := NewCache(hclog.NewNullLogger(), WithDirectory(t.TempDir()))
	require.NoError(t, err)

	require.Equal(t, c.Path(testGateway), c.Path("  "+testGateway+" "))
	require.NotEqual(t, c.Path(testGateway), c.Path("https://other.example.com"))
	require.Equal(t, ".json", filepath.Ext(c.Path(testGateway)))

	require.NoError(t, c.Store(testGateway, testSnapshot()))
	_, _, err = c.Load("https://other.example.com")
	require.ErrorIs(t, err, errors.ErrNoSnapshot)
}

func TestCache_Load(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name    string
		opts    []Option
		prepare func(t *testing.T, c *Cache, clk *clock)
	}{
		{
			name: "missing file",
		},
		{
			name: "expired entry",
			opts: []Option{WithTTL(time.Minute)},
			prepare: func(t *testing.T, c *Cache, clk *clock) {
				require.NoError(t, c.Store(testGateway, testSnapshot()))
				clk.now = clk.now.Add(time.Minute + time.Second)
			},
		},
		{
			name: "corrupt file",
			prepare: func(t *testing.T, c *Cache, _ *clock) {
				require.NoError(t, os.WriteFile(c.Path(testGateway), []byte("{not json"), perms.SecureFile))
			},
		},
		{
			name: "entry without data",
			prepare: func(t *testing.T, c *Cache, _ *clock) {
				require.NoError(t, os.WriteFile(c.Path(testGateway), []byte(`{"cachedAt":1}`), perms.SecureFile))
			},
		},
		{
			name: "caching disabled",
			opts: []Option{WithCaching(false)},
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			clk := &clock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
			opts := append([]Option{WithDirectory(t.TempDir()), WithClock(clk.Now)}, testCase.opts...)
			c, err := NewCache(hclog.NewNullLogger(), opts...)
			require.NoError(t, err)

			if testCase.prepare != nil {
				testCase.prepare(t, c, clk)
			}

			snap, cachedAt, err := c.Load(testGateway)
			require.ErrorIs(t, err, errors.ErrNoSnapshot)
			require.Nil(t, snap)
			require.True(t, cachedAt.IsZero())
		})
	}
}

func TestCache_WithinTTL(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	c, err := NewCache(hclog.NewNullLogger(), WithDirectory(t.TempDir()), WithTTL(time.Hour), WithClock(clk.Now))
	require.NoError(t, err)

	require.NoError(t, c.Store(testGateway, testSnapshot()))
	clk.now = clk.now.Add(time.Hour)

	_, _, err = c.Load(testGateway)
	require.NoError(t, err)
}

func TestCache_StoreDisabled(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewCache(hclog.NewNullLogger(), WithDirectory(dir), WithCaching(false))
	require.NoError(t, err)

	require.NoError(t, c.Store(testGateway, testSnapshot()))

	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestCache_StoreNil(t *testing.T) {
	t.Parallel()

	c, err := NewCache(hclog.NewNullLogger(), WithDirectory(t.TempDir()))
	require.NoError(t, err)

	require.EqualError(t, c.Store(testGateway, nil), "snapshot cannot be nil")
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name        string
		opts        []Option
		expectedErr string
	}{
		{
			name: "defaults",
		},
		{
			name: "nil options are skipped",
			opts: []Option{nil, WithTTL(time.Minute)},
		},
		{
			name:        "empty directory",
			opts:        []Option{WithDirectory("  ")},
			expectedErr: "cache directory cannot be empty",
		},
		{
			name:        "zero TTL",
			opts:        []Option{WithTTL(0)},
			expectedErr: "TTL must be positive, got 0s",
		},
		{
			name:        "negative TTL",
			opts:        []Option{WithTTL(-time.Second)},
			expectedErr: "TTL must be positive, got -1s",
		},
		{
			name:        "nil clock",
			opts:        []Option{WithClock(nil)},
			expectedErr: "clock cannot be nil",
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			o, err := NewOptions(testCase.opts...)
			if testCase.expectedErr != "" {
				require.EqualError(t, err, testCase.expectedErr)
				return
			}

			require.NoError(t, err)
			require.True(t, o.enabled)
			require.NotEmpty(t, o.dir)
			require.NotNil(t, o.clock)
		})
	}
}

func TestDefaultTTL(t *testing.T) {
	t.Parallel()

	require.Equal(t, 24*time.Hour, DefaultTTL())
}
