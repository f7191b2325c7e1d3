package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/files"
	"github.com/steamstat/steamstat/internal/perms"
	"github.com/steamstat/steamstat/internal/status"
)

// Entry is the on-disk form of a cached snapshot.
type Entry struct {
	// Snapshot is the cached status.
	Snapshot *status.Snapshot `json:"data"`

	// CachedAt is the Unix time in milliseconds when the snapshot was stored.
	CachedAt int64 `json:"cachedAt"`
}

// Cache stores the last known snapshot for each gateway on disk.
// NewCache should be used to create instances of Cache.
type Cache struct {
	// dir is the directory where cache files are stored.
	dir string

	// ttl is how long a cached snapshot remains usable.
	ttl time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// now supplies the current time.
	now func() time.Time

	// logger is used for logging cache operations.
	logger hclog.Logger
}

// NewCache creates a new snapshot cache.
func NewCache(logger hclog.Logger, opts ...Option) (*Cache, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	// Only create cache directory if caching is enabled.
	if options.enabled {
		if err := files.EnsureAtLeastRegularDir(options.dir); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Cache{
		dir:     options.dir,
		ttl:     options.ttl,
		enabled: options.enabled,
		now:     options.clock,
		logger:  logger.Named("cache"),
	}, nil
}

// Path returns the cache file used for a gateway.
func (c *Cache) Path(gatewayURL string) string {
	// Generate cache file path from URL hash.
	hash := sha256.Sum256([]byte(strings.TrimSpace(gatewayURL)))
	filename := fmt.Sprintf("%x.json", hash)

	return filepath.Join(c.dir, filename)
}

// Store writes snap as the last known snapshot for gatewayURL.
func (c *Cache) Store(gatewayURL string, snap *status.Snapshot) error {
	if !c.enabled {
		return nil
	}
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	data, err := json.Marshal(Entry{Snapshot: snap, CachedAt: c.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := c.Path(gatewayURL)
	if err := files.WriteFileAtomic(path, data, perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	c.logger.Debug("Cached snapshot", "path", path, "size", len(data))

	return nil
}

// Load returns the cached snapshot for gatewayURL and when it was stored.
// Missing, expired and disabled caches wrap errors.ErrNoSnapshot.
func (c *Cache) Load(gatewayURL string) (*status.Snapshot, time.Time, error) {
	if !c.enabled {
		return nil, time.Time{}, fmt.Errorf("%w: cache disabled", errors.ErrNoSnapshot)
	}

	path := c.Path(gatewayURL)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, fmt.Errorf("%w: nothing cached for gateway", errors.ErrNoSnapshot)
		}
		return nil, time.Time{}, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Snapshot == nil {
		c.logger.Warn("Ignoring corrupt cache file", "path", path, "error", err)
		return nil, time.Time{}, fmt.Errorf("%w: corrupt cache file", errors.ErrNoSnapshot)
	}

	cachedAt := time.UnixMilli(entry.CachedAt).UTC()
	if c.isExpired(cachedAt) {
		c.logger.Debug("Cache expired", "path", path, "cachedAt", cachedAt)
		return nil, time.Time{}, fmt.Errorf("%w: cached snapshot expired", errors.ErrNoSnapshot)
	}

	return entry.Snapshot, cachedAt, nil
}

// isExpired checks if a cache entry is older than the TTL.
func (c *Cache) isExpired(cachedAt time.Time) bool {
	return c.now().Sub(cachedAt) > c.ttl
}
