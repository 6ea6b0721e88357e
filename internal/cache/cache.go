// Package cache stores model responses on disk so identical diffs are not sent twice.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sevigo/code-reviewer/internal/core"
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = 7 * 24 * time.Hour

const entryExt = ".json"

// Entry is the payload persisted for one fingerprint.
type Entry struct {
	ReviewText string `json:"review"`
	ModelName  string `json:"model"`
}

// Stats describes the current contents of the cache directory.
type Stats struct {
	Count            int     `json:"count"`
	TotalSizeBytes   int64   `json:"total_size_bytes"`
	OldestAgeSeconds float64 `json:"oldest_age_seconds"`
}

// Cache is a directory of JSON files, one per fingerprint. The file's
// modification time is the entry's creation time.
//
// Entries are written to a temporary file and renamed into place, so readers in
// other goroutines or processes never see a partial entry. Any read that races a
// write or an expiry delete is reported as a miss.
type Cache struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Fingerprint derives the cache key for a diff reviewed by a model.
func Fingerprint(diff, model string) string {
	sum := sha256.Sum256([]byte(diff + ":" + model))
	return fmt.Sprintf("%x", sum)
}

// DefaultDir returns ~/.code-reviewer/cache, or a directory under the system
// temp dir when the home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "code-reviewer", "cache")
	}
	return filepath.Join(home, ".code-reviewer", "cache")
}

// New creates the cache directory if needed.
func New(dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory %s: %w", core.ErrCacheUnavailable, dir, err)
	}
	logger.Debug("initialized response cache", "dir", dir, "ttl", ttl)
	return &Cache{dir: dir, ttl: ttl, logger: logger, now: time.Now}, nil
}

// Dir returns the directory backing the cache.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+entryExt)
}

// Get returns the entry for key. Expired entries are deleted and reported as
// missing. Unreadable or corrupt entries are misses as well.
func (c *Cache) Get(key string) (*Entry, bool) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to stat cache entry", "cache_key", key, "error", err)
		}
		c.logger.Debug("cache miss", "cache_key", key)
		return nil, false
	}

	age := c.now().Sub(info.ModTime())
	if age >= c.ttl {
		c.logger.Debug("cache entry expired", "cache_key", key, "age", age.Round(time.Second))
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to delete expired cache entry", "cache_key", key, "error", err)
		}
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("failed to read cache entry", "cache_key", key, "error", err)
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("ignoring corrupt cache entry", "cache_key", key, "error", err)
		return nil, false
	}

	c.logger.Info("cache hit", "cache_key", key, "age", age.Round(time.Second))
	return &entry, true
}

// Set writes or replaces the entry for key.
func (c *Cache) Set(key string, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode entry: %w", core.ErrCacheUnavailable, err)
	}

	tmp, err := os.CreateTemp(c.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", core.ErrCacheUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write entry: %w", core.ErrCacheUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close entry: %w", core.ErrCacheUnavailable, err)
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to move entry into place: %w", core.ErrCacheUnavailable, err)
	}

	c.logger.Debug("cached review", "cache_key", key, "bytes", len(data))
	return nil
}

// Sweep deletes entries older than maxAge, or older than the TTL when maxAge
// is zero or negative. It returns the number of entries removed.
func (c *Cache) Sweep(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = c.ttl
	}
	return c.removeWhere(func(age time.Duration) bool { return age >= maxAge })
}

// Clear deletes every entry.
func (c *Cache) Clear() (int, error) {
	return c.removeWhere(func(time.Duration) bool { return true })
}

func (c *Cache) removeWhere(match func(age time.Duration) bool) (int, error) {
	files, err := c.entries()
	if err != nil {
		return 0, err
	}

	now := c.now()
	removed := 0
	for _, f := range files {
		if !match(now.Sub(f.modTime)) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn("failed to remove cache entry", "path", f.path, "error", err)
			}
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("removed cache entries", "count", removed)
	}
	return removed, nil
}

// Stats never fails on an empty or missing directory.
func (c *Cache) Stats() (Stats, error) {
	files, err := c.entries()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var oldest time.Time
	for _, f := range files {
		stats.Count++
		stats.TotalSizeBytes += f.size
		if oldest.IsZero() || f.modTime.Before(oldest) {
			oldest = f.modTime
		}
	}
	if stats.Count > 0 {
		stats.OldestAgeSeconds = c.now().Sub(oldest).Seconds()
	}
	return stats, nil
}

type entryFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (c *Cache) entries() ([]entryFile, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to list %s: %w", core.ErrCacheUnavailable, c.dir, err)
	}

	files := make([]entryFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != entryExt {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, entryFile{
			path:    filepath.Join(c.dir, name),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}
