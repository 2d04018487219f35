// Package cache stores Al Adhan reference responses on disk so repeated
// `salah verify` runs for the same day and settings stay offline.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/salah/internal/api"
)

const referenceFile = "reference_%s.json" // keyed by hash

// Cache provides file-based caching for reference timings.
type Cache struct {
	dir string
}

// Entry is a cached reference response with the parameters it was fetched for.
type Entry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   string       `json:"method"`
	Asr      string       `json:"asr"`
	Response api.Response `json:"response"`
	CachedAt time.Time    `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to the user cache directory plus "salah"
// (~/.cache/salah on Linux, honouring $XDG_CACHE_HOME).
func New(dir string) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine cache directory: %w", err)
		}
		dir = filepath.Join(base, "salah")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the directory the cache writes to.
func (c *Cache) Dir() string {
	return c.dir
}

// cacheKey builds a deterministic hash from the parameters that affect the
// reference times.
func cacheKey(q api.Query) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%s",
		q.Date.Format("2006-01-02"), q.Latitude, q.Longitude, q.Timezone, q.Method.Name, q.Asr)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}

func (c *Cache) path(q api.Query) string {
	return filepath.Join(c.dir, fmt.Sprintf(referenceFile, cacheKey(q)))
}

// Load returns the cached response for q, or nil if there is none or the
// entry does not match q's date and settings.
func (c *Cache) Load(q api.Query) *api.Response {
	data, err := os.ReadFile(c.path(q))
	if err != nil {
		return nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if entry.Date != q.Date.Format("2006-01-02") || entry.Method != q.Method.Name || entry.Asr != q.Asr.String() {
		return nil
	}

	return &entry.Response
}

// Save writes resp to the cache under q.
func (c *Cache) Save(q api.Query, resp *api.Response) error {
	entry := Entry{
		Date:     q.Date.Format("2006-01-02"),
		Method:   q.Method.Name,
		Asr:      q.Asr.String(),
		Response: *resp,
		CachedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(q), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
