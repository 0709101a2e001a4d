// Package cache keeps recent completions on disk so that repeating the same
// buffer within the TTL does not issue another model request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// FileName is the cache file created under the cache directory.
const FileName = "completions.json"

const fileVersion = 1

type cacheFile struct {
	Version int          `json:"version"`
	Entries []cacheEntry `json:"entries"`
}

type cacheEntry struct {
	Key        string    `json:"key"`
	Completion string    `json:"completion"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store is a TTL cache of raw completions persisted as JSON.
type Store struct {
	path  string
	ttl   time.Duration
	cache *ttlcache.Cache[string, string]
}

// Open loads the cache file at path. A missing file yields an empty store.
// Entries that expired while on disk are dropped.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	s := &Store{
		path: path,
		ttl:  ttl,
		cache: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](ttl),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cf.Version != fileVersion {
		return s, nil
	}

	now := time.Now()
	for _, e := range cf.Entries {
		left := e.ExpiresAt.Sub(now)
		if left <= 0 {
			continue
		}
		s.cache.Set(e.Key, e.Completion, left)
	}
	return s, nil
}

// Path returns the file the store is persisted to.
func (s *Store) Path() string { return s.path }

// Get returns the completion stored under key, if present and not expired.
func (s *Store) Get(key string) (string, bool) {
	item := s.cache.Get(key)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Set stores a completion under key for the store's TTL.
func (s *Store) Set(key, completion string) {
	s.cache.Set(key, completion, ttlcache.DefaultTTL)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	n := 0
	for _, item := range s.cache.Items() {
		if !item.IsExpired() {
			n++
		}
	}
	return n
}

// Save writes the live entries to disk, replacing the file atomically.
func (s *Store) Save() error {
	items := s.cache.Items()
	entries := make([]cacheEntry, 0, len(items))
	for key, item := range items {
		if item.IsExpired() {
			continue
		}
		entries = append(entries, cacheEntry{
			Key:        key,
			Completion: item.Value(),
			ExpiresAt:  item.ExpiresAt(),
		})
	}

	data, err := json.Marshal(cacheFile{Version: fileVersion, Entries: entries})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Key derives a cache key from its parts (service name, prompt).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
