package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"verilens/internal/domain"
)

// FileCache is a process-wide evidence cache backed by a whole-file JSON
// snapshot. Reads and parse failures of the durable file are never fatal; a
// failed flush leaves the in-memory map authoritative.
type FileCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
	path    string
}

// NewFileCache creates a FileCache and loads any prior snapshot from path.
// A missing or corrupt snapshot yields an empty cache.
func NewFileCache(path string) *FileCache {
	c := &FileCache{
		entries: make(map[string]domain.CacheEntry),
		path:    path,
	}
	c.load()
	return c
}

func (c *FileCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("fileCache: failed to read %s: %v", c.path, err)
		}
		return
	}
	var entries map[string]domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("fileCache: corrupt snapshot %s, starting empty: %v", c.path, err)
		return
	}
	c.entries = entries
	log.Printf("fileCache: loaded %d entries from %s", len(entries), c.path)
}

// Get returns the cached result for key, if present.
func (c *FileCache) Get(key string) (*domain.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	result := entry.Result
	return &result, true
}

// Put stores result under key, overwriting any prior entry, and flushes the
// snapshot best-effort. Concurrent writers are last-writer-wins; keys are
// content-addressed so racing writers produce equivalent entries.
func (c *FileCache) Put(key string, result *domain.AnalysisResult) {
	c.mu.Lock()
	c.entries[key] = domain.CacheEntry{
		Key:       key,
		Result:    *result,
		WrittenAt: time.Now().UTC(),
	}
	c.mu.Unlock()

	if err := c.Flush(); err != nil {
		log.Printf("fileCache: flush failed after put: %v", err)
	}
}

// Flush persists the full in-memory map, replacing prior file content.
func (c *FileCache) Flush() error {
	c.mu.RLock()
	data, err := json.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Len returns the number of cached entries.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key derives the deterministic evidence key for a locator and optional
// caption. Changing the caption invalidates the entry for that unit.
func Key(locator, caption string) string {
	if caption != "" {
		return locator + ":" + caption
	}
	return locator
}

// ContentKey derives a content-addressed locator for raw media bytes.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
