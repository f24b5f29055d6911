// Package assets loads and caches texture images for an import session.
package assets

import (
	"fmt"
	"image"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/hytopia-importer/internal/logger"
	"github.com/Faultbox/hytopia-importer/internal/texture"
)

// Manager loads images from disk, decoding each path at most once.
type Manager struct {
	cache *Cache
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{cache: NewCache()}
}

// LoadImage reads and decodes the image at path.
// Decode failures are cached too, so a broken file is reported once per session.
func (m *Manager) LoadImage(path string) (image.Image, error) {
	if e, ok := m.cache.Get(path); ok {
		return e.Image, e.Err
	}

	img, err := load(path)
	if err != nil {
		logger.Debug("image load failed", zap.String("path", path), zap.Error(err))
		m.cache.Set(path, Entry{Err: err})
		return nil, err
	}

	b := img.Bounds()
	logger.Debug("loaded image", zap.String("path", path),
		zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	m.cache.Set(path, Entry{Image: img})
	return img, nil
}

func load(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return texture.Decode(data, path)
}

// Stats returns cache hits and misses.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Reset drops every cached image.
func (m *Manager) Reset() {
	m.cache.Clear()
}

// Entry is the cached outcome of one decode.
type Entry struct {
	Image image.Image
	Err   error
}

// Cache is an in-memory cache of decode results keyed by path.
type Cache struct {
	data map[string]Entry
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string]Entry)}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = e
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache and its statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
