package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

const (
	// KeyPrefix versions the serialized payload shape. Bump it whenever the response schema changes
	// so entries written by older code are never served to newer code.
	KeyPrefix = "data_v5_"

	// TTL is the lifetime of every entry
	TTL = 600 * time.Second

	// DefaultMaxValueBytes mirrors the per-entry limit of the hosted cache this replaces
	DefaultMaxValueBytes = 100 * 1024
)

// ErrValueTooLarge is returned by Put when the value exceeds the size limit.
// The entry is simply absent; callers should log and carry on.
var ErrValueTooLarge = errors.New("cache value exceeds size limit")

// Cache is the response cache used by the read and write paths
type Cache interface {
	Get(key string) (string, bool)
	Put(key, value string, ttl time.Duration) error
	Remove(key string)
}

// KeyFor builds the cache key for a volunteer
func KeyFor(volunteerName string) string {
	return KeyPrefix + tablestore.NormalizeName(volunteerName)
}

// Entry is a single cached value
type Entry struct {
	Key       string
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// MemoryCache is an in-process Cache with per-entry expiry
type MemoryCache struct {
	mu            sync.Mutex
	entries       map[string]*Entry
	maxValueBytes int
	now           func() time.Time
}

// Option configures a MemoryCache
type Option func(*MemoryCache)

// WithMaxValueBytes overrides the size limit; values <= 0 keep the default
func WithMaxValueBytes(n int) Option {
	return func(c *MemoryCache) {
		if n > 0 {
			c.maxValueBytes = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates an empty cache
func NewMemoryCache(opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]*Entry),
		maxValueBytes: DefaultMaxValueBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored value verbatim while it is unexpired
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if ent.expired(c.now()) {
		delete(c.entries, key)
		return "", false
	}
	return ent.Value, true
}

// Put stores value for ttl. An oversized value removes any existing entry for key.
func (c *MemoryCache) Put(key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(value) > c.maxValueBytes {
		delete(c.entries, key)
		return fmt.Errorf("%w: %d > %d bytes", ErrValueTooLarge, len(value), c.maxValueBytes)
	}
	if ttl <= 0 {
		ttl = TTL
	}

	now := c.now()
	c.entries[key] = &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// Remove deletes the entry for key if present
func (c *MemoryCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep drops expired entries and returns how many were removed
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, ent := range c.entries {
		if ent.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
