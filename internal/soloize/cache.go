// Package soloize republishes third-party calendar feeds with past events
// and attendee lists stripped. Processed feeds are cached without expiry
// and kept warm by a periodic background refresh instead of TTL
// invalidation.
package soloize

import "sync"

// Cache maps a source feed URL to its last successfully processed calendar
// text. Writing an entry also enrolls the URL in the tracked set that
// drives background refreshes. One lock serializes all access; it is held
// only for map operations, never across a network call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	tracked map[string]struct{}
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
		tracked: make(map[string]struct{}),
	}
}

// Get returns the cached content for url, if any. Never blocks on network.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.entries[url]
	return content, ok
}

// Set stores content for url and tracks the URL for future refreshes.
func (c *Cache) Set(url, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = content
	c.tracked[url] = struct{}{}
}

// TrackedURLs returns a snapshot of the tracked set, safe to iterate
// without holding the lock.
func (c *Cache) TrackedURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make([]string, 0, len(c.tracked))
	for u := range c.tracked {
		urls = append(urls, u)
	}
	return urls
}
