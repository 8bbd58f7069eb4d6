package cache

import (
	"context"
	"sync"

	"confcentral/internal/domain"
)

type memoryCache struct {
	mu      sync.RWMutex
	message string
	set     bool
}

// NewMemoryAnnouncementCache returns an in-process AnnouncementCache: a
// single mutable cell, used in tests and when no redis address is configured.
func NewMemoryAnnouncementCache() domain.AnnouncementCache {
	return &memoryCache{}
}

func (c *memoryCache) Set(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
	c.set = true
	return nil
}

func (c *memoryCache) Get(ctx context.Context) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message, c.set, nil
}
