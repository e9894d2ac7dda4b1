package cache

import (
	"sync"
	"time"

	"github.com/equitywire/research/internal/models"
)

// MemoryCache provides a small in-memory TTL cache for computed dashboards.
// The analytics queries are read-only aggregates, so serving a slightly
// stale dashboard is fine.
type MemoryCache struct {
	dashboard    *models.Dashboard
	computedAt   time.Time
	mu           sync.RWMutex
	dashboardTTL time.Duration
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(dashboardTTL time.Duration) *MemoryCache {
	return &MemoryCache{dashboardTTL: dashboardTTL}
}

// GetDashboard retrieves the cached dashboard if fresh
func (c *MemoryCache) GetDashboard() (*models.Dashboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dashboard == nil {
		return nil, false
	}
	if time.Since(c.computedAt) > c.dashboardTTL {
		return nil, false
	}
	return c.dashboard, true
}

// SetDashboard caches a computed dashboard
func (c *MemoryCache) SetDashboard(d *models.Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboard = d
	c.computedAt = time.Now()
}

// Invalidate drops the cached dashboard (e.g. after an import run)
func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboard = nil
}
