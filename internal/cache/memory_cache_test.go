package cache

import (
	"testing"
	"time"

	"github.com/equitywire/research/internal/models"
)

func TestMemoryCache_SetGetInvalidate(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	if _, ok := c.GetDashboard(); ok {
		t.Fatal("empty cache must miss")
	}

	d := &models.Dashboard{GeneratedAt: time.Now()}
	c.SetDashboard(d)
	got, ok := c.GetDashboard()
	if !ok || got != d {
		t.Fatal("expected cached dashboard back")
	}

	c.Invalidate()
	if _, ok := c.GetDashboard(); ok {
		t.Fatal("invalidated cache must miss")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	c.SetDashboard(&models.Dashboard{})

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.GetDashboard(); ok {
		t.Fatal("expired entry must miss")
	}
}
