package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

func cachedReport(score int) *models.VibeCheckReport {
	return &models.VibeCheckReport{
		OverallScore: score,
		RiskLevel:    models.RiskLevelForScore(score),
	}
}

func TestMemoryCache(t *testing.T) {
	t.Run("get returns what set stored", func(t *testing.T) {
		cache := NewMemoryCache(10)
		cache.Set("0xabc", cachedReport(80), time.Hour)

		got, ok := cache.Get("0xabc")
		require.True(t, ok)
		assert.Equal(t, 80, got.OverallScore)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewMemoryCache(10)
		got, ok := cache.Get("0xmissing")
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("expired entries are dropped lazily", func(t *testing.T) {
		cache := NewMemoryCache(10).(*memoryCache)
		current := time.Now()
		cache.now = func() time.Time { return current }

		cache.Set("0xabc", cachedReport(80), time.Hour)

		current = current.Add(59 * time.Minute)
		_, ok := cache.Get("0xabc")
		assert.True(t, ok)

		current = current.Add(2 * time.Minute)
		_, ok = cache.Get("0xabc")
		assert.False(t, ok)

		// A second read after expiry still misses.
		_, ok = cache.Get("0xabc")
		assert.False(t, ok)
	})

	t.Run("overwrites keep a single entry per key", func(t *testing.T) {
		cache := NewMemoryCache(10).(*memoryCache)
		cache.Set("0xabc", cachedReport(80), time.Hour)
		cache.Set("0xabc", cachedReport(20), time.Hour)

		got, ok := cache.Get("0xabc")
		require.True(t, ok)
		assert.Equal(t, 20, got.OverallScore)
		assert.Equal(t, 1, len(cache.entries))
	})

	t.Run("evicts a batch of oldest entries at capacity", func(t *testing.T) {
		cache := NewMemoryCache(8).(*memoryCache)
		for i := 0; i < 8; i++ {
			cache.Set(fmt.Sprintf("0x%02d", i), cachedReport(i), time.Hour)
		}

		cache.Set("0xnew", cachedReport(99), time.Hour)

		// Capacity 8 evicts in batches of 2.
		_, ok := cache.Get("0x00")
		assert.False(t, ok)
		_, ok = cache.Get("0x01")
		assert.False(t, ok)
		_, ok = cache.Get("0x02")
		assert.True(t, ok)
		_, ok = cache.Get("0xnew")
		assert.True(t, ok)
		assert.LessOrEqual(t, len(cache.entries), 8)
	})
}
