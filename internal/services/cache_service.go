package services

import (
	"container/list"
	"sync"
	"time"

	"github.com/vibecheck-lab/vibecheck/internal/models"
)

// CacheService is the result-cache collaborator: one write at the end of a
// successful scan, one read-check at the start of a new one. Implementations
// may be backed by an external KV store; the default is an in-process
// bounded map with TTL and oldest-first eviction.
type CacheService interface {
	Get(key string) (*models.VibeCheckReport, bool)
	Set(key string, report *models.VibeCheckReport, ttl time.Duration)
}

type cacheEntry struct {
	key       string
	report    *models.VibeCheckReport
	expiresAt time.Time
}

type memoryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = oldest insertion
	capacity   int
	evictBatch int
	now        func() time.Time
}

// NewMemoryCache creates the in-process cache. When capacity is exceeded, a
// batch of the oldest entries is dropped so eviction work is amortized.
func NewMemoryCache(capacity int) CacheService {
	if capacity <= 0 {
		capacity = 200
	}
	evictBatch := capacity / 4
	if evictBatch == 0 {
		evictBatch = 1
	}
	return &memoryCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		capacity:   capacity,
		evictBatch: evictBatch,
		now:        time.Now,
	}
}

func (c *memoryCache) Get(key string) (*models.VibeCheckReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	return entry.report, true
}

func (c *memoryCache) Set(key string, report *models.VibeCheckReport, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}

	if len(c.entries) >= c.capacity {
		for i := 0; i < c.evictBatch; i++ {
			oldest := c.order.Front()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	entry := &cacheEntry{key: key, report: report, expiresAt: c.now().Add(ttl)}
	c.entries[key] = c.order.PushBack(entry)
}
