package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bioinsight/backend/internal/domain/ledger"
)

type cachedSummary struct {
	data      []byte
	expiresAt time.Time
}

// InMemorySummaryCache keeps encoded summaries in a process-local map.
// Suitable for single-instance deployments and tests.
type InMemorySummaryCache struct {
	mu        sync.RWMutex
	entries   map[string]cachedSummary
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySummaryCache creates the cache and starts its expiry sweeper.
func NewInMemorySummaryCache(sweepInterval time.Duration) *InMemorySummaryCache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	c := &InMemorySummaryCache{
		entries:  make(map[string]cachedSummary),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)

	return c
}

// Get returns a copy of the cached summary, if present and not expired.
func (c *InMemorySummaryCache) Get(ctx context.Context, key string) (*ledger.Summary, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[KeyPrefix+key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	s, err := decodeSummary(e.data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Set stores the summary for ttl.
func (c *InMemorySummaryCache) Set(ctx context.Context, key string, summary *ledger.Summary, ttl time.Duration) error {
	data, err := encodeSummary(summary)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[KeyPrefix+key] = cachedSummary{data: data, expiresAt: c.now().Add(ttl)}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemorySummaryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included.
func (c *InMemorySummaryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemorySummaryCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemorySummaryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
