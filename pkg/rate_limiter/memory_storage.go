package rate_limiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type MemoryStorage struct {
	mu  *sync.Mutex
	db  map[string]*rateLimitRecord
	now func() time.Time
}

type rateLimitRecord struct {
	count     int
	resetTime time.Time
}

type MemoryStorageOption func(m *MemoryStorage)

// WithClock replaces time.Now, mostly for tests that need to move past a window.
func WithClock(now func() time.Time) MemoryStorageOption {
	return func(m *MemoryStorage) {
		m.now = now
	}
}

func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	m := &MemoryStorage{
		mu:  &sync.Mutex{},
		db:  make(map[string]*rateLimitRecord),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *MemoryStorage) CheckAndUpdateFixedWindow(_ context.Context, key string, maxRequests int, window time.Duration) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	record, ok := m.db[key]
	if !ok || now.After(record.resetTime) {
		record = &rateLimitRecord{
			count:     1,
			resetTime: now.Add(window),
		}
		slog.Debug("starting new window", "key", key, "reset_time", record.resetTime)
		m.db[key] = record
		return Decision{Count: record.count, Limit: maxRequests, ResetAt: record.resetTime}, nil
	}

	if record.count >= maxRequests {
		return Decision{Blocked: true, Count: record.count, Limit: maxRequests, ResetAt: record.resetTime}, nil
	}

	record.count++
	return Decision{Count: record.count, Limit: maxRequests, ResetAt: record.resetTime}, nil
}

// Sweep drops every record whose window already ended and returns how many were removed.
// An expired record is treated like a missing one, so sweeping never changes a decision.
func (m *MemoryStorage) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, record := range m.db {
		if now.After(record.resetTime) {
			delete(m.db, key)
			removed++
		}
	}

	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *MemoryStorage) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := m.Sweep(); removed > 0 {
					slog.Debug("swept expired rate limit records", "removed", removed)
				}
			}
		}
	}()
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.db)
}
