package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// staleAfter is how long an expired window is kept before the sweeper drops it.
const staleAfter = time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps fixed-window counters in process memory. Counters are not
// shared between instances; use RedisLimiter when running more than one.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewMemoryLimiter(logger *slog.Logger) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		logger:  logger,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, period time.Duration) (Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(period)}
		m.windows[key] = w
	}
	w.count++

	return newResult(w.count, limit, w.resetAt), nil
}

// Sweep drops windows that ended more than a minute ago and returns how many
// were removed.
func (m *MemoryLimiter) Sweep() int {
	cutoff := m.now().Add(-staleAfter)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if w.resetAt.Before(cutoff) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// StartSweeper schedules Sweep with a cron spec such as "@every 5m".
func (m *MemoryLimiter) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if removed := m.Sweep(); removed > 0 {
			m.logger.Debug("rate limit windows swept", "removed", removed)
		}
	}); err != nil {
		return err
	}
	c.Start()
	m.cron = c
	return nil
}

func (m *MemoryLimiter) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}
