package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LimiterStore hands out one token bucket per key.
type LimiterStore struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	r        rate.Limit
	burst    int
	now      func() time.Time
}

func NewLimiterStore(r rate.Limit, burst int) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		burst:    burst,
		now:      time.Now,
	}
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.limiters[key]; exists {
		entry.lastAccess = s.now()
		return entry.limiter
	}
	limiter := rate.NewLimiter(s.r, s.burst)
	s.limiters[key] = &limiterEntry{limiter: limiter, lastAccess: s.now()}
	return limiter
}

// Allow consumes one token for key without waiting.
func (s *LimiterStore) Allow(key string) bool {
	return s.GetLimiter(key).Allow()
}

// Forget drops the bucket of key, e.g. after a successful login.
func (s *LimiterStore) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.limiters, key)
}

// Cleanup removes buckets idle for longer than idle and returns how many went.
func (s *LimiterStore) Cleanup(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > idle {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
