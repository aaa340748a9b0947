package ratelimit

import (
	"sync"
	"time"
)

// Limiter считает запросы по ключу в фиксированном окне
type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// Rule - лимит запросов на окно
type Rule struct {
	Requests int
	Window   time.Duration
}

// MemoryLimiter - in-process лимитер для одного инстанса и тестов
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (r *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[key]
	if !ok || now.After(b.windowEnd) {
		r.buckets[key] = &bucket{count: 1, windowEnd: now.Add(window)}
		r.sweep(now)
		return true
	}
	if b.count >= limit {
		return false
	}
	b.count++
	return true
}

// sweep удаляет истекшие окна, чтобы карта не росла бесконечно
func (r *MemoryLimiter) sweep(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for k, b := range r.buckets {
		if now.After(b.windowEnd) {
			delete(r.buckets, k)
		}
	}
}
