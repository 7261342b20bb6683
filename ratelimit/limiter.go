// Package ratelimit implements per-client fixed-window admission control.
//
// Each key gets a counter and a reset time. The first request after the
// reset time opens a new window; up to Limit requests are admitted per
// window. Because windows are fixed rather than sliding, a client can get
// up to 2*Limit requests through across a window boundary.
//
// Entries live in a bounded LRU whose TTL equals the window, so idle keys
// are dropped and the number of tracked clients never exceeds Capacity.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Config struct {
	// Limit is the number of requests admitted per window.
	Limit int
	// Window is the fixed window length.
	Window time.Duration
	// Capacity bounds the number of client keys tracked at once.
	Capacity int
}

// DefaultConfig allows 3 requests per minute for up to 10k clients.
func DefaultConfig() Config {
	return Config{
		Limit:    3,
		Window:   time.Minute,
		Capacity: 10_000,
	}
}

type entry struct {
	count   int
	resetAt time.Time
}

type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	entries *expirable.LRU[string, *entry]
	now     func() time.Time
}

type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}

	l := &Limiter{
		cfg:     cfg,
		entries: expirable.NewLRU[string, *entry](cfg.Capacity, nil, cfg.Window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key and reports whether it is admitted.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries.Get(key)
	if !ok || now.After(e.resetAt) {
		l.entries.Add(key, &entry{count: 1, resetAt: now.Add(l.cfg.Window)})
		return true
	}
	if e.count < l.cfg.Limit {
		e.count++
		return true
	}
	return false
}

// Remaining returns how many more requests key may make in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries.Peek(key)
	if !ok || l.now().After(e.resetAt) {
		return l.cfg.Limit
	}
	return l.cfg.Limit - e.count
}

// ResetAt returns when key's current window closes.
func (l *Limiter) ResetAt(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries.Peek(key)
	if !ok {
		return time.Time{}, false
	}
	return e.resetAt, true
}

// Len returns the number of client keys currently tracked.
func (l *Limiter) Len() int {
	return l.entries.Len()
}

// Limit is the number of requests admitted per window.
func (l *Limiter) Limit() int { return l.cfg.Limit }

