package ratelimit

import (
	"sync"
	"time"

	apperrors "taply/internal/errors"
)

// Limiter is a fixed-window request counter keyed by caller identity. Each
// key's window starts at its first request, so windows are independently
// phased. The table is swept every window to drop idle keys. Single process,
// best effort: a multi-instance deployment would need a shared counter store
// with atomic increment-and-expire instead.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	window  time.Duration
	max     int

	stop chan struct{}
	once sync.Once
}

type entry struct {
	count      int
	windowEnds time.Time
}

// New creates a limiter allowing max requests per window per key and starts
// the background sweep.
func New(window time.Duration, max int) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		window:  window,
		max:     max,
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow counts a request for key. It returns ErrRateLimited once the count
// within the key's current window exceeds the configured maximum.
func (l *Limiter) Allow(key string) error {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnds) {
		l.entries[key] = &entry{count: 1, windowEnds: now.Add(l.window)}
		return nil
	}

	e.count++
	if e.count > l.max {
		return apperrors.ErrRateLimited
	}
	return nil
}

// Close stops the background sweep.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, e := range l.entries {
				if now.After(e.windowEnds) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
