// Package ratelimit implements a process-local fixed-window attempt
// counter for credential-sensitive operations.
//
// The limiter is best-effort by design: state lives in memory, is lost on
// restart, and is not coordinated across service instances. Those are
// accepted properties of the deployment, not bugs.
package ratelimit

import (
	"sync"
	"time"
)

// Key identifies one rate-limited subject. Using a comparable struct
// instead of a joined string means fields containing separator characters
// can never collide with each other's key space.
type Key struct {
	// Op names the guarded operation ("login", "redeem", ...).
	Op string

	// Subject is the acted-on identity, typically a normalized email.
	Subject string

	// Remote is the caller's network address.
	Remote string
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window attempt counter. One Limiter carries one
// policy (max attempts per window); construct a separate Limiter per
// operation class and inject it where needed.
//
// Safe for concurrent use. Denied attempts do not extend the window.
type Limiter struct {
	mu      sync.Mutex
	windows map[Key]*window

	max    int
	window time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewLimiter constructs a Limiter allowing max attempts per windowDuration
// for each distinct key.
func NewLimiter(max int, windowDuration time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[Key]*window),
		max:     max,
		window:  windowDuration,
		now:     time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// window budget. A fresh or lapsed window restarts with count 1. Once the
// budget is exhausted the count stops incrementing, so repeated denials
// never push the reset time further out.
func (l *Limiter) Allow(key Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || !w.resetAt.After(now) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if w.count < l.max {
		w.count++
		return true
	}

	return false
}

// Remaining reports how many attempts are left for key in its current
// window, floored at zero. A key with no live window has the full budget.
func (l *Limiter) Remaining(key Key) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !w.resetAt.After(l.now()) {
		return l.max
	}

	if remaining := l.max - w.count; remaining > 0 {
		return remaining
	}

	return 0
}

// RetryAfter reports how long the caller should wait before the window for
// key resets. Zero means the key is not currently limited.
func (l *Limiter) RetryAfter(key Key) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return 0
	}

	if wait := w.resetAt.Sub(l.now()); wait > 0 {
		return wait
	}

	return 0
}

// Sweep removes entries whose window has lapsed, bounding memory growth.
// Sweep timing never changes allow/deny outcomes; a lapsed entry that was
// not yet swept behaves identically to an absent one.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if !w.resetAt.After(now) {
			delete(l.windows, key)
		}
	}
}

// Len reports the number of tracked windows, swept or not. Used by the
// sweeper's diagnostics.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}
