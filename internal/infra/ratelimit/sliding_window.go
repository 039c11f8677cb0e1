// Package ratelimit provides the sliding-window limiter that guards outbound geocoding.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits at most Max calls within any trailing Window.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   []time.Time
	now    func() time.Time
}

// NewSlidingWindow builds a limiter using the wall clock.
func NewSlidingWindow(window time.Duration, max int) *SlidingWindow {
	return NewSlidingWindowWithClock(window, max, time.Now)
}

// NewSlidingWindowWithClock builds a limiter with an injected clock.
func NewSlidingWindowWithClock(window time.Duration, max int, now func() time.Time) *SlidingWindow {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 10
	}
	if now == nil {
		now = time.Now
	}
	return &SlidingWindow{window: window, max: max, now: now, hits: make([]time.Time, 0, max)}
}

// Allow records a call and reports whether it is within the limit. Denied calls are
// not recorded.
func (l *SlidingWindow) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evict(now)
	if len(l.hits) >= l.max {
		return false
	}
	l.hits = append(l.hits, now)
	return true
}

// Remaining reports how many calls would currently be admitted.
func (l *SlidingWindow) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return l.max - len(l.hits)
}

func (l *SlidingWindow) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := 0
	for keep < len(l.hits) && !l.hits[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		l.hits = append(l.hits[:0], l.hits[keep:]...)
	}
}
