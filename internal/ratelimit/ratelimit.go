// Package ratelimit enforces per-minute and per-hour budgets for
// external search provider calls.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitError reports an exhausted budget. RetryAfter is the time
// until the oldest acquisition in the exhausted window ages out; when
// both windows are exhausted it is the larger of the two.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Millisecond))
}

// Limiter tracks acquisition timestamps in two sliding windows.
// Safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	perHour   int
	minute    []time.Time
	hour      []time.Time

	// now is swappable for tests
	now func() time.Time
}

// New creates a Limiter with the given per-minute and per-hour budgets.
func New(perMinute, perHour int) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		perHour:   perHour,
		now:       time.Now,
	}
}

// Acquire claims one slot in both windows. It never blocks: either both
// windows have room and the acquisition is recorded, or a *RateLimitError
// is returned and no state changes. The check-and-record is atomic, so
// concurrent callers cannot both claim the last slot.
func (l *Limiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute = purge(l.minute, now.Add(-time.Minute))
	l.hour = purge(l.hour, now.Add(-time.Hour))

	var retry time.Duration
	if len(l.minute) >= l.perMinute {
		retry = l.minute[0].Add(time.Minute).Sub(now)
	}
	if len(l.hour) >= l.perHour {
		if r := l.hour[0].Add(time.Hour).Sub(now); r > retry {
			retry = r
		}
	}
	if retry > 0 {
		return &RateLimitError{RetryAfter: retry}
	}

	l.minute = append(l.minute, now)
	l.hour = append(l.hour, now)
	return nil
}

// Remaining returns the number of slots currently available, which is
// the smaller of the two windows' headroom.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute = purge(l.minute, now.Add(-time.Minute))
	l.hour = purge(l.hour, now.Add(-time.Hour))

	m := l.perMinute - len(l.minute)
	h := l.perHour - len(l.hour)
	if h < m {
		m = h
	}
	if m < 0 {
		m = 0
	}
	return m
}

// purge drops timestamps at or before cutoff. Timestamps are appended in
// order, so the slice stays sorted and a prefix scan suffices.
func purge(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
