// Package ratelimit throttles outbound requests per remote host using a
// sliding window of request timestamps. It is a throttle, not an admission
// reject: every caller eventually proceeds.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter allows at most maxRequests per host within a trailing window.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu    sync.Mutex
	hosts map[string]*hostWindow
}

type hostWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a Limiter permitting maxRequests per window for each host.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		hosts:       make(map[string]*hostWindow),
	}
}

func (l *Limiter) host(name string) *hostWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.hosts[name]
	if !ok {
		w = &hostWindow{}
		l.hosts[name] = w
	}
	return w
}

// Acquire blocks until issuing one more request to host would not exceed the
// configured rate, then records the request. Concurrent callers for the same
// host queue on that host's window; other hosts are unaffected. The wait is
// cancelled by ctx.
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	w := l.host(host)
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := time.Now()
		w.prune(now, l.window)
		if len(w.stamps) < l.maxRequests {
			w.stamps = append(w.stamps, now)
			return nil
		}

		wait := l.window - now.Sub(w.stamps[0])
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops timestamps older than the trailing window. Caller holds w.mu.
func (w *hostWindow) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
