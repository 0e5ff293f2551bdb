package lim

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"inkwell/svc/util"
)

const (
	maxLimiters     = 10000
	cleanupInterval = 5 * time.Minute
	limiterTTL      = 30 * time.Minute
)

// Limiter throttles credential-guessing on the sign-in route with a per-IP
// token bucket. Entries are evicted after a period of inactivity.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rpm      int
	burst    int
	quit     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func New(rpm, burst int) *Limiter {
	if rpm <= 0 {
		rpm = 30
	}
	if burst <= 0 {
		burst = rpm
	}
	l := &Limiter{
		limiters: make(map[string]*limiterEntry),
		rpm:      rpm,
		burst:    burst,
		quit:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may attempt another sign-in. When the
// limiter map is at capacity new clients are rejected rather than letting
// the map grow without bound.
func (l *Limiter) Allow(r *http.Request) bool {
	ip := clientIP(r)
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, exists := l.limiters[ip]
	if !exists {
		if len(l.limiters) >= maxLimiters {
			util.Warn().
				Int("limiters", len(l.limiters)).
				Str("ip", ip).
				Msg("sign-in limiter at capacity, rejecting request")
			return false
		}
		entry = &limiterEntry{
			limiter:    rate.NewLimiter(rate.Limit(l.rpm)/60.0, l.burst),
			lastAccess: time.Now(),
		}
		l.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	return entry.limiter.Allow()
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictExpired()
		case <-l.quit:
			return
		}
	}
}

func (l *Limiter) evictExpired() {
	now := time.Now()
	l.mu.Lock()
	evicted := 0
	for key, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > limiterTTL {
			delete(l.limiters, key)
			evicted++
		}
	}
	remaining := len(l.limiters)
	l.mu.Unlock()
	if evicted > 0 {
		util.Debug().Int("evicted", evicted).Int("remaining", remaining).Msg("sign-in limiter cleanup")
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
