package lim

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(30, 3)
	defer l.Stop()

	r := httptest.NewRequest("POST", "/users/signin", nil)
	r.RemoteAddr = "10.0.0.1:51234"
	for i := 0; i < 3; i++ {
		if !l.Allow(r) {
			t.Fatalf("request %d within burst was rejected", i+1)
		}
	}
	if l.Allow(r) {
		t.Error("request beyond burst was allowed")
	}
}

func TestAllowIsPerIP(t *testing.T) {
	l := New(30, 1)
	defer l.Stop()

	a := httptest.NewRequest("POST", "/users/signin", nil)
	a.RemoteAddr = "10.0.0.1:51234"
	b := httptest.NewRequest("POST", "/users/signin", nil)
	b.RemoteAddr = "10.0.0.2:51234"

	if !l.Allow(a) {
		t.Fatal("first request from a was rejected")
	}
	if l.Allow(a) {
		t.Error("second request from a should exhaust its burst")
	}
	if !l.Allow(b) {
		t.Error("b must not be throttled by a's bucket")
	}
}

func TestEvictExpired(t *testing.T) {
	l := New(30, 1)
	defer l.Stop()

	r := httptest.NewRequest("POST", "/users/signin", nil)
	r.RemoteAddr = "10.0.0.1:51234"
	l.Allow(r)

	l.mu.Lock()
	l.limiters["10.0.0.1"].lastAccess = time.Now().Add(-limiterTTL - time.Minute)
	l.mu.Unlock()

	l.evictExpired()

	l.mu.Lock()
	_, exists := l.limiters["10.0.0.1"]
	l.mu.Unlock()
	if exists {
		t.Error("stale limiter entry was not evicted")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/users/signin", nil)
	r.RemoteAddr = "192.0.2.7:4000"
	if got := clientIP(r); got != "192.0.2.7" {
		t.Errorf("clientIP = %q, want 192.0.2.7", got)
	}
	r.RemoteAddr = "bare-host"
	if got := clientIP(r); got != "bare-host" {
		t.Errorf("clientIP = %q, want bare-host", got)
	}
}
