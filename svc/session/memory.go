package session

import (
	"context"
	"sync"
	"time"

	"inkwell/pkg/domain"
	"inkwell/svc/util"
)

const janitorInterval = 5 * time.Minute

// Memory is the default backend: an in-process map with a janitor that
// evicts expired sessions. State is lost on restart, acceptable for the
// tool's single-process scope.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	quit     chan struct{}
	stopOnce sync.Once
}

func NewMemory() *Memory {
	m := &Memory{
		sessions: make(map[string]*domain.Session),
		quit:     make(chan struct{}),
	}
	go m.janitorLoop()
	return m
}

func (m *Memory) Get(ctx context.Context, id string) (*domain.Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || time.Now().After(sess.ExpiresAt) {
		delete(m.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *Memory) Put(ctx context.Context, id string, sess *domain.Session, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	cp := *sess
	cp.ExpiresAt = time.Now().Add(ttl)
	m.mu.Lock()
	m.sessions[id] = &cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}

func (m *Memory) janitorLoop() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evictExpired()
		case <-m.quit:
			return
		}
	}
}

func (m *Memory) evictExpired() {
	now := time.Now()
	m.mu.Lock()
	evicted := 0
	for id, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			delete(m.sessions, id)
			evicted++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()
	if evicted > 0 {
		util.Debug().Int("evicted", evicted).Int("remaining", remaining).Msg("session janitor sweep")
	}
}
