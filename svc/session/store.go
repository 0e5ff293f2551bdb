package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"inkwell/pkg/domain"
)

// CookieName carries the signed session token.
const CookieName = "inkwell_session"

// Backend persists server-side session state keyed by session ID.
type Backend interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, id string, sess *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Store signs session IDs into cookie tokens and keeps the state in a
// backend. The cookie only ever holds id + HMAC; username and flash never
// leave the server.
type Store struct {
	key     []byte
	ttl     time.Duration
	backend Backend
	secure  bool
}

func NewStore(key []byte, ttl time.Duration, backend Backend, secure bool) (*Store, error) {
	if len(key) < 32 {
		return nil, errors.New("session key must be at least 32 bytes")
	}
	if ttl < time.Minute {
		return nil, errors.New("session ttl must be at least 1 minute")
	}
	if backend == nil {
		return nil, errors.New("session backend is required")
	}
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	return &Store{key: keyCopy, ttl: ttl, backend: backend, secure: secure}, nil
}

// Load resolves the request's session, creating a fresh one when the cookie
// is absent, tampered with, or expired.
func (s *Store) Load(ctx context.Context, r *http.Request) (string, *domain.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err == nil {
		if id, ok := s.verifyToken(cookie.Value); ok {
			sess, err := s.backend.Get(ctx, id)
			if err == nil {
				return id, sess, nil
			}
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return "", nil, err
			}
		}
	}
	id := uuid.New().String()
	sess := &domain.Session{ExpiresAt: time.Now().Add(s.ttl)}
	return id, sess, nil
}

// Save persists the session and refreshes the cookie.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, id string, sess *domain.Session) error {
	sess.ExpiresAt = time.Now().Add(s.ttl)
	if err := s.backend.Put(ctx, id, sess, s.ttl); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.signToken(id),
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PopFlash returns the one-shot flash and clears it. The caller persists the
// cleared session with Save.
func (s *Store) PopFlash(sess *domain.Session) string {
	msg := sess.Flash
	sess.Flash = ""
	return msg
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

func (s *Store) signToken(id string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(id))
	sig := mac.Sum(nil)
	return id + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (s *Store) verifyToken(token string) (string, bool) {
	id, sigB64, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(id))
	expected := mac.Sum(nil)
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return "", false
	}
	return id, true
}
