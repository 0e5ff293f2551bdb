package auth

import (
	"context"

	"github.com/pkg/errors"

	"inkwell/pkg/domain"
	"inkwell/svc/store"
)

// FlashSignInRequired is set on the session when an unauthenticated client
// hits a mutating route.
const FlashSignInRequired = "You must be signed in to do that"

// Guard gates mutating operations on a signed-in session and owns the
// registration rules.
type Guard struct {
	creds            *store.Creds
	registrationCode string
}

func NewGuard(creds *store.Creds, registrationCode string) (*Guard, error) {
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	if registrationCode == "" {
		return nil, errors.New("registration code is required")
	}
	return &Guard{creds: creds, registrationCode: registrationCode}, nil
}

func (g *Guard) IsSignedIn(sess *domain.Session) bool {
	return sess.SignedIn()
}

// RequireSignedIn returns ErrAuthRequired for anonymous sessions. Handlers
// translate that into the sign-in flash and a redirect home before any side
// effect runs.
func (g *Guard) RequireSignedIn(sess *domain.Session) error {
	if !sess.SignedIn() {
		return domain.ErrAuthRequired
	}
	return nil
}

// RegistrationError returns the first applicable validation message, in
// priority order, or "" when the registration may proceed. The registration
// code is a single static shared secret with no expiry or per-invite
// scoping; a deliberately simple scheme for this tool's scope.
func (g *Guard) RegistrationError(ctx context.Context, username, password, code string) (string, error) {
	if username == "" || password == "" || code == "" {
		return "Please complete the form", nil
	}
	creds, err := g.creds.Load(ctx)
	if err != nil {
		return "", err
	}
	if _, taken := creds[username]; taken {
		return "Username is already taken", nil
	}
	if code != g.registrationCode {
		return "Invalid registration code", nil
	}
	return "", nil
}
