package store

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"inkwell/pkg/domain"
)

// Creds is the flat-file credential store: a YAML file mapping username to
// bcrypt hash, rewritten wholesale on every registration. Last write wins;
// the single-operator scope accepts that.
type Creds struct {
	path string
	cost int
}

func NewCreds(path string) (*Creds, error) {
	if path == "" {
		return nil, errors.New("credentials path is required")
	}
	return &Creds{path: path, cost: bcrypt.DefaultCost}, nil
}

// Load reads the username→hash mapping. A missing file is an empty store.
func (c *Creds) Load(ctx context.Context) (map[string]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrap(err, "read credentials file")
	}
	creds := map[string]string{}
	if err := yaml.Unmarshal(raw, &creds); err != nil {
		return nil, errors.Wrap(err, "parse credentials file")
	}
	return creds, nil
}

// Verify reports whether the username exists and the password matches its
// stored bcrypt hash. Comparison is delegated to bcrypt, never a string
// compare of plaintext.
func (c *Creds) Verify(ctx context.Context, username, password string) (bool, error) {
	creds, err := c.Load(ctx)
	if err != nil {
		return false, err
	}
	hash, ok := creds[username]
	if !ok {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// Register hashes the password and persists the updated mapping. Validation
// (empty fields, duplicate username, registration code) happens in the auth
// guard before this is called; a duplicate here is still rejected.
func (c *Creds) Register(ctx context.Context, username, password string) error {
	creds, err := c.Load(ctx)
	if err != nil {
		return err
	}
	if _, exists := creds[username]; exists {
		return domain.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	creds[username] = string(hash)
	out, err := yaml.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "encode credentials")
	}
	if err := os.WriteFile(c.path, out, 0o600); err != nil {
		return errors.Wrap(err, "write credentials file")
	}
	return nil
}
