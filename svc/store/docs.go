package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"inkwell/pkg/domain"
)

// Docs is the flat-file document store. Every document is one file in the
// data directory; the filename is the document identifier.
type Docs struct {
	dir     string
	maxSize int64
}

func NewDocs(dir string, maxSize int64) (*Docs, error) {
	if dir == "" {
		return nil, errors.New("document directory is required")
	}
	if maxSize <= 0 {
		return nil, errors.New("max document size must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create document directory")
	}
	return &Docs{dir: dir, maxSize: maxSize}, nil
}

// List returns the filenames in the document directory, sorted
// lexicographically for deterministic pages.
func (d *Docs) List(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *Docs) Read(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, errors.Wrap(err, "read document")
	}
	return content, nil
}

// Write overwrites (or creates) the document with exactly the given bytes.
func (d *Docs) Write(ctx context.Context, name string, content []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if int64(len(content)) > d.maxSize {
		return domain.ErrDocumentTooLarge
	}
	path, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrap(err, "write document")
	}
	return nil
}

func (d *Docs) Delete(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	path, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrDocumentNotFound
		}
		return errors.Wrap(err, "delete document")
	}
	return nil
}

func (d *Docs) Exists(ctx context.Context, name string) (bool, error) {
	path, err := d.resolve(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "stat document")
	}
	return true, nil
}

// Duplicate copies a document under its derived copy name (see
// domain.DuplicateName) and returns the new name.
func (d *Docs) Duplicate(ctx context.Context, name string) (string, error) {
	content, err := d.Read(ctx, name)
	if err != nil {
		return "", err
	}
	dup := domain.DuplicateName(name)
	if err := d.Write(ctx, dup, content); err != nil {
		return "", err
	}
	return dup, nil
}

// ValidateNewName returns a user-facing message when the name cannot be used
// for a new document, or "" when it can.
func (d *Docs) ValidateNewName(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "A name is required", nil
	}
	if _, ok := domain.KindForName(name); !ok {
		return "Filename must include a valid extension", nil
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return "Filename must include a valid extension", nil
	}
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if exists {
		return fmt.Sprintf("'%s' already exists", name), nil
	}
	return "", nil
}

// resolve confines name to the data directory. The router keeps slashes out
// of the filename parameter, this is the second line.
func (d *Docs) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", domain.ErrDocumentNotFound
	}
	return filepath.Join(d.dir, name), nil
}
