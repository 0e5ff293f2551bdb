package domain

import (
	"strings"
	"time"
)

// Kind is the render mode of a document, fixed at validation time by the
// filename extension.
type Kind int

const (
	KindPlainText Kind = iota
	KindMarkdown
)

var validExtensions = map[string]Kind{
	".txt": KindPlainText,
	".md":  KindMarkdown,
}

type Document struct {
	Name    string
	Kind    Kind
	Content []byte
}

func (k Kind) ContentType() string {
	if k == KindMarkdown {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// KindForName resolves the render mode from the filename extension.
// The second return is false for names outside the allowed extensions.
func KindForName(name string) (Kind, bool) {
	for ext, kind := range validExtensions {
		if strings.HasSuffix(name, ext) {
			return kind, true
		}
	}
	return KindPlainText, false
}

// DuplicateName derives the name for a copy by inserting "_copy" before the
// extension. The base is everything before the FIRST period, so a name with
// multiple periods loses its tail: "a.b.txt" becomes "a_copy.b". That
// matches the long-standing behavior and is pinned by tests; do not fix it
// here without changing them.
func DuplicateName(name string) string {
	base, ext, ok := strings.Cut(name, ".")
	if !ok {
		return name + "_copy"
	}
	return base + "_copy." + ext
}

type Session struct {
	Username  string    `json:"username,omitempty"`
	Flash     string    `json:"flash,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) SignedIn() bool {
	return s != nil && s.Username != ""
}
