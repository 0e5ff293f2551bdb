package domain

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrDocumentNotFound   = NewErr("DOCUMENT_NOT_FOUND", "document not found", http.StatusFound)
	ErrInvalidName        = NewErr("INVALID_NAME", "invalid document name", http.StatusUnprocessableEntity)
	ErrAuthRequired       = NewErr("AUTH_REQUIRED", "You must be signed in to do that", http.StatusFound)
	ErrInvalidCredentials = NewErr("INVALID_CREDENTIALS", "Invalid Credentials", http.StatusUnprocessableEntity)
	ErrUserExists         = NewErr("USER_EXISTS", "Username is already taken", http.StatusUnprocessableEntity)
	ErrDocumentTooLarge   = NewErr("DOCUMENT_TOO_LARGE", "document too large", http.StatusBadRequest)
	ErrSessionNotFound    = NewErr("SESSION_NOT_FOUND", "session not found", http.StatusBadRequest)
	ErrInternalServer     = NewErr("INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
)

// Err carries a stable code and the HTTP status the handler boundary maps it
// to. NotFound and AuthRequired map to a redirect (302), never a 404/403.
type Err struct {
	Code   string
	Msg    string
	Status int
}

func (e *Err) Error() string { return e.Msg }

func NewErr(code, msg string, status int) *Err {
	return &Err{Code: code, Msg: msg, Status: status}
}

func Status(err error) int {
	if e, ok := err.(*Err); ok {
		return e.Status
	}
	if e, ok := errors.Cause(err).(*Err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
