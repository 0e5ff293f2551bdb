package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"

	"inkwell/cfg"
	"inkwell/metrics"
	"inkwell/pkg/domain"
	"inkwell/svc/auth"
	"inkwell/svc/render"
	"inkwell/svc/session"
	"inkwell/svc/store"
)

type Hdl struct {
	docs     *store.Docs
	creds    *store.Creds
	guard    *auth.Guard
	sessions *session.Store
	renderer *render.Renderer
	cfg      *cfg.Cfg
	tmpl     *templates
}

// Index lists every document with its controls, plus sign-in state and the
// pending flash.
func (h *Hdl) Index(w http.ResponseWriter, r *http.Request) {
	files, err := h.docs.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	p.Files = files
	h.tmpl.render(w, http.StatusOK, "index", p)
}

// View serves a document: .txt verbatim as text/plain, .md rendered to HTML
// inside the layout. A missing document redirects home with a flash, never
// a 404.
func (h *Hdl) View(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	content, err := h.docs.Read(r.Context(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.redirectWithFlash(w, r, fmt.Sprintf("'%s' does not exist", filename))
			return
		}
		h.serverError(w, r, err)
		return
	}
	metrics.DocumentViewed.Inc()
	kind, ok := domain.KindForName(filename)
	if ok && h.renderer.RendersHTML(kind) {
		p, ok := h.pageFor(w, r)
		if !ok {
			return
		}
		p.Filename = filename
		p.Body = h.renderer.Markdown(content)
		h.tmpl.render(w, http.StatusOK, "view", p)
		return
	}
	w.Header().Set("Content-Type", domain.KindPlainText.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Hdl) NewForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	h.tmpl.render(w, http.StatusOK, "new", p)
}

func (h *Hdl) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	filename := r.PostFormValue("filename")
	msg, err := h.docs.ValidateNewName(r.Context(), filename)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if msg != "" {
		p, ok := h.pageFor(w, r)
		if !ok {
			return
		}
		p.Flash = msg
		p.Filename = filename
		h.tmpl.render(w, http.StatusUnprocessableEntity, "new", p)
		return
	}
	if err := h.docs.Write(r.Context(), filename, []byte{}); err != nil {
		h.serverError(w, r, err)
		return
	}
	metrics.DocumentCreated.Inc()
	hlog.FromRequest(r).Info().Str("document", filename).Msg("document created")
	h.redirectWithFlash(w, r, fmt.Sprintf("'%s' was created", filename))
}

func (h *Hdl) EditForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	filename := chi.URLParam(r, "filename")
	content, err := h.docs.Read(r.Context(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.redirectWithFlash(w, r, fmt.Sprintf("'%s' does not exist", filename))
			return
		}
		h.serverError(w, r, err)
		return
	}
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	p.Filename = filename
	p.Content = string(content)
	h.tmpl.render(w, http.StatusOK, "edit", p)
}

// Update overwrites the document wholesale with the submitted content,
// creating it when absent, exactly like a plain file write.
func (h *Hdl) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	filename := chi.URLParam(r, "filename")
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxDocumentSize*2)
	// A body past the cap fails the form parse; PostFormValue would swallow
	// that and hand back "", overwriting the document with nothing.
	if err := r.ParseForm(); err != nil {
		h.rejectTooLarge(w, r, filename, "")
		return
	}
	content := r.PostFormValue("content")
	if err := h.docs.Write(r.Context(), filename, []byte(content)); err != nil {
		if errors.Is(err, domain.ErrDocumentTooLarge) {
			h.rejectTooLarge(w, r, filename, content)
			return
		}
		h.serverError(w, r, err)
		return
	}
	metrics.DocumentUpdated.Inc()
	hlog.FromRequest(r).Info().Str("document", filename).Msg("document updated")
	h.redirectWithFlash(w, r, fmt.Sprintf("'%s' has been updated", filename))
}

func (h *Hdl) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	filename := chi.URLParam(r, "filename")
	if err := h.docs.Delete(r.Context(), filename); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.redirectWithFlash(w, r, fmt.Sprintf("'%s' does not exist", filename))
			return
		}
		h.serverError(w, r, err)
		return
	}
	metrics.DocumentDeleted.Inc()
	hlog.FromRequest(r).Info().Str("document", filename).Msg("document deleted")
	h.redirectWithFlash(w, r, fmt.Sprintf("'%s' was deleted", filename))
}

func (h *Hdl) Duplicate(w http.ResponseWriter, r *http.Request) {
	if !h.requireSignedIn(w, r) {
		return
	}
	filename := chi.URLParam(r, "filename")
	dup, err := h.docs.Duplicate(r.Context(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			h.redirectWithFlash(w, r, fmt.Sprintf("'%s' does not exist", filename))
			return
		}
		h.serverError(w, r, err)
		return
	}
	metrics.DocumentDuplicated.Inc()
	hlog.FromRequest(r).Info().Str("document", filename).Str("copy", dup).Msg("document duplicated")
	h.redirectWithFlash(w, r, fmt.Sprintf("'%s' was duplicated", filename))
}

func (h *Hdl) SignInForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	h.tmpl.render(w, http.StatusOK, "signin", p)
}

func (h *Hdl) SignIn(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	valid, err := h.creds.Verify(r.Context(), username, password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !valid {
		metrics.SignIns.WithLabelValues("failure").Inc()
		hlog.FromRequest(r).Warn().Str("username", username).Msg("failed sign-in")
		p, ok := h.pageFor(w, r)
		if !ok {
			return
		}
		p.Flash = domain.ErrInvalidCredentials.Msg
		p.Username = username
		h.tmpl.render(w, http.StatusUnprocessableEntity, "signin", p)
		return
	}
	id, sess := sessionFrom(r.Context())
	sess.Username = username
	sess.Flash = "Welcome!"
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	metrics.SignIns.WithLabelValues("success").Inc()
	hlog.FromRequest(r).Info().Str("username", username).Msg("signed in")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Hdl) SignOut(w http.ResponseWriter, r *http.Request) {
	id, sess := sessionFrom(r.Context())
	sess.Username = ""
	sess.Flash = "You have been signed out"
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Hdl) AccountForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	h.tmpl.render(w, http.StatusOK, "account", p)
}

func (h *Hdl) CreateAccount(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	code := r.PostFormValue("code")
	msg, err := h.guard.RegistrationError(r.Context(), username, password, code)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if msg == "" {
		if err := h.creds.Register(r.Context(), username, password); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				msg = domain.ErrUserExists.Msg
			} else {
				h.serverError(w, r, err)
				return
			}
		}
	}
	if msg != "" {
		p, ok := h.pageFor(w, r)
		if !ok {
			return
		}
		p.Flash = msg
		p.Username = username
		h.tmpl.render(w, http.StatusUnprocessableEntity, "account", p)
		return
	}
	metrics.Registrations.Inc()
	hlog.FromRequest(r).Info().Str("username", username).Msg("account created")
	id, sess := sessionFrom(r.Context())
	sess.Flash = "Account has been created"
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/users/signin", http.StatusFound)
}

// rejectTooLarge renders the edit form with a size error and leaves the
// stored document untouched.
func (h *Hdl) rejectTooLarge(w http.ResponseWriter, r *http.Request, filename, content string) {
	hlog.FromRequest(r).Warn().Str("document", filename).Msg("oversized update rejected")
	p, ok := h.pageFor(w, r)
	if !ok {
		return
	}
	p.Flash = "Document is too large"
	p.Filename = filename
	p.Content = content
	h.tmpl.render(w, http.StatusUnprocessableEntity, "edit", p)
}

// pageFor consumes the one-shot flash and persists the session before the
// page is rendered.
func (h *Hdl) pageFor(w http.ResponseWriter, r *http.Request) (page, bool) {
	id, sess := sessionFrom(r.Context())
	p := page{
		SignedIn: sess.SignedIn(),
		Username: sess.Username,
		Flash:    h.sessions.PopFlash(sess),
	}
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return page{}, false
	}
	return p, true
}

// requireSignedIn redirects anonymous clients home with the sign-in flash
// before any side effect runs. Returns false when the request was handled.
func (h *Hdl) requireSignedIn(w http.ResponseWriter, r *http.Request) bool {
	id, sess := sessionFrom(r.Context())
	if err := h.guard.RequireSignedIn(sess); err == nil {
		return true
	}
	sess.Flash = auth.FlashSignInRequired
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return false
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return false
}

func (h *Hdl) redirectWithFlash(w http.ResponseWriter, r *http.Request, msg string) {
	id, sess := sessionFrom(r.Context())
	sess.Flash = msg
	if err := h.sessions.Save(r.Context(), w, id, sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Hdl) serverError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
