package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"

	"inkwell/cfg"
	"inkwell/svc/auth"
	"inkwell/svc/lim"
	"inkwell/svc/render"
	"inkwell/svc/session"
	"inkwell/svc/store"
	"inkwell/svc/util"
)

type Server struct {
	router     *chi.Mux
	docs       *store.Docs
	rdb        *session.Redis
	cfg        *cfg.Cfg
	httpServer *http.Server
}

type Deps struct {
	Docs     *store.Docs
	Creds    *store.Creds
	Guard    *auth.Guard
	Sessions *session.Store
	Renderer *render.Renderer
	Limiter  *lim.Limiter
	Redis    *session.Redis
}

func NewServer(c *cfg.Cfg, d Deps) *Server {
	r := chi.NewRouter()
	mw := NewMw(d.Sessions, d.Limiter, c)
	s := &Server{
		router: r,
		docs:   d.Docs,
		rdb:    d.Redis,
		cfg:    c,
		httpServer: &http.Server{
			Addr:           ":" + c.Port,
			Handler:        r,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 256 * 1024,
		},
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.Recoverer)
		r.Get("/health", s.Health)
		r.Get("/ready", s.Ready)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Recoverer)
		r.Handle("/metrics", mw.BasicAuthMetrics(promhttp.Handler()))
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Recoverer)
		r.Use(mw.RequestID)
		r.Use(hlog.NewHandler(util.GetLogger()))
		r.Use(hlog.AccessHandler(func(req *http.Request, status, size int, dur time.Duration) {
			hlog.FromRequest(req).Info().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Int("status", status).
				Int("size", size).
				Dur("duration", dur).
				Str("request_id", util.GetRequestID(req.Context())).
				Msg("http request")
		}))
		r.Use(mw.SecurityHeaders)
		r.Use(mw.Metrics)
		r.Use(mw.WithSession)

		hdl := &Hdl{
			docs:     d.Docs,
			creds:    d.Creds,
			guard:    d.Guard,
			sessions: d.Sessions,
			renderer: d.Renderer,
			cfg:      c,
			tmpl:     parseTemplates(),
		}
		r.Get("/", hdl.Index)
		r.Get("/users/signin", hdl.SignInForm)
		r.With(mw.RateLimitSignIn).Post("/users/signin", hdl.SignIn)
		r.Get("/users/create_account", hdl.AccountForm)
		r.Post("/users/create_account", hdl.CreateAccount)
		r.Post("/users/signout", hdl.SignOut)
		r.Get("/new", hdl.NewForm)
		r.Post("/create", hdl.Create)
		r.Get("/{filename}", hdl.View)
		r.Get("/{filename}/edit", hdl.EditForm)
		r.Post("/{filename}", hdl.Update)
		r.Post("/{filename}/delete", hdl.Delete)
		r.Post("/{filename}/duplicate", hdl.Duplicate)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	util.Info().Str("port", s.cfg.Port).Msg("starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		util.Error().Err(err).Str("port", s.cfg.Port).Msg("server failed to start")
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
