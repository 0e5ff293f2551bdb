package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"inkwell/cfg"
	"inkwell/metrics"
	"inkwell/svc/auth"
	"inkwell/svc/lim"
	"inkwell/svc/render"
	"inkwell/svc/session"
	"inkwell/svc/store"
	"inkwell/svc/util"
	"inkwell/svc/web"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		util.Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	if err := cfg.Validate(c); err != nil {
		util.Fatal().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	defer c.Wipe()
	util.InitLog(c.LogLevel, c.Environment == "development")
	util.Info().Str("environment", c.Environment).Msg("starting inkwell")
	metrics.Init()

	sessionKey := []byte(c.SessionKey.Value())
	if len(sessionKey) < 32 {
		// Development convenience: an ephemeral key means sessions do not
		// survive restarts. Production requires SESSION_KEY (cfg.Validate).
		sessionKey = make([]byte, 32)
		if _, err := rand.Read(sessionKey); err != nil {
			util.Fatal().Err(err).Msg("failed to generate session key")
			os.Exit(1)
		}
		util.Warn().
			Str("key", base64.StdEncoding.EncodeToString(sessionKey)[:8]+"...").
			Msg("SESSION_KEY not set, using ephemeral key")
	}

	docs, err := store.NewDocs(c.DataDir, c.MaxDocumentSize)
	if err != nil {
		util.Fatal().Err(err).Msg("failed to initialize document store")
		os.Exit(1)
	}
	util.Info().Str("dir", c.DataDir).Msg("document store initialized")

	creds, err := store.NewCreds(c.CredentialsPath)
	if err != nil {
		util.Fatal().Err(err).Msg("failed to initialize credential store")
		os.Exit(1)
	}
	util.Info().Str("path", c.CredentialsPath).Msg("credential store initialized")

	guard, err := auth.NewGuard(creds, c.RegistrationCode.Value())
	if err != nil {
		util.Fatal().Err(err).Msg("failed to initialize auth guard")
		os.Exit(1)
	}

	var backend session.Backend
	var rdb *session.Redis
	if c.RedisURL != "" {
		rdb, err = session.NewRedis(c.RedisURL, c)
		if err != nil {
			if c.Environment == "production" {
				util.Fatal().Err(err).Msg("CRITICAL: Redis required in production when REDIS_URL is set")
				os.Exit(1)
			}
			util.Warn().Err(err).Msg("redis unavailable (dev mode), falling back to memory sessions")
		} else {
			util.Info().Msg("redis session backend connected")
			backend = rdb
		}
	}
	var mem *session.Memory
	if backend == nil {
		mem = session.NewMemory()
		backend = mem
	}
	if rdb != nil {
		defer rdb.Close()
	}
	if mem != nil {
		defer mem.Stop()
	}

	sessions, err := session.NewStore(sessionKey, c.SessionTTL, backend, c.Environment == "production")
	if err != nil {
		util.Fatal().Err(err).Msg("failed to initialize session store")
		os.Exit(1)
	}

	renderer, err := render.New(c.RenderCacheSize)
	if err != nil {
		util.Fatal().Err(err).Msg("failed to create renderer")
		os.Exit(1)
	}
	util.Info().Int("cache_size", c.RenderCacheSize).Msg("renderer initialized")

	limiter := lim.New(c.RateLimit.SigninRPM, c.RateLimit.SigninBurst)
	defer limiter.Stop()
	util.Info().
		Int("rpm", c.RateLimit.SigninRPM).
		Int("burst", c.RateLimit.SigninBurst).
		Msg("sign-in rate limiter initialized")

	server := web.NewServer(c, web.Deps{
		Docs:     docs,
		Creds:    creds,
		Guard:    guard,
		Sessions: sessions,
		Renderer: renderer,
		Limiter:  limiter,
		Redis:    rdb,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		util.Info().Msg("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	util.Info().Str("port", c.Port).Msg("server starting")
	if err := g.Wait(); err != nil {
		util.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	util.Info().Msg("shutdown complete")
}
