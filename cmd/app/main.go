package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"sunrisestay/internal/auth"
	"sunrisestay/internal/backend"
	"sunrisestay/internal/booking"
	"sunrisestay/internal/catalog"
	"sunrisestay/internal/config"
	"sunrisestay/internal/contact"
	"sunrisestay/internal/email"
	"sunrisestay/internal/logger"
	"sunrisestay/internal/server"
	"sunrisestay/internal/session"
	"sunrisestay/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.InitWithEnv(cfg.Env)
	defer logger.Sync()
	logger.Info("Starting SunriseStay", "env", cfg.Env, "backend", cfg.BackendURL)

	verifier, closeVerifier, err := newVerifier(cfg)
	if err != nil {
		logger.Fatalf("Failed to set up session verification: %v", err)
	}
	defer closeVerifier()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, contact cooldown and mail queue will fail until it is reachable", "addr", cfg.RedisAddr, "error", err)
	}
	pingCancel()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, auth.TokenFromContext)

	sessions := session.NewRegistry(booking.NewRepository(client), cfg.SessionTTL, cfg.BackendTimeout, cfg.IsProduction())
	defer sessions.Close()

	mailer := email.New(rdb, email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		Inbox:    cfg.ContactInbox,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	})

	srv := server.New(cfg, server.Deps{
		Verifier: verifier,
		Sessions: sessions,
		Profiles: user.NewService(user.NewRepository(client)),
		Catalog:  catalog.NewStore(catalog.NewRepository(client), cfg.CatalogTTL, cfg.BackendTimeout),
		Cooldown: contact.NewCooldown(contact.NewRedisStorage(rdb), cfg.ContactCooldown),
		Mailer:   mailer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mailer.Start(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Server stopped")
}

// newVerifier picks how session tokens are checked: the provider's JWKS when
// configured, else a shared HS256 secret, else no signature check at all.
func newVerifier(cfg *config.Config) (auth.Verifier, func(), error) {
	switch {
	case cfg.AuthJWKSURL != "":
		v, err := auth.NewJWKSVerifier(cfg.AuthJWKSURL, time.Hour)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	case cfg.AuthJWTSecret != "":
		v, err := auth.NewHMACVerifier(cfg.AuthJWTSecret)
		if err != nil {
			return nil, nil, err
		}
		return v, func() {}, nil
	default:
		logger.Warn("No AUTH_JWKS_URL or AUTH_JWT_SECRET set, session tokens are not signature-checked")
		return auth.PassthroughVerifier{}, func() {}, nil
	}
}
