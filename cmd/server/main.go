package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ssogate/internal/apps"
	"ssogate/internal/auth/handler"
	"ssogate/internal/auth/metrics"
	"ssogate/internal/auth/models"
	"ssogate/internal/auth/notify"
	"ssogate/internal/auth/service"
	"ssogate/internal/auth/session"
	guestStore "ssogate/internal/auth/store/guest"
	tokenStore "ssogate/internal/auth/store/token"
	userStore "ssogate/internal/auth/store/user"
	verificationStore "ssogate/internal/auth/store/verification"
	"ssogate/internal/auth/workers/cleanup"
	"ssogate/internal/platform/config"
	"ssogate/internal/platform/database"
	"ssogate/internal/platform/logger"
	httptransport "ssogate/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing ssogate",
		"addr", cfg.Addr,
		"persistent_store", cfg.DatabaseURL != "",
	)

	pool, err := database.New(database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var (
		users  service.UserStore
		guests service.GuestStore
		tokens interface {
			service.TokenStore
			cleanup.TokenStore
		}
		pins interface {
			service.VerificationStore
			cleanup.VerificationStore
		}
		health httptransport.HealthChecker
	)
	if pool != nil {
		users = userStore.NewPostgres(pool.DB())
		guests = guestStore.NewPostgres(pool.DB())
		tokens = tokenStore.NewPostgres(pool.DB())
		pins = verificationStore.NewPostgres(pool.DB())
		health = pool
		defer pool.Close()
	} else {
		log.Warn("no database configured, running on in-memory stores")
		users = userStore.NewMemory()
		guests = guestStore.NewMemory()
		tokens = tokenStore.NewMemory()
		pins = verificationStore.NewMemory()
	}

	var notifier notify.Notifier
	if cfg.NotifyEndpoint != "" {
		notifier = notify.NewHTTPRelay(cfg.NotifyEndpoint, cfg.NotifyTimeout)
	} else {
		log.Warn("no notify endpoint configured, recording notifications in memory")
		notifier = notify.NewMemory()
	}

	authMetrics := metrics.New()
	svc := service.NewService(users, guests, tokens, pins,
		service.WithLogger(log),
		service.WithMetrics(authMetrics),
		service.WithNotifier(notifier),
		service.WithTTLPolicy(models.TTLPolicy{
			UserSession:  cfg.UserSessionTTL,
			GuestSession: cfg.GuestSessionTTL,
			UserToken:    cfg.UserTokenTTL,
			GuestToken:   cfg.GuestTokenTTL,
			PinMaxAge:    cfg.PinMaxAge,
		}),
	)

	codec := session.NewCodec(cfg.SessionSigningKey, cfg.SessionCookieName)
	h := handler.New(svc, codec, log)
	router := httptransport.NewRouter(h.Register, apps.Default(), health, log)

	janitor, err := cleanup.New(tokens, pins, cfg.PinMaxAge,
		cleanup.WithInterval(cfg.CleanupInterval),
		cleanup.WithLogger(log),
		cleanup.WithMetrics(authMetrics),
	)
	if err != nil {
		log.Error("cleanup worker setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := janitor.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
