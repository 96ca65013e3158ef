package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"fashionablylate/internal/adapters/email"
	web "fashionablylate/internal/adapters/http"
	"fashionablylate/internal/adapters/http/middleware"
	"fashionablylate/internal/adapters/metrics"
	"fashionablylate/internal/adapters/session"
	"fashionablylate/internal/adapters/storage"
	accountStore "fashionablylate/internal/adapters/storage/account"
	categoryStore "fashionablylate/internal/adapters/storage/category"
	contactStore "fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/adapters/storage/seed"
	"fashionablylate/internal/application/orchestrators"
	"fashionablylate/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("startup_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg))

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	m := metrics.New()
	timedDB := storage.NewTimedDB(db, m, cfg.SlowQueryMs)
	stores := web.Stores{
		CategoryStore: categoryStore.NewSQLiteStore(timedDB),
		ContactStore:  contactStore.NewSQLiteStore(timedDB),
		AccountStore:  accountStore.NewSQLiteStore(timedDB),
	}

	data, err := seed.Default()
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}
	seeded, err := orchestrators.ExecuteSeed(context.Background(), orchestrators.SeedDeps{
		CategoryStore: stores.CategoryStore,
		UserStore:     stores.AccountStore,
		ContactStore:  stores.ContactStore,
		Data:          data,
		Admin: orchestrators.SeedAdmin{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		},
		Demo: cfg.SeedDemo,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	slog.Info("seed_complete", "categories", seeded.Categories, "admin", seeded.Admin, "contacts", seeded.Contacts)

	store, closeStore, err := newSessionStore(cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()
	sessions := session.NewManager(store, cfg.Session.TTL, cfg.IsProduction())

	var sender email.Sender
	if cfg.Mail.ResendKey != "" {
		sender = email.NewResendSender(cfg.Mail.ResendKey, cfg.Mail.From)
		slog.Info("email_configured", "provider", "resend", "notify", len(cfg.Mail.NotifyTo))
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() && len(cfg.Mail.NotifyTo) > 0 {
			slog.Warn("config_warning", "message", "FL_RESEND_KEY is not set; staff notifications are disabled")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second)
	defer limiter.Close()

	handler := web.NewMux(web.Deps{
		Stores:            stores,
		Sessions:          sessions,
		Sender:            sender,
		NotifyTo:          cfg.Mail.NotifyTo,
		Metrics:           m,
		RateLimiter:       limiter,
		DB:                timedDB,
		CSRFKey:           cfg.CSRFKey,
		Secure:            cfg.IsProduction(),
		AllowRegistration: cfg.AllowRegistration,
		Location:          cfg.Location,
		SlowRequestMs:     cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
			"session_backend", cfg.Session.Backend,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger emits JSON in production and readable text elsewhere.
func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newSessionStore picks the configured session backend.
// The returned func releases backend connections.
func newSessionStore(cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.Backend != config.SessionBackendRedis {
		store := session.NewMemoryStore()
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := store.Sweep(); n > 0 {
						slog.Debug("session_sweep", "expired", n)
					}
				case <-done:
					return
				}
			}
		}()
		return store, func() { close(done) }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	store := session.NewRedisStore(client, session.DefaultRedisPrefix)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
	}
	return store, func() { client.Close() }, nil
}
