package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/addressbook/internal"
	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/addressbook"
	"github.com/dukerupert/addressbook/internal/cookie"
	"github.com/dukerupert/addressbook/internal/events"
	"github.com/dukerupert/addressbook/internal/handler"
	"github.com/dukerupert/addressbook/internal/handler/api"
	"github.com/dukerupert/addressbook/internal/handler/finder"
	"github.com/dukerupert/addressbook/internal/middleware"
	"github.com/dukerupert/addressbook/internal/router"
	"github.com/dukerupert/addressbook/internal/routes"
	"github.com/dukerupert/addressbook/internal/session"
	"github.com/dukerupert/addressbook/internal/telemetry"
	"github.com/dukerupert/addressbook/web"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// ==========================================================================
	// Address book
	// ==========================================================================

	book, closeBook, err := openBook(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBook()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		}, logger)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS connection established")
	}
	book = addressbook.NewNotifyingBook(book, publisher, logger)

	// ==========================================================================
	// Lookup client, metrics and sessions
	// ==========================================================================

	lookuper, err := address.NewClient(address.ClientConfig{
		BaseURL: cfg.Lookup.URL,
		HTTPClient: &http.Client{
			Timeout:   cfg.Lookup.Timeout,
			Transport: &telemetry.HTTPTransport{},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize lookup client: %w", err)
	}
	logger.Info("Lookup client configured", "url", cfg.Lookup.URL, "timeout", cfg.Lookup.Timeout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics("addressbook", registry)
	finderMetrics := telemetry.NewFinderMetrics("addressbook", registry)

	sessions := session.NewStore(func(id string) *session.Controller {
		return session.NewController(session.Deps{
			Lookuper: lookuper,
			Book:     book,
			Recorder: finderMetrics,
			Logger:   logger.With("session_id", id),
		})
	}, cfg.Session.TTL)

	sweeper := session.NewSweeper(sessions, session.SweeperConfig{Interval: cfg.Session.SweepInterval}, logger)
	sweeper.OnSweep = finderMetrics.SetActiveSessions
	go sweeper.Start(ctx)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiterConfig := middleware.LookupRateLimiterConfig()
	limiterConfig.RequestsPerSecond = cfg.Lookup.RequestsPerSecond
	limiterConfig.BurstSize = cfg.Lookup.Burst
	limiterConfig.KeyFunc = middleware.ClientIPBehind(trustedProxies)
	lookupLimiter := middleware.NewRateLimiter(limiterConfig)
	go lookupLimiter.Run(ctx)

	// Load templates with renderer
	logger.Info("Loading templates...")
	renderer, err := handler.NewRenderer(web.Templates())
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Templates loaded successfully")

	// ==========================================================================
	// Router
	// ==========================================================================

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env != "prod" {
		securityConfig.HSTSMaxAge = 0
	}

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.Timeout(middleware.DefaultTimeout),
	)

	// Static files
	r.Static("/static/", web.Static())

	// Metrics endpoint (should be protected in production via firewall)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterFinderRoutes(r, routes.FinderDeps{
		Handler:       finder.NewHandler(renderer, book),
		Sessions:      sessions,
		Cookies:       cookie.NewConfig(cfg.Session.CookieDomain, cfg.Session.CookieSecure),
		LookupLimiter: lookupLimiter,
	})
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		AddressBookHandler: api.NewAddressBookHandler(book),
	})

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

// openBook returns the Postgres address book when DATABASE_URL is set and
// the in-memory one otherwise. The returned func releases its connections.
func openBook(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (addressbook.Book, func(), error) {
	if cfg.InMemory() {
		logger.Info("DATABASE_URL not set, keeping the address book in memory")
		return addressbook.NewMemoryBook(), func() {}, nil
	}

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return addressbook.NewPostgresBook(pool), pool.Close, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
