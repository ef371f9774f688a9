package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/csrf"
	"github.com/spf13/cobra"

	"github.com/rahul4469/runtime-calculator/internal/config"
	"github.com/rahul4469/runtime-calculator/internal/controllers"
	"github.com/rahul4469/runtime-calculator/internal/crypto"
	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/middleware"
	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/internal/services"
	"github.com/rahul4469/runtime-calculator/internal/views"
	"github.com/rahul4469/runtime-calculator/migrations"
	"github.com/rahul4469/runtime-calculator/templates"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = 10 * time.Minute
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewZapLogger(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Setup the store ---------------
	backend, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	// Setup Services ---------------
	keyer, err := crypto.NewSessionKeyer([]byte(cfg.Security.SessionSecret))
	if err != nil {
		return err
	}

	var chooser services.Chooser
	if cfg.Analyzer.Seed != 0 {
		chooser = services.NewSeededChooser(cfg.Analyzer.Seed)
	}
	analyzer := services.NewSimulatedAnalyzer(cfg.Analyzer.Delay, chooser)
	submissions := services.NewSubmissionService(backend.store, analyzer, logger)

	if backend.expirer != nil {
		go runJanitor(ctx, backend.expirer, logger)
	}

	// Setup Controllers ---------------
	tpl, err := views.ParseFS(templates.FS, logger, "pages/analyzer.gohtml")
	if err != nil {
		return err
	}
	analyzeCtrl := controllers.NewAnalyzeController(submissions, tpl, logger, cfg.IsDevelopment())

	sessions := middleware.NewSessionMiddleware(
		keyer,
		cfg.Security.SessionCookieName,
		cfg.Security.SessionDuration,
		cfg.Security.SecureCookies,
		logger,
	)

	csrfMw := csrf.Protect(
		[]byte(cfg.Security.CSRFSecret),
		csrf.Secure(cfg.Security.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.Security.TrustedOrigins),
	)

	// Setup router and routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", controllers.HealthCheck(backend.health, logger))

	// stateless JSON API, no cookies involved
	r.Post("/api/analyze", analyzeCtrl.PostAPIAnalyze)

	// ---- Page Routes ----
	r.Group(func(r chi.Router) {
		if !cfg.Security.SecureCookies {
			r.Use(middleware.PlaintextHTTP)
		}
		r.Use(csrfMw)
		r.Use(sessions.SetSession)
		r.Use(sessions.RequireSession)

		r.Get("/", analyzeCtrl.GetAnalyze)
		r.Post("/analyze", analyzeCtrl.PostAnalyze)
		r.Post("/clear", analyzeCtrl.PostClear)
		r.Post("/draft", analyzeCtrl.PostDraft)
		r.Get("/api/state", analyzeCtrl.GetState)
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the Server
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", srv.Addr,
			"env", cfg.Server.Environment,
			"store", cfg.Store.Backend,
			"analyzer_delay", cfg.Analyzer.Delay,
		)
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

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	// let in-flight analyses record their verdicts before the store closes
	if err := submissions.Shutdown(shutdownCtx); err != nil {
		logger.Warn("analyses still running at shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// expirer is implemented by stores that need expired states swept out.
type expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type storeBackend struct {
	store   models.PageStore
	health  controllers.HealthChecker
	expirer expirer
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*storeBackend, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		logger.Info("connecting to database")
		db, err := models.NewDatabase(ctx, models.DefaultDatabaseConfig(cfg.Store.DatabaseURL))
		if err != nil {
			return nil, err
		}
		if err := db.MigrateFS(migrations.FS, "."); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database connected and migrated")

		store := models.NewPostgresStore(db.Pool, cfg.Store.TTL)
		return &storeBackend{store: store, health: store, expirer: store, close: db.Close}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		store := models.NewRedisStore(client, cfg.Store.TTL)
		if err := store.Health(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("redis connected", "addr", cfg.Store.Redis.Addr)

		// redis expires keys itself
		return &storeBackend{store: store, health: store, close: func() { client.Close() }}, nil

	default:
		store := models.NewMemoryStore(cfg.Store.TTL)
		return &storeBackend{store: store, expirer: store, close: func() {}}, nil
	}
}

// runJanitor periodically removes expired page states until ctx is done.
func runJanitor(ctx context.Context, store expirer, logger logging.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Error("failed to delete expired page states", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("deleted expired page states", "count", n)
			}
		}
	}
}
