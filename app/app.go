package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventsports/minha-inscricao/app/middleware"
	leaderboardservice "github.com/eventsports/minha-inscricao/app/modules/leaderboard/application"
	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardhandlers "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/handlers"
	"github.com/eventsports/minha-inscricao/config"
	"github.com/eventsports/minha-inscricao/db/bundb"
	"github.com/eventsports/minha-inscricao/internal/groupcache"
	"github.com/eventsports/minha-inscricao/internal/metrics"
)

// App wires configuration, storage, services, and the HTTP server.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Server *http.Server

	db *bundb.DBService
}

// NewApp initializes the application with the necessary services and
// configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	svc := leaderboardservice.NewLeaderboardService(
		dbService,
		dbService.ResultDB,
		dbService.CatalogDB,
		dbService.ParticipantDB,
		groupcache.New(),
		m,
		logger,
		scoring.TiePolicyCompetition,
	)
	handlers := leaderboardhandlers.NewLeaderboardHandlers(svc, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.Metrics(m))
	router.Use(limiter.Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbService.GetDB().PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Mount("/api/leaderboard", handlers.Routes(cfg.JWT.Secret))

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		Cfg:    cfg,
		Logger: logger,
		Server: server,
		db:     dbService,
	}, nil
}

// Run serves HTTP until the server is shut down.
func (a *App) Run() error {
	a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
	if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the database pool.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
