package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tweetpanel/panel-api/internal/adapter/api"
	"github.com/tweetpanel/panel-api/internal/adapter/api/middleware"
	"github.com/tweetpanel/panel-api/internal/adapter/metrics"
	"github.com/tweetpanel/panel-api/internal/adapter/source/attached"
	"github.com/tweetpanel/panel-api/internal/adapter/source/elastic"
	"github.com/tweetpanel/panel-api/internal/adapter/source/postgres"
	"github.com/tweetpanel/panel-api/internal/adapter/source/rediscache"
	"github.com/tweetpanel/panel-api/internal/adapter/source/sqlite"
	"github.com/tweetpanel/panel-api/internal/domain"
	"github.com/tweetpanel/panel-api/internal/pkg/config"
	"github.com/tweetpanel/panel-api/internal/pkg/logger"
	"github.com/tweetpanel/panel-api/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewQueryMetrics()
	catalog := domain.NewCatalog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	postSource, err := buildPostSource(cfg, log, m)
	if err != nil {
		log.Error("failed to initialize post source", "error", err)
		os.Exit(1)
	}

	demographicSource, cleanup, err := buildDemographicSource(ctx, cfg, log, m)
	if err != nil {
		log.Error("failed to initialize demographic source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	aggregator := usecase.NewAggregator(catalog)
	searchUseCase := usecase.NewKeywordSearchUseCase(
		postSource,
		demographicSource,
		aggregator,
		log,
		cfg.MinDisplayedCount,
		cfg.FillZeros,
	)

	router := api.NewRouter(cfg, log, catalog, searchUseCase, m)
	apiServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(log)(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("admin server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("api server shutdown failed", "error", err)
		}
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Error("admin server shutdown failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("servers shut down gracefully")
}

func buildPostSource(cfg *config.Config, log *slog.Logger, m *metrics.QueryMetrics) (domain.PostSource, error) {
	switch cfg.PostSource {
	case config.PostSourceElasticsearch:
		return elastic.NewPostSource(strings.Split(cfg.ESAddrs, ","), cfg.ESIndex, log, m)
	case config.PostSourceAttached:
		return attached.NewPostSource(nil), nil
	}
	return nil, fmt.Errorf("unknown post source %q", cfg.PostSource)
}

func buildDemographicSource(ctx context.Context, cfg *config.Config, log *slog.Logger, m *metrics.QueryMetrics) (domain.DemographicSource, func(), error) {
	var (
		source  domain.DemographicSource
		cleanup = func() {}
	)

	switch cfg.DemographicSource {
	case config.DemographicSourcePostgres:
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		source = postgres.NewDemographicSource(db, log)
		cleanup = func() { db.Close() }
	case config.DemographicSourceSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		source = s
		cleanup = func() { s.Close() }
	case config.DemographicSourceAttached:
		source = attached.NewDemographicSource(nil)
	default:
		return nil, nil, fmt.Errorf("unknown demographic source %q", cfg.DemographicSource)
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("could not connect to redis, cache will degrade to pass-through", "error", err)
		}
		source = rediscache.NewDemographicCache(redisClient, source, cfg.DemographicCacheTTL, log, m)
	}

	return source, cleanup, nil
}
