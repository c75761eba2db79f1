package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalog-search-gateway/internal/config"
	dbredis "github.com/kailas-cloud/catalog-search-gateway/internal/db/redis"
	logpkg "github.com/kailas-cloud/catalog-search-gateway/internal/logger"
	"github.com/kailas-cloud/catalog-search-gateway/internal/metrics"
	"github.com/kailas-cloud/catalog-search-gateway/internal/querybuilder"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/cache"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/catalog"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/engine"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/ratelimit"
	"github.com/kailas-cloud/catalog-search-gateway/internal/resilience"
	"github.com/kailas-cloud/catalog-search-gateway/internal/transport/httpapi"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/facets"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/health"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/search"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/suggest"
	"github.com/kailas-cloud/catalog-search-gateway/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting catalog search gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", cfg.Env),
		zap.Int("http_port", cfg.Port),
	)

	ctx := context.Background()
	connectTimeout := time.Duration(cfg.TimeoutConnect) * time.Second

	redisStore, err := dbredis.NewStore(dbredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		logger.Fatal("failed to create redis store", zap.Error(err))
	}
	defer redisStore.Close()
	if err := redisStore.WaitForReady(ctx, connectTimeout); err != nil {
		logger.Fatal("redis not ready", zap.Error(err))
	}
	logger.Info("connected to redis")

	breakerCfg := resilience.Config{
		ErrorThreshold:  cfg.CircuitErrorThreshold,
		VolumeThreshold: cfg.CircuitVolumeThreshold,
		ResetTimeout:    time.Duration(cfg.CircuitResetTimeout) * time.Second,
		Window:          10 * time.Second,
		Buckets:         10,
	}

	engineBreaker := resilience.New("engine-search", breakerCfg)
	catalogBreaker := resilience.New("catalog-variants", breakerCfg)

	engineClient, err := engine.New(
		engine.Config{Node: cfg.OpenSearchNode, Index: cfg.OpenSearchIndexVariants},
		engineBreaker,
		time.Duration(cfg.TimeoutOpenSearch)*time.Second,
	)
	if err != nil {
		logger.Fatal("failed to create engine client", zap.Error(err))
	}
	if err := engineClient.Ping(ctx); err != nil {
		logger.Warn("opensearch not reachable at startup", zap.Error(err))
	}

	catalogStore, err := catalog.New(
		ctx,
		catalog.Config{DatabaseURL: cfg.DatabaseURL},
		catalogBreaker,
		time.Duration(cfg.TimeoutDatabase)*time.Second,
	)
	if err != nil {
		logger.Fatal("failed to create catalog store", zap.Error(err))
	}
	defer catalogStore.Close()
	if err := catalogStore.Ping(ctx); err != nil {
		logger.Warn("catalog database not reachable at startup", zap.Error(err))
	}

	responseCache := cache.New(redisStore)
	limiter := ratelimit.New(redisStore, int64(cfg.ThrottleLimit), time.Duration(cfg.ThrottleTTL)*time.Second)

	boost := querybuilder.SalesBoostConfig{
		Factor:   cfg.SearchSalesBoostFactor,
		Modifier: cfg.SearchSalesBoostModifier,
	}

	suggestSvc := suggest.New(engineClient, suggest.WithRateLimit(rate.Limit(50), 100))
	searchSvc := search.New(
		engineClient, catalogStore, responseCache,
		time.Duration(cfg.CacheTTLSearch)*time.Second,
		boost,
		search.WithSuggester(suggestSvc),
	)
	facetsSvc := facets.New(engineClient, responseCache, time.Duration(cfg.CacheTTLFacets)*time.Second)
	healthSvc := health.New(engineClient, catalogStore, redisStore)

	handlers := httpapi.NewHandlers(searchSvc, facetsSvc, healthSvc)
	router := httpapi.NewRouter(handlers, limiter, logger, cfg.APIPrefix, time.Duration(cfg.TimeoutRequest)*time.Second)

	reporterCtx, stopReporter := context.WithCancel(context.Background())
	defer stopReporter()
	go metrics.StartBreakerReporter(reporterCtx, 5*time.Second, map[string]*resilience.Breaker{
		"engine-search":    engineBreaker,
		"catalog-variants": catalogBreaker,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutRequest+5) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
