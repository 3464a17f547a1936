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

	"go.uber.org/zap"

	"github.com/kailas-cloud/moviesearch/internal/config"
	dbElastic "github.com/kailas-cloud/moviesearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/moviesearch/internal/db/redis"
	"github.com/kailas-cloud/moviesearch/internal/domain"
	"github.com/kailas-cloud/moviesearch/internal/domain/movie"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/moviesearch/internal/logger"
	"github.com/kailas-cloud/moviesearch/internal/metrics"
	"github.com/kailas-cloud/moviesearch/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/moviesearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/moviesearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/moviesearch/internal/transport/openai"
	"github.com/kailas-cloud/moviesearch/internal/transport/sbert"
	embeddinguc "github.com/kailas-cloud/moviesearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/moviesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/moviesearch/internal/usecase/search"
	"github.com/kailas-cloud/moviesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting moviesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addresses", cfg.Elasticsearch.Addresses),
		zap.String("index", cfg.Elasticsearch.Index),
	)

	store, err := dbElastic.NewStore(dbElastic.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		APIKey:    cfg.Elasticsearch.APIKey,
	})
	if err != nil {
		logger.Fatal("Failed to create search store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to Elasticsearch")

	// Optional shared embedding cache
	var cache *dbRedis.Store
	if cfg.Cache.Redis.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Redis.Addrs,
			Password: cfg.Cache.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()
		if err := cache.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Cache.Redis.Addrs))
	}

	// Register metrics explicitly (HTTP metrics register in init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	providers := buildProviders(&cfg, cache, logger)
	embedClient, err := embeddinguc.NewClient(providers, embeddinguc.ClientOptions{
		CacheSize:  cfg.Embedding.CacheSize,
		CacheTotal: metrics.EmbeddingCacheTotal,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	fields := searchrepo.DefaultVectorFields()
	if cfg.Search.SwapSBERTFields {
		fields = searchrepo.SwappedVectorFields()
		logger.Warn("Querying sbert vectors with swapped fields",
			zap.String("symmetric_field", searchrepo.FieldAsymmetricEmbedding),
			zap.String("asymmetric_field", searchrepo.FieldSymmetricEmbedding),
		)
	}
	searchRepo := searchrepo.New(store, cfg.Elasticsearch.Index, fields)
	searchSvc := searchuc.New(searchRepo, embedClient)

	// A nil *dbRedis.Store must not reach the interface.
	var cachePinger healthuc.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(store, embedClient, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, request.Limits{
		DefaultSize: cfg.Search.DefaultSize,
		MaxSize:     cfg.Search.MaxSize,
	}, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// modelEmbedder is a provider that knows its model name.
type modelEmbedder interface {
	domain.Embedder
	Model() string
}

// buildProviders assembles one decorator chain per configured embedding type:
// provider -> Redis cache (optional) -> Instrumented.
// Types without a configured provider are left out and rejected per request.
func buildProviders(cfg *config.Config, cache *dbRedis.Store, logger *zap.Logger) map[domain.EmbeddingType]domain.Embedder {
	bases := make(map[domain.EmbeddingType]modelEmbedder, 3)

	if cfg.Embedding.Local.BaseURL != "" {
		for _, t := range []domain.EmbeddingType{domain.EmbeddingSymmetric, domain.EmbeddingAsymmetric} {
			e, err := sbert.NewEmbedder(sbert.Config{
				BaseURL:    cfg.Embedding.Local.BaseURL,
				Timeout:    time.Duration(cfg.Embedding.Local.TimeoutSec) * time.Second,
				Dimensions: movie.Dimensions(t),
				Logger:     logger,
			}, t)
			if err != nil {
				logger.Fatal("Failed to create local embedder", zap.String("type", string(t)), zap.Error(err))
			}
			bases[t] = e
		}
	} else {
		logger.Warn("embedding.local.base_url not set, symmetric and asymmetric search disabled")
	}

	if cfg.Embedding.OpenAI.APIKey != "" {
		dims := cfg.Embedding.OpenAI.Dimensions
		if dims == 0 {
			dims = movie.OpenAIDimensions
		}
		bases[domain.EmbeddingOpenAI] = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: dims,
			Logger:     logger,
		})
	} else {
		logger.Warn("embedding.openai.api_key not set, openai search disabled")
	}

	providers := make(map[domain.EmbeddingType]domain.Embedder, len(bases))
	for t, base := range bases {
		providerName := "sbert"
		if t == domain.EmbeddingOpenAI {
			providerName = "openai"
		}

		var embedder domain.Embedder = base
		if cache != nil {
			embedder = embcache.New(base, cache, embcache.Options{
				Namespace:  string(t) + ":" + base.Model(),
				TTL:        time.Duration(cfg.Cache.Redis.TTLSec) * time.Second,
				CacheTotal: metrics.EmbeddingCacheTotal,
			}, logger)
		}
		providers[t] = embeddinguc.NewInstrumentedEmbedder(embedder, providerName, base.Model(), logger)

		logger.Info("Embedding provider configured",
			zap.String("type", string(t)),
			zap.String("provider", providerName),
			zap.String("model", base.Model()),
			zap.Bool("redis_cache", cache != nil),
		)
	}
	return providers
}
