// Package main is the entry point for the Omnidesk Auto-Reply Service.
// @title Omnidesk Auto-Reply Service API
// @version 1.0
// @description Conversational agent orchestration: auto-reply generation, conversation state tracking and human escalation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/omnidesk/autoreply-service
// @contact.email support@omnidesk.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/omnidesk/autoreply-service/internal/api/handlers"
	"github.com/omnidesk/autoreply-service/internal/api/middleware"
	"github.com/omnidesk/autoreply-service/internal/api/routes"
	"github.com/omnidesk/autoreply-service/internal/config"
	"github.com/omnidesk/autoreply-service/internal/core/cache"
	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	rediscache "github.com/omnidesk/autoreply-service/internal/infrastructure/cache/redis"
	"github.com/omnidesk/autoreply-service/internal/infrastructure/docdb/mongodb"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
	"github.com/omnidesk/autoreply-service/internal/services/analytics"
	"github.com/omnidesk/autoreply-service/internal/services/directory"
	"github.com/omnidesk/autoreply-service/internal/services/dispatch"
	"github.com/omnidesk/autoreply-service/internal/services/escalation"
	"github.com/omnidesk/autoreply-service/internal/services/generator"
	"github.com/omnidesk/autoreply-service/internal/services/knowledge"
	"github.com/omnidesk/autoreply-service/internal/services/llm"
	"github.com/omnidesk/autoreply-service/internal/services/orchestrator"
	"github.com/omnidesk/autoreply-service/internal/services/state"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	// Initialize cache client using factory pattern
	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	// Initialize document db client using factory pattern
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// Ensure database indexes
	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Pipeline instrumentation
	m := metrics.New(prometheus.DefaultRegisterer)

	// Language-model backends and router
	providers, err := llm.BuildProviders(cfg.LLM.Providers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build llm providers")
	}
	router, err := llm.NewRouter(llm.RouterConfig{
		Providers:      providers,
		InvokeTimeout:  cfg.LLM.InvokeTimeout,
		HealthCacheTTL: cfg.LLM.HealthCacheTTL,
	}, cacheClient, m, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize llm router")
	}

	// External capability clients
	retriever := knowledge.NewHTTPClient(&knowledge.ClientConfig{
		BaseURL:    cfg.Knowledge.URL,
		ServiceKey: cfg.Knowledge.ServiceKey,
		Timeout:    cfg.Knowledge.Timeout,
	})
	dir := directory.NewHTTPClient(&directory.ClientConfig{
		BaseURL:    cfg.Directory.URL,
		ServiceKey: cfg.Directory.ServiceKey,
		Timeout:    cfg.Directory.Timeout,
	})
	sender := dispatch.NewHTTPClient(&dispatch.ClientConfig{
		BaseURL:    cfg.Dispatch.URL,
		ServiceKey: cfg.Dispatch.ServiceKey,
		Timeout:    cfg.Dispatch.Timeout,
	})

	var notifier escalation.Notifier = escalation.NoopNotifier{}
	if cfg.Escalation.WebhookURL != "" {
		notifier = escalation.NewWebhookNotifier(&escalation.WebhookNotifierConfig{
			URL:     cfg.Escalation.WebhookURL,
			Timeout: cfg.Escalation.Timeout,
		})
	}

	// Pipeline services
	tracker := state.NewTracker(docDBClient.Conversations(), log.Logger)
	gen := generator.New(retriever, router, generator.Config{
		MaxContexts:         cfg.Knowledge.MaxContexts,
		SimilarityFloor:     cfg.Knowledge.SimilarityFloor,
		ConfidenceThreshold: cfg.Orchestrator.ConfidenceThreshold,
	}, m, log.Logger)
	workflow := escalation.NewWorkflow(docDBClient, notifier, m, log.Logger)
	aggregator := analytics.NewAggregator(docDBClient, log.Logger)
	orch := orchestrator.New(docDBClient, tracker, dir, gen, workflow, aggregator,
		sender, cfg.Orchestrator, cfg.Dispatch.AutoSend, m, log.Logger)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Setup router
	engine := setupRouter(cfg, cacheClient, docDBClient, router, tracker, workflow, aggregator, orch)

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Cache, error) {
	cacheType := cache.Type(cfg.Type)

	switch cacheType {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Addr:       cfg.Addr,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported cache type")
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	docDBType := docdb.Type(cfg.Type)

	switch docDBType {
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	case docdb.TypeCosmosDB:
		// CosmosDB speaks the MongoDB protocol, so the same client works.
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}

// setupRouter creates and configures the Gin router.
func setupRouter(
	cfg *config.Config,
	cacheClient cache.Cache,
	docDBClient docdb.Client,
	llmRouter *llm.Router,
	tracker *state.Tracker,
	workflow *escalation.Workflow,
	aggregator *analytics.Aggregator,
	orch *orchestrator.Orchestrator,
) *gin.Engine {
	engine := gin.New()

	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(cfg.Server.ServiceKey)
	tenantMw := middleware.NewTenantMiddleware()

	engine.Use(middleware.NewCORSMiddleware(middleware.DefaultCORSConfig()))

	routes.SetupWithMiddleware(engine, &routes.Config{
		HealthHandler:        handlers.NewHealthHandler(cacheClient, docDBClient, llmRouter),
		WebhooksHandler:      handlers.NewWebhooksHandler(orch),
		ConversationsHandler: handlers.NewConversationsHandler(docDBClient, tracker, workflow, log.Logger),
		AnalyticsHandler:     handlers.NewAnalyticsHandler(aggregator),
		AuthMiddleware:       authMw,
		TenantMiddleware:     tenantMw,
	}, loggingMw, errorMw)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return engine
}
