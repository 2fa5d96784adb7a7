// Package routes defines the HTTP routes for the Omnidesk Auto-Reply Service.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/omnidesk/autoreply-service/internal/api/handlers"
	"github.com/omnidesk/autoreply-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler        *handlers.HealthHandler
	WebhooksHandler      *handlers.WebhooksHandler
	ConversationsHandler *handlers.ConversationsHandler
	AnalyticsHandler     *handlers.AnalyticsHandler
	AuthMiddleware       *middleware.AuthMiddleware
	TenantMiddleware     *middleware.TenantMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// API v1 routes - all routes under /api/v1/autoreply-service
	v1 := r.Group("/api/v1/autoreply-service")
	{
		// Health check routes (no auth required)
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// Tenant-scoped routes
		tenants := v1.Group("/tenants/:tenantId")
		tenants.Use(cfg.TenantMiddleware.ExtractTenant())
		{
			// Webhook routes carry the shared service key
			webhooks := tenants.Group("/webhooks")
			webhooks.Use(cfg.AuthMiddleware.AuthenticateService())
			{
				webhooks.POST("/messages", cfg.WebhooksHandler.ProcessMessage)
			}

			// Operator-facing routes carry platform tokens
			protected := tenants.Group("")
			protected.Use(cfg.AuthMiddleware.Authenticate())
			{
				conversations := protected.Group("/conversations/:conversationId")
				{
					conversations.GET("", cfg.ConversationsHandler.Get)
					conversations.DELETE("", cfg.ConversationsHandler.Archive)
					conversations.POST("/assignments", cfg.ConversationsHandler.Assign)
					conversations.POST("/reassign", cfg.ConversationsHandler.Reassign)
					conversations.POST("/escalate", cfg.ConversationsHandler.Escalate)
				}

				protected.GET("/performance", cfg.AnalyticsHandler.SystemPerformance)
				protected.GET("/agents/:agentId/performance", cfg.AnalyticsHandler.AgentPerformance)
			}
		}
	}
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.Use(loggingMw.Logger())
	r.Use(loggingMw.RequestLogger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())

	Setup(r, cfg)
}
