package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Read-only archive endpoints
	r.GET("/items", handler.ListItems)
	r.GET("/items/:id", handler.GetItem)
	r.GET("/items/:id/media", handler.GetItemMedia)
	r.GET("/items/:id/thumbnail", handler.GetItemThumbnail)
	r.GET("/items/:id/tags", handler.GetItemTags)
	r.GET("/tags", handler.ListTags)

	// API endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.POST("/ingest", handler.APIIngest)
			api.POST("/items/:id/tags", handler.APIAddTag)
			api.DELETE("/items/:id/tags/:tag", handler.APIRemoveTag)
			api.POST("/admin/scan/:stage", handler.APIScanStage)
			api.POST("/admin/enqueue/:stage/:id", handler.APIEnqueueItem)
			api.POST("/admin/cleanup-errors", handler.APICleanupErrors)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":    "/health",
			"stats":     "/stats",
			"items":     "/items?limit=<n>&offset=<n>",
			"item":      "/items/<id>",
			"media":     "/items/<id>/media",
			"thumbnail": "/items/<id>/thumbnail",
			"item_tags": "/items/<id>/tags",
			"tags":      "/tags?source=<manual|auto>",
		}

		// Add API endpoints if authentication is enabled
		if apiAccessKey != "" {
			endpoints["ingest"] = "/api/ingest (POST, requires X-API-Key header)"
			endpoints["add_tag"] = "/api/items/<id>/tags (POST, requires X-API-Key header)"
			endpoints["remove_tag"] = "/api/items/<id>/tags/<tag> (DELETE, requires X-API-Key header)"
			endpoints["scan"] = "/api/admin/scan/<stage> (POST, requires X-API-Key header)"
			endpoints["enqueue"] = "/api/admin/enqueue/<stage>/<id> (POST, requires X-API-Key header)"
			endpoints["cleanup_errors"] = "/api/admin/cleanup-errors (POST, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "TokVault",
			"description": "Archiver for favorited short-form posts with transcription, text extraction, and auto tagging",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
