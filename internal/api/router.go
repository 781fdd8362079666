package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/rs/zerolog"
)

const serviceName = "portfolio-blog-api"

// HealthCheck probes one dependency for GET /health
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, checks ...HealthCheck) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.CORS))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	blogHandler := NewBlogHandler(services, log)
	categoryHandler := NewCategoryHandler(services, log)
	slangHandler := NewSlangHandler(services, log)
	aiHandler := NewAIHandler(services, log)
	promptHandler := NewPromptHandler(services, log)
	uploadHandler := NewUploadHandler(services, cfg, log)
	userHandler := NewUserHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	requireAuth := authenticate(services.Auth, true)
	optionalAuth := authenticate(services.Auth, false)

	// Health check
	router.GET("/health", healthCheck(checks))
	router.GET("/metrics", metricsHandler(services))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		// Public blog reads
		api.GET("/blog", blogHandler.ListPublished)
		api.GET("/blog/:slug", blogHandler.GetPublished)

		blogs := api.Group("/blogs", requireAuth)
		{
			blogs.POST("", blogHandler.Create)
			blogs.POST("/autosave", blogHandler.AutoSave)
			blogs.GET("/mine", blogHandler.ListMine)
			blogs.GET("/:id", blogHandler.Get)
			blogs.PUT("/:id", blogHandler.Update)
			blogs.DELETE("/:id", blogHandler.Delete)
			blogs.POST("/:id/approve", blogHandler.Approve)
			blogs.POST("/:id/publish", blogHandler.Publish)
		}

		api.GET("/categories", categoryHandler.List)

		api.GET("/slang", slangHandler.ListPublic)
		api.POST("/slang", optionalAuth, slangHandler.Submit)

		ai := api.Group("/ai", requireAuth)
		{
			ai.POST("/generate-blog", aiHandler.GenerateBlog)
			ai.POST("/generate-image", aiHandler.GenerateImage)
			ai.GET("/job/:id", aiHandler.GetJob)
		}

		upload := api.Group("/upload", requireAuth)
		{
			upload.POST("", uploadHandler.Upload)
			upload.DELETE("", uploadHandler.Delete)
		}

		// Role checks happen in the services; the group only requires a session
		admin := api.Group("/admin", requireAuth)
		{
			admin.GET("/blogs", blogHandler.ListAll)
			admin.POST("/search/reindex", blogHandler.Reindex)

			admin.POST("/categories", categoryHandler.Create)
			admin.PUT("/categories/:id", categoryHandler.Update)
			admin.DELETE("/categories/:id", categoryHandler.Delete)

			admin.GET("/slang", slangHandler.List)
			admin.POST("/slang", slangHandler.Create)
			admin.GET("/slang/:id", slangHandler.Get)
			admin.PUT("/slang/:id", slangHandler.Update)
			admin.PATCH("/slang/:id", slangHandler.Act)
			admin.DELETE("/slang/:id", slangHandler.Delete)

			admin.GET("/prompts", promptHandler.List)
			admin.GET("/prompts/:key", promptHandler.Get)
			admin.PUT("/prompts/:key", promptHandler.Update)

			admin.GET("/users", userHandler.List)
			admin.DELETE("/users/:id", userHandler.Delete)
			admin.PUT("/users/:id/role", userHandler.UpdateRole)

			admin.GET("/export", exportHandler.StreamExport)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
	})

	return router
}

// healthCheck returns the health status. Any failing check makes the
// service unhealthy.
func healthCheck(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, 3*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		results := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				results[hc.Name] = err.Error()
				status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			results[hc.Name] = "ok"
		}

		body := gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
		}
		if len(checks) > 0 {
			body["checks"] = results
		}
		c.JSON(code, body)
	}
}

// metricsHandler returns row counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCount, _ := services.Export.GetCount(ctx, "users")
		blogsCount, _ := services.Export.GetCount(ctx, "blogs")
		slangCount, _ := services.Export.GetCount(ctx, "slang")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users": usersCount,
				"blogs": blogsCount,
				"slang": slangCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
