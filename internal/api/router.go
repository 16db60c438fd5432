package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/khabar-news/khabar/internal/web"
	"github.com/khabar-news/khabar/pkg/logger"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. db may be nil when the
// dispatch log is disabled.
func NewRouter(services *service.Services, renderer *web.Renderer, db HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	// Handlers
	searchHandler := NewSearchHandler(services, log)
	formHandler := NewFormHandler(services, log)
	cacheHandler := NewCacheHandler(services, cfg.Server.RevalidateSecret, log)
	pageHandler := NewPageHandler(services, renderer, log)

	// Health check
	router.GET("/health", healthCheck(db, log))
	router.GET("/metrics", metricsHandler(services, log))

	// JSON API
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/search", searchHandler.Search)
		apiGroup.POST("/search", searchHandler.Record)
		apiGroup.POST("/contact", formHandler.Contact)
		apiGroup.POST("/submissions", formHandler.Submission)
		apiGroup.POST("/cache", cacheHandler.Revalidate)
	}

	// Pages
	router.GET("/", pageHandler.Home)
	router.GET("/articles/:slug", pageHandler.Article)
	router.GET("/category/:slug", pageHandler.Category)
	router.GET("/calendar", pageHandler.Calendar)
	router.GET("/calendar/event/:slug", pageHandler.Event)
	router.GET("/videos", pageHandler.Videos)
	router.GET("/weekly-pdf", pageHandler.WeeklyPDF)
	router.GET("/rss-feed", pageHandler.RSSFeed)
	router.GET("/search", pageHandler.Search)
	router.GET("/contact", pageHandler.Static(web.PageContact, "संपर्क करें", web.FormView{Endpoint: "/api/contact"}))
	router.GET("/submissions", pageHandler.Static(web.PageSubmissions, "खबर भेजें", web.FormView{Endpoint: "/api/submissions"}))
	router.GET("/about", pageHandler.Static(web.PageAbout, "हमारे बारे में", nil))
	router.GET("/terms", pageHandler.Static(web.PageTerms, "नियम और शर्तें", nil))
	router.GET("/privacy", pageHandler.Static(web.PagePrivacy, "गोपनीयता नीति", nil))
	router.GET("/disclaimer", pageHandler.Static(web.PageDisclaimer, "अस्वीकरण", nil))
	router.NoRoute(pageHandler.NotFound)

	return router
}

// healthCheck returns the health status
func healthCheck(db HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		resp := gin.H{
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		}

		if db != nil {
			resp["database"] = "ok"
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				log.Error().Err(err).Msg("Database health check failed")
				resp["database"] = "unreachable"
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		resp["status"] = status
		c.JSON(code, resp)
	}
}

// metricsRecentFailures is how many failed deliveries /metrics lists
const metricsRecentFailures = 10

// metricsHandler reports delivery counts with recent failures, plus the search cache size
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		dispatch, err := services.Dispatch.Stats(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to read dispatch stats")
		}

		// recipients and subjects carry form content and stay out of metrics
		recent := []gin.H{}
		failures, err := services.Dispatch.RecentFailures(c.Request.Context(), metricsRecentFailures)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read recent dispatch failures")
		}
		for _, f := range failures {
			recent = append(recent, gin.H{
				"kind":      f.Kind,
				"provider":  f.Provider,
				"error":     f.Error,
				"createdAt": f.CreatedAt.Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"dispatch":       dispatch,
			"recentFailures": recent,
			"search": gin.H{
				"cacheSize": services.Search.CacheSize(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
