package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/khabar-news/khabar/internal/api"
	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/database"
	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/khabar-news/khabar/internal/repository"
	"github.com/khabar-news/khabar/internal/rss"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/khabar-news/khabar/internal/web"
	"github.com/khabar-news/khabar/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting khabar server...")
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to read .env file")
	}

	// Tag cache: redis when configured, otherwise process-local
	var store cache.TagStore = cache.NewMemoryTagStore()
	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisTagStore(context.Background(), cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		store = redisStore
		log.Info().Msg("Using Redis tag cache")
	}

	// Initialize database for the dispatch log
	var (
		db     *database.DB
		health api.HealthChecker
	)
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		health = db
	} else {
		log.Info().Msg("Dispatch log disabled")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	querier := cms.NewCachingQuerier(cms.NewClient(&cfg.CMS, log), store, log)
	services := service.NewServices(service.Deps{
		Querier: querier,
		Catalog: queries.NewCatalog(cfg.CMS.Revalidate),
		Store:   store,
		Mailers: mail.NewFactory(&cfg.Mail, log),
		Fetcher: rss.NewHTTPFetcher(&cfg.RSS, store, log),
		Repos:   repos,
	}, cfg, log)

	renderer, err := web.NewRenderer(cfg.Site, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Initialize router
	router := api.NewRouter(services, renderer, health, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
