package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portfolio-blog-api/internal/api"
	"github.com/portfolio-blog-api/internal/auth"
	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/genai"
	"github.com/portfolio-blog-api/internal/notify"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/service"
	"github.com/portfolio-blog-api/internal/session"
	"github.com/portfolio-blog-api/internal/storage"
	"github.com/portfolio-blog-api/pkg/logger"
	"github.com/rs/zerolog"
)

// sessionStore is a service.SessionStore the server can probe and close
type sessionStore interface {
	service.SessionStore
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	rollback := flag.Int("rollback", -1, "roll back N migrations (0 for all) and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("env", cfg.Server.Environment).Msg("Starting Portfolio Blog API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *rollback >= 0 {
		if err := db.Rollback(cfg.Database.MigrationsPath, *rollback); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migrations")
		}
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Session revocation
	var sessions sessionStore = session.NoopStore{}
	if cfg.Redis.URL != "" {
		store, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		sessions = store
	} else {
		log.Warn().Msg("REDIS_URL not set, logout will not revoke tokens")
	}
	defer sessions.Close()

	// Object storage
	objects, err := storage.New(&cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
	if err := objects.EnsureBucket(bucketCtx); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("Could not verify storage bucket")
	}
	cancelBucket()

	// Search index is optional; blogs fall back to database search
	var index service.SearchIndex
	if cfg.Search.MeiliURL != "" {
		idx := search.New(cfg.Search.MeiliURL, cfg.Search.MeiliKey, cfg.Search.Index, log)
		defer idx.Close()
		index = idx
	}

	mailer := notify.NewMailer(&cfg.Mail, log)
	defer mailer.Wait()
	if !mailer.IsConfigured() {
		log.Info().Msg("SMTP not configured, review notifications disabled")
	}

	text, images := newGenerators(cfg, log)

	services := service.NewServices(service.Deps{
		Repos:    repos,
		Config:   cfg,
		Log:      log,
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer),
		Sessions: sessions,
		Storage:  objects,
		Text:     text,
		Images:   images,
		Search:   index,
		Notifier: mailer,
	})

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := services.Auth.Bootstrap(bootCtx); err != nil {
		log.Error().Err(err).Msg("Failed to bootstrap super admin")
	}
	cancelBoot()

	// Start background job processor
	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()
	go services.Generation.StartProcessor(processorCtx)
	log.Info().Int("workers", cfg.Jobs.Workers).Msg("Background job processor started")

	// Initialize router
	router := api.NewRouter(services, cfg, log,
		api.HealthCheck{Name: "database", Check: db.HealthCheck},
		api.HealthCheck{Name: "sessions", Check: sessions.Ping},
	)

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
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job processor
	services.Generation.StopProcessor()

	log.Info().Msg("Server exited gracefully")
}

// newGenerators builds the provider fallback chains. Gemini is tried with the
// primary key, then the fallback key, then Groq for text.
func newGenerators(cfg *config.Config, log zerolog.Logger) (*genai.TextChain, *genai.ImageChain) {
	client := &http.Client{Timeout: cfg.AI.Timeout}
	opts := genai.ChainOptions{Delay: cfg.AI.RequestDelay, Timeout: cfg.AI.Timeout}

	var text []genai.TextGenerator
	var images []genai.ImageGenerator
	for i, key := range []string{cfg.AI.GeminiAPIKey, cfg.AI.GeminiFallbackKey} {
		if key == "" {
			continue
		}
		name := "gemini"
		if i > 0 {
			name = "gemini-fallback"
		}
		text = append(text, genai.NewGemini(name, cfg.AI.GeminiBaseURL, key, cfg.AI.GeminiTextModel, client))
		images = append(images, genai.NewGemini(name+"-image", cfg.AI.GeminiBaseURL, key, cfg.AI.GeminiImageModel, client))
	}
	if cfg.AI.GroqAPIKey != "" {
		text = append(text, genai.NewGroq(cfg.AI.GroqBaseURL, cfg.AI.GroqAPIKey, cfg.AI.GroqModel, client))
	}

	if len(text) == 0 {
		log.Warn().Msg("No AI provider keys configured, generation jobs will fail")
	}
	return genai.NewTextChain(opts, log, text...), genai.NewImageChain(opts, log, images...)
}
