package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/trustimonials/trustimonials-backend/config"
	"github.com/trustimonials/trustimonials-backend/db"
	"github.com/trustimonials/trustimonials-backend/handlers"
	"github.com/trustimonials/trustimonials-backend/internal/metrics"
	"github.com/trustimonials/trustimonials-backend/internal/store/postgres"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/router"
	"github.com/trustimonials/trustimonials-backend/services"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection, TLS enforced in production.
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	if cfg.IsProduction() {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the submission rate limiter.
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()

	// Stores
	spaceStore := postgres.NewPgSpaceStore(pool)
	testimonialStore := postgres.NewPgTestimonialStore(pool)
	widgetStore := postgres.NewPgWidgetStore(pool)
	linkStore := postgres.NewPgRequestLinkStore(pool)
	templateStore := postgres.NewPgTemplateStore(pool)

	// Email delivery is optional. Without an API key, SendRequest reports
	// the missing configuration instead of silently dropping mail.
	var emailSender models.RequestEmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = services.NewEmailService(&cfg.Email)
	} else {
		log.Warn("RESEND_API_KEY not set, testimonial request emails are disabled")
	}

	// Models
	spaceModel := models.NewSpaceModel(spaceStore, testimonialStore)
	testimonialModel := models.NewTestimonialModel(testimonialStore, spaceModel)
	widgetModel := models.NewWidgetModel(widgetStore, testimonialStore, spaceModel)
	linkModel := models.NewRequestLinkModel(linkStore, templateStore, emailSender, cfg.Server.FrontendURL)
	templateModel := models.NewTemplateModel(templateStore)

	m := metrics.New()
	healthService := services.NewHealthService(pool, redisClient, Version)

	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		RedisClient:        redisClient,
		HealthHandler:      handlers.NewHealthHandler(healthService),
		SpaceHandler:       handlers.NewSpaceHandler(spaceModel),
		TestimonialHandler: handlers.NewTestimonialHandler(testimonialModel, linkModel),
		WidgetHandler:      handlers.NewWidgetHandler(widgetModel),
		LinkHandler:        handlers.NewLinkHandler(linkModel),
		TemplateHandler:    handlers.NewTemplateHandler(templateModel),
		EmbedHandler:       handlers.NewEmbedHandler(widgetModel, m, cfg.Server.PublicBaseURL),
		PublicHandler:      handlers.NewPublicHandler(spaceModel, testimonialModel, linkModel, templateModel, m),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}
}
