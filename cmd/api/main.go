package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/config"
	"github.com/noah-isme/checkin-go-api/internal/database"
	"github.com/noah-isme/checkin-go-api/internal/handler"
	"github.com/noah-isme/checkin-go-api/internal/middleware"
	"github.com/noah-isme/checkin-go-api/internal/models"
	"github.com/noah-isme/checkin-go-api/internal/repository"
	"github.com/noah-isme/checkin-go-api/internal/router"
	"github.com/noah-isme/checkin-go-api/internal/service"
	"github.com/noah-isme/checkin-go-api/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDevelopment() {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Participant{}, &models.CheckInLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, check-in events will not be published")
	}

	var registryClient service.RegistryLookup
	if cfg.RegistryBaseURL != "" {
		client, err := registry.New(registry.Config{
			BaseURL: cfg.RegistryBaseURL,
			APIKey:  cfg.RegistryAPIKey,
			Timeout: cfg.RegistryTimeout,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create registry client: %v", err)
		}
		registryClient = client
	} else {
		logger.Warn().Msg("registry base url not configured, directory misses will not fall back to the registry")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	eventRepo := repository.NewEventRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	userRepo := repository.NewUserRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	checkInService := service.NewCheckInService(checkInRepo, participantRepo, eventRepo, redisClient, natsConn, validate, cfg.CheckInLocation, logger)
	eventService := service.NewEventService(eventRepo, participantRepo, checkInRepo, userRepo, validate, logger)
	participantService := service.NewParticipantService(participantRepo, eventRepo, registryClient, validate, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, checkInRepo, participantRepo, eventRepo, userRepo, redisClient, cfg.StatsCacheTTL, cfg.CheckInLocation, logger)
	reportService, err := service.NewReportService(eventService, analyticsService, logger)
	if err != nil {
		log.Fatalf("failed to create report service: %v", err)
	}

	checkInHandler := handler.NewCheckInHandler(checkInService, validate, logger)
	eventHandler := handler.NewEventHandler(eventService, reportService, validate, logger)
	participantHandler := handler.NewParticipantHandler(participantService, validate, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CheckInHandler:     checkInHandler,
		EventHandler:       eventHandler,
		ParticipantHandler: participantHandler,
		AnalyticsHandler:   analyticsHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
