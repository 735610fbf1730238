package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/api"
	"github.com/pageza/mealshare/backend/internal/database"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/middleware"
	"github.com/pageza/mealshare/backend/internal/router"
	"github.com/pageza/mealshare/backend/internal/server"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.Component("main")
	log.Info().Str("environment", string(cfg.Environment)).Msg("starting mealshare api")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis is optional: without it hints and rate limits are disabled
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without owner hints and rate limiting")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3")
	}
	blobs := storage.NewS3Store(s3Config)

	// Initialize services
	hints := service.NewOwnerHints(redisClient, cfg.Redis.OwnerHintTTL)
	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	resolver := service.NewResolver(db, hints)
	recipeService := service.NewRecipeService(db, blobs, hints, cfg.Storage.RecipeFolder)
	socialService := service.NewSocialService(db)
	engagementService := service.NewEngagementService(db)
	feedService := service.NewFeedService(db, resolver, cfg.Feed)
	accountService := service.NewAccountService(db, authService, blobs, resolver, cfg.Storage.ProfileFolder)

	createLimiter := middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Limit)
	socialLimiter := middleware.NewSocialWriteRateLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Limit)

	handler := router.SetupRouter(router.Handlers{
		Health:  api.NewHealthHandler(db, redisClient),
		Auth:    api.NewAuthHandler(accountService, authService),
		Recipes: api.NewRecipeHandler(recipeService, resolver, engagementService, feedService, authService, createLimiter, socialLimiter),
		Profile: api.NewProfileHandler(accountService, socialService, feedService, authService, socialLimiter, cfg.Feed.SuggestionLimit),
	}, cfg.Server.CORSOrigins)

	srv := server.New(cfg.Server, handler)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
