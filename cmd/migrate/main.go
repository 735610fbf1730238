package main

import (
	"context"
	"flag"

	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/database"
	"github.com/pageza/mealshare/backend/internal/logging"
)

func main() {
	migrationsDir := flag.String("dir", "", "directory holding *.sql migrations (defaults to database.migrations_dir)")
	bucketPolicy := flag.Bool("bucket-policy", false, "also apply the public-read policy to the image bucket")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.Component("migrate")

	dir := cfg.Database.MigrationsDir
	if *migrationsDir != "" {
		dir = *migrationsDir
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, dir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("driver", cfg.Database.Driver).Str("dir", dir).Msg("all migrations applied")

	if *bucketPolicy {
		ctx := context.Background()
		s3Config, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3")
		}
		if err := s3Config.SetupBucketPolicy(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.BucketName).Msg("failed to apply bucket policy")
		}
		log.Info().Str("bucket", cfg.Storage.BucketName).Msg("bucket policy applied")
	}
}
