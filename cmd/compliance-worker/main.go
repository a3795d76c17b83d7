package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"laborstatus.service/internal/adapters/connecteam"
	"laborstatus.service/internal/config"
	"laborstatus.service/internal/core"
	"laborstatus.service/internal/directory"
	"laborstatus.service/internal/ports/messaging"
	"laborstatus.service/internal/ports/repository"
	"laborstatus.service/internal/worker/compliance"
	"laborstatus.service/pkg/aws"
	"laborstatus.service/pkg/database"
	"laborstatus.service/pkg/logger"
	"laborstatus.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup("compliance-worker", cfg.IsLocalDev)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	loc, _ := cfg.Location()
	coreOpts, _ := cfg.CoreOptions()

	shutdownTracer, err := telemetry.InitTracer("compliance-worker", cfg.OTelExporter, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	client := connecteam.NewHTTPClient(cfg.ConnecteamBaseURL, cfg.ConnecteamAPIKey, cfg.ConnecteamTimeout)
	names := directory.New(client)
	if err := names.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not load the user directory")
	}
	go names.Run(ctx, cfg.UserRefreshInterval)

	weekly := core.NewWeeklyAggregator(client, loc, coreOpts...)
	status := core.NewStatusService(client, weekly, names, loc, coreOpts...)
	producer := messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.AlertSQSQueueURL)
	scanner := compliance.NewScanner(repository.NewStoreRepository(db), status, producer)

	done := make(chan struct{})
	go func() {
		scanner.Run(ctx, cfg.ScanInterval)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the scanner to stop.
	cancel()
	<-done

	log.Info().Msg("Worker exited gracefully")
}
