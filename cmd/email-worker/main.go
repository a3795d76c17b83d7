package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"laborstatus.service/internal/config"
	"laborstatus.service/internal/core"
	"laborstatus.service/internal/worker"
	"laborstatus.service/internal/worker/alert"
	"laborstatus.service/pkg/aws"
	"laborstatus.service/pkg/logger"
	"laborstatus.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup("email-worker", cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("email-worker", cfg.OTelExporter, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	sesClient := ses.NewFromConfig(awsCfg)
	emailService := core.NewSESEmailService(sesClient, cfg.AlertSender)
	processor := alert.NewProcessor(emailService)

	// Start Worker
	app := worker.NewWorker(sqsClient, cfg.AlertSQSQueueURL, processor)

	done := make(chan struct{})
	go func() {
		app.Start(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()
	<-done

	log.Info().Msg("Worker exited gracefully")
}
