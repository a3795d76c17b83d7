// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"laborstatus.service/internal/adapters/connecteam"
	"laborstatus.service/internal/api"
	"laborstatus.service/internal/api/handler"
	"laborstatus.service/internal/config"
	"laborstatus.service/internal/core"
	"laborstatus.service/internal/directory"
	"laborstatus.service/internal/ports/repository"
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

	// Configure structured logging
	logger.Setup("laborstatus-api", cfg.IsLocalDev)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	loc, _ := cfg.Location()
	coreOpts, _ := cfg.CoreOptions()

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("laborstatus-api", cfg.OTelExporter, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize dependencies
	client := connecteam.NewHTTPClient(cfg.ConnecteamBaseURL, cfg.ConnecteamAPIKey, cfg.ConnecteamTimeout)
	names := directory.New(client)
	if err := names.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not load the user directory")
	}
	go names.Run(ctx, cfg.UserRefreshInterval)

	weekly := core.NewWeeklyAggregator(client, loc, coreOpts...)
	status := core.NewStatusService(client, weekly, names, loc, coreOpts...)
	repo := repository.NewStoreRepository(db)

	// Setup router and server
	router := api.NewRouter(&handler.StatusHandler{
		Stores: repo,
		Status: status,
		Weekly: weekly,
		Names:  names,
	})

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	h := otelhttp.NewHandler(loggerMiddleware(router), "api")

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("timezone", loc.String()).
			Str("lunch_policy", status.Policy().Name()).
			Int("users", names.Len()).
			Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
