package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careassist-ai/appointment-agent/cmd/mainconfig"
	"github.com/careassist-ai/appointment-agent/internal/actions"
	"github.com/careassist-ai/appointment-agent/internal/api/router"
	"github.com/careassist-ai/appointment-agent/internal/booking"
	appconfig "github.com/careassist-ai/appointment-agent/internal/config"
	"github.com/careassist-ai/appointment-agent/internal/directory"
	"github.com/careassist-ai/appointment-agent/internal/insight"
	"github.com/careassist-ai/appointment-agent/internal/notify"
	"github.com/careassist-ai/appointment-agent/internal/observability/metrics"
	"github.com/careassist-ai/appointment-agent/internal/schedule"
	"github.com/careassist-ai/appointment-agent/internal/symptoms"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

func main() {
	// Best effort in development; production relies on real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointment-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)

	doctorsRepo := directory.NewRepository(dynamoClient, cfg.DoctorsTable, logger)
	schedulesRepo := schedule.NewRepository(dynamoClient, cfg.SchedulesTable, logger)
	allocator := schedule.NewAllocator(schedulesRepo, logger)
	insightStore := insight.NewStore(dynamoClient, cfg.ReportSummaryTable, logger)

	var publisher notify.Publisher
	if cfg.NotificationQueue != "" {
		publisher = notify.NewQueuePublisher(sqsClient, cfg.NotificationQueue, logger)
	} else {
		logger.Warn("NOTIFICATION_QUEUE_URL not set, confirmations will not be delivered")
		publisher = notify.NewStubPublisher(logger)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)
	orchestrator := booking.NewOrchestrator(allocator, schedulesRepo, publisher, bookingMetrics, logger).
		WithSlotLimit(cfg.SlotLimit)
	actionRouter := actions.NewRouter(
		doctorsRepo,
		allocator,
		orchestrator,
		insightStore,
		symptoms.NewDetector(logger),
		bookingMetrics,
		logger,
	).WithSlotLimit(cfg.SlotLimit)

	r := router.New(&router.Config{
		Logger:         logger,
		ActionsHandler: actions.NewHandler(actionRouter, logger),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
