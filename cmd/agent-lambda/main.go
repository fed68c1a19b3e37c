package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/careassist-ai/appointment-agent/cmd/mainconfig"
	"github.com/careassist-ai/appointment-agent/internal/actions"
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
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

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

	lambda.Start(func(ctx context.Context, inv actions.Invocation) (actions.Response, error) {
		return actionRouter.Handle(ctx, inv), nil
	})
}
