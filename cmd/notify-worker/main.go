package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/careassist-ai/appointment-agent/cmd/mainconfig"
	appconfig "github.com/careassist-ai/appointment-agent/internal/config"
	"github.com/careassist-ai/appointment-agent/internal/notify"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.NotificationQueue == "" {
		logger.Error("notify worker requires NOTIFICATION_QUEUE_URL")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotificationQueue)

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SenderEmail,
			FromName:  cfg.SenderName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SenderEmail,
			FromName:  cfg.SenderName,
		}, logger); s != nil {
			sender = s
		}
	}
	if sender == nil {
		logger.Warn("email provider not configured, using stub sender", "provider", cfg.EmailProvider)
		sender = notify.NewStubEmailSender(logger)
	}

	worker := notify.NewWorker(queue, sender, logger).
		WithInterval(cfg.NotifyPollInterval).
		WithBatch(cfg.NotifyMaxMessages, cfg.NotifyWaitSeconds)

	go worker.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("notify worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
