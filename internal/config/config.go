package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	DoctorsTable        string
	SchedulesTable      string
	ReportSummaryTable  string
	NotificationQueue   string
	NotifyPollInterval  time.Duration
	NotifyWaitSeconds   int
	NotifyMaxMessages   int
	SlotLimit           int

	EmailProvider  string
	SenderEmail    string
	SenderName     string
	SendGridAPIKey string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		DoctorsTable:       getEnv("DOCTORS_TABLE_NAME", "doctors"),
		SchedulesTable:     getEnv("DOCTOR_SCHEDULES_TABLE_NAME", "doctor_schedules"),
		ReportSummaryTable: getEnv("REPORT_SUMMARY_TABLE_NAME", "medical_summaries"),
		NotificationQueue:  getEnv("NOTIFICATION_QUEUE_URL", ""),
		NotifyPollInterval: getEnvAsDuration("NOTIFY_POLL_INTERVAL", 5*time.Second),
		NotifyWaitSeconds:  getEnvAsInt("NOTIFY_WAIT_SECONDS", 10),
		NotifyMaxMessages:  getEnvAsInt("NOTIFY_MAX_MESSAGES", 5),
		SlotLimit:          getEnvAsInt("SLOT_LIMIT", 3),

		EmailProvider:  getEnv("EMAIL_PROVIDER", "ses"),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderName:     getEnv("SENDER_NAME", "Healthcare Support Team"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
