package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// Confirmation is the payload handed to the notification pipeline after a
// slot has been claimed. Delivery is best effort and never affects the
// booking itself.
type Confirmation struct {
	ConfirmationID  string `json:"confirmationId"`
	PatientName     string `json:"patientName"`
	PatientEmail    string `json:"patientEmail"`
	SymptomsSummary string `json:"symptomsSummary"`
	ReportInsight   string `json:"reportInsight"`
	Specialty       string `json:"specialty"`
	DoctorName      string `json:"doctorName"`
	AppointmentTime string `json:"appointmentTime"`
}

// Publisher hands a confirmation off for asynchronous delivery. A nil error
// means the payload was accepted, not that the email has been delivered.
type Publisher interface {
	Publish(ctx context.Context, c Confirmation) error
}

type sqsAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueuePublisher enqueues confirmations to SQS for the notify worker.
type QueuePublisher struct {
	client   sqsAPI
	queueURL string
	logger   *logging.Logger
}

// NewQueuePublisher creates a publisher over the provided SQS client.
func NewQueuePublisher(client sqsAPI, queueURL string, logger *logging.Logger) *QueuePublisher {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QueuePublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Publish serializes the confirmation and sends it to the queue.
func (p *QueuePublisher) Publish(ctx context.Context, c Confirmation) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("notify: failed to marshal confirmation: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to enqueue confirmation: %w", err)
	}

	p.logger.Info("confirmation enqueued", "confirmation_id", c.ConfirmationID, "to", c.PatientEmail)
	return nil
}

// StubPublisher logs confirmations without sending them, for tests and
// environments without a queue.
type StubPublisher struct {
	logger *logging.Logger
}

// NewStubPublisher creates a no-op publisher.
func NewStubPublisher(logger *logging.Logger) *StubPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubPublisher{logger: logger}
}

// Publish logs the confirmation but doesn't deliver it.
func (p *StubPublisher) Publish(ctx context.Context, c Confirmation) error {
	p.logger.Info("stub publisher: would enqueue confirmation", "confirmation_id", c.ConfirmationID, "to", c.PatientEmail)
	return nil
}

// Ensure interface compliance
var _ Publisher = (*QueuePublisher)(nil)
var _ Publisher = (*StubPublisher)(nil)
