package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queueClient interface {
	Receive(ctx context.Context, maxMessages, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// SQSQueue implements queueClient backed by AWS/LocalStack SQS.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: SQS queueURL cannot be empty")
	}
	return &SQSQueue{
		client:   client,
		queueURL: queueURL,
	}
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages, waitSeconds int) ([]queueMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	}

	output, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to receive SQS messages: %w", err)
	}

	messages := make([]queueMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		messages = append(messages, queueMessage{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}

	return messages, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}

	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to delete SQS message: %w", err)
	}
	return nil
}

// Worker drains the confirmation queue and sends one email per message.
// Messages are deleted only after a successful send; failed sends stay on
// the queue and reappear after the visibility timeout.
type Worker struct {
	queue       queueClient
	sender      EmailSender
	logger      *logging.Logger
	interval    time.Duration
	maxMessages int
	waitSeconds int
}

// NewWorker builds a worker over the given queue and email sender.
func NewWorker(queue queueClient, sender EmailSender, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if sender == nil {
		panic("notify: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		queue:       queue,
		sender:      sender,
		logger:      logger,
		interval:    5 * time.Second,
		maxMessages: 5,
		waitSeconds: 10,
	}
}

// WithInterval overrides the pause between empty polls.
func (w *Worker) WithInterval(interval time.Duration) *Worker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// WithBatch overrides the receive batch size and long-poll wait.
func (w *Worker) WithBatch(maxMessages, waitSeconds int) *Worker {
	if maxMessages > 0 {
		w.maxMessages = maxMessages
	}
	if waitSeconds >= 0 {
		w.waitSeconds = waitSeconds
	}
	return w
}

// Run polls the queue until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("notify worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notify worker stopping")
			return
		default:
		}

		processed, err := w.DrainOnce(ctx)
		if err != nil {
			w.logger.Error("notify worker poll failed", "error", err)
		}
		if processed == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(w.interval):
			}
		}
	}
}

// DrainOnce receives a single batch and processes it, returning how many
// messages were handled.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	messages, err := w.queue.Receive(ctx, w.maxMessages, w.waitSeconds)
	if err != nil {
		return 0, err
	}

	for _, msg := range messages {
		if err := w.process(ctx, msg); err != nil {
			w.logger.Error("failed to process confirmation message", "error", err, "message_id", msg.ID)
			continue
		}
		if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			w.logger.Error("failed to delete processed message", "error", err, "message_id", msg.ID)
		}
	}
	return len(messages), nil
}

func (w *Worker) process(ctx context.Context, msg queueMessage) error {
	var c Confirmation
	if err := json.Unmarshal([]byte(msg.Body), &c); err != nil {
		// Drop poison messages instead of blocking the queue.
		w.logger.Warn("discarding undecodable confirmation message", "message_id", msg.ID)
		return nil
	}
	if c.PatientEmail == "" {
		w.logger.Warn("discarding confirmation without patient email", "confirmation_id", c.ConfirmationID)
		return nil
	}

	if err := w.sender.Send(ctx, ComposeConfirmation(c)); err != nil {
		return err
	}
	w.logger.Info("confirmation email sent", "confirmation_id", c.ConfirmationID, "to", c.PatientEmail)
	return nil
}
