package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// SlotTimeLayout is the canonical wire form for a slot timestamp, always UTC.
const SlotTimeLayout = "2006-01-02T15:04:05Z"

var (
	// ErrScheduleNotFound indicates the doctor has no schedule record.
	ErrScheduleNotFound = errors.New("schedule: schedule not found")
	// ErrSlotConflict indicates the targeted slot no longer exists at removal
	// time, typically because another booking already claimed it.
	ErrSlotConflict = errors.New("schedule: slot no longer available")
)

// Schedule holds a doctor's open slots keyed by opaque slot id, with values
// already normalized to SlotTimeLayout strings.
type Schedule struct {
	ScheduleID string
	DoctorID   string
	Slots      map[string]string
}

type dynamoAPI interface {
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Repository reads and mutates doctor schedules in DynamoDB. It is the only
// component that sees raw slot encodings; everything downstream works with
// canonical timestamp strings.
type Repository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewRepository builds a repository backed by the provided DynamoDB client.
func NewRepository(client dynamoAPI, tableName string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("schedule: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("schedule: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Repository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetByDoctor fetches the schedule record for a doctor and normalizes its
// slot values. Entries that cannot be decoded are logged and dropped rather
// than failing the whole read.
func (r *Repository) GetByDoctor(ctx context.Context, doctorID string) (*Schedule, error) {
	scheduleID, raw, err := r.fetchRaw(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]string, len(raw))
	for slotKey, slotVal := range raw {
		ts, ok := normalizeSlot(slotVal)
		if !ok {
			r.logger.Warn("skipping slot with unexpected value format", "schedule_id", scheduleID, "slot_key", slotKey)
			continue
		}
		slots[slotKey] = ts
	}

	return &Schedule{
		ScheduleID: scheduleID,
		DoctorID:   doctorID,
		Slots:      slots,
	}, nil
}

// RemoveSlot deletes the single slot whose value equals the given timestamp
// and returns its slot key. The removal is conditional on the slot still
// holding that exact value, so of two racing bookings exactly one succeeds
// and the loser gets ErrSlotConflict.
func (r *Repository) RemoveSlot(ctx context.Context, doctorID, timestamp string) (string, error) {
	if doctorID == "" || timestamp == "" {
		return "", errors.New("schedule: doctorID and timestamp required")
	}

	scheduleID, raw, err := r.fetchRaw(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return "", ErrSlotConflict
		}
		return "", err
	}

	slotKey := ""
	var stored types.AttributeValue
	for key, val := range raw {
		ts, ok := normalizeSlot(val)
		if !ok {
			continue
		}
		if ts == timestamp {
			slotKey = key
			stored = val
			break
		}
	}
	if slotKey == "" {
		r.logger.Info("no slot matches requested timestamp", "schedule_id", scheduleID, "timestamp", timestamp)
		return "", ErrSlotConflict
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"schedule_id": &types.AttributeValueMemberS{Value: scheduleID},
		},
		UpdateExpression: aws.String("REMOVE timeslots.#slot"),
		ExpressionAttributeNames: map[string]string{
			"#slot": slotKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ts": stored,
		},
		ConditionExpression: aws.String("timeslots.#slot = :ts"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			r.logger.Info("slot claimed by a concurrent booking", "schedule_id", scheduleID, "slot_key", slotKey)
			return "", ErrSlotConflict
		}
		return "", fmt.Errorf("schedule: failed to remove slot %s: %w", slotKey, err)
	}

	r.logger.Info("slot removed", "schedule_id", scheduleID, "slot_key", slotKey, "timestamp", timestamp)
	return slotKey, nil
}

func (r *Repository) fetchRaw(ctx context.Context, doctorID string) (string, map[string]types.AttributeValue, error) {
	if doctorID == "" {
		return "", nil, errors.New("schedule: doctorID required")
	}

	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("doctor_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: doctorID},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("schedule: failed to fetch schedule for doctor %s: %w", doctorID, err)
	}
	if len(out.Items) == 0 {
		return "", nil, ErrScheduleNotFound
	}

	item := out.Items[0]
	idAttr, ok := item["schedule_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", nil, errors.New("schedule: record missing schedule_id")
	}

	raw := map[string]types.AttributeValue{}
	if slots, ok := item["timeslots"].(*types.AttributeValueMemberM); ok {
		raw = slots.Value
	}
	return idAttr.Value, raw, nil
}

// normalizeSlot canonicalizes the two stored slot encodings: a plain string
// attribute, or a string wrapped in a single-entry map under "S" (the shape
// left behind by raw attribute-value imports).
func normalizeSlot(val types.AttributeValue) (string, bool) {
	switch v := val.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, true
	case *types.AttributeValueMemberM:
		if inner, ok := v.Value["S"].(*types.AttributeValueMemberS); ok {
			return inner.Value, true
		}
	}
	return "", false
}
