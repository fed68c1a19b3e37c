package insight

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// NotAvailable is the sentinel returned when no report insight exists for a
// session. Callers pass it through as-is; it is never an error.
const NotAvailable = "NA"

var boldMarkers = regexp.MustCompile(`\*\*(.*?)\*\*`)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Store reads extracted medical-report summaries written by the document
// pipeline. Lookups are best effort: any failure degrades to NotAvailable.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("insight: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("insight: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Summary returns the cleaned report summary for a session, or NotAvailable
// when none exists or the lookup fails.
func (s *Store) Summary(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return NotAvailable
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"submission_id": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		s.logger.Error("report summary lookup failed", "error", err, "session_id", sessionID)
		return NotAvailable
	}
	if out.Item == nil {
		return NotAvailable
	}

	raw, err := firstSummaryValue(out.Item)
	if err != nil {
		s.logger.Warn("report summary record has unexpected shape", "error", err, "session_id", sessionID)
		return NotAvailable
	}

	cleaned := strings.TrimSpace(boldMarkers.ReplaceAllString(raw, "$1"))
	if cleaned == "" {
		return NotAvailable
	}
	return cleaned
}

// firstSummaryValue extracts the first entry of the record's key_value list.
// The extraction pipeline writes summaries as a list of strings.
func firstSummaryValue(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item["key_value"]
	if !ok {
		return "", errors.New("insight: missing key_value attribute")
	}
	list, ok := attr.(*types.AttributeValueMemberL)
	if !ok || len(list.Value) == 0 {
		return "", errors.New("insight: key_value is not a non-empty list")
	}
	first, ok := list.Value[0].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("insight: key_value entry is not a string")
	}
	return first.Value, nil
}
