package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

// ErrDoctorNotFound indicates no doctor record matched the lookup.
var ErrDoctorNotFound = errors.New("directory: doctor not found")

// Doctor is the immutable reference record for a practitioner. Records are
// created and updated out of band; this service only reads them.
type Doctor struct {
	DoctorID  string `dynamodbav:"doctor_id" json:"doctor_id"`
	Name      string `dynamodbav:"name" json:"name"`
	Specialty string `dynamodbav:"specialty" json:"specialty"`
	Location  string `dynamodbav:"location" json:"location"`
}

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Repository reads doctor records from DynamoDB.
type Repository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewRepository builds a repository backed by the provided DynamoDB client.
func NewRepository(client dynamoAPI, tableName string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("directory: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("directory: table name cannot be empty")
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

// GetByID fetches a doctor by its unique id.
func (r *Repository) GetByID(ctx context.Context, doctorID string) (*Doctor, error) {
	if doctorID == "" {
		return nil, errors.New("directory: doctorID required")
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"doctor_id": &types.AttributeValueMemberS{Value: doctorID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("directory: failed to fetch doctor %s: %w", doctorID, err)
	}
	if out.Item == nil {
		return nil, ErrDoctorNotFound
	}

	var doc Doctor
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("directory: failed to decode doctor: %w", err)
	}
	return &doc, nil
}

// FindByName resolves a doctor by display name. An exact match always wins;
// when none exists the lookup falls back to a contains match and returns the
// first record encountered. Order among multiple contains matches is not
// guaranteed.
func (r *Repository) FindByName(ctx context.Context, name string) (*Doctor, error) {
	if name == "" {
		return nil, errors.New("directory: name required")
	}

	doc, err := r.scanByName(ctx, "#n = :name", name)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		return doc, nil
	}

	doc, err = r.scanByName(ctx, "contains(#n, :name)", name)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDoctorNotFound
	}
	return doc, nil
}

func (r *Repository) scanByName(ctx context.Context, filter, name string) (*Doctor, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String(filter),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("directory: failed to scan doctors by name: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var doc Doctor
	if err := attributevalue.UnmarshalMap(out.Items[0], &doc); err != nil {
		return nil, fmt.Errorf("directory: failed to decode doctor: %w", err)
	}
	return &doc, nil
}

// List returns all doctors matching the given specialty and location exactly.
func (r *Repository) List(ctx context.Context, specialty, location string) ([]Doctor, error) {
	if specialty == "" || location == "" {
		return nil, errors.New("directory: specialty and location required")
	}

	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#s = :specialty AND #l = :location"),
		ExpressionAttributeNames: map[string]string{
			"#s": "specialty",
			"#l": "location",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":specialty": &types.AttributeValueMemberS{Value: specialty},
			":location":  &types.AttributeValueMemberS{Value: location},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("directory: failed to list doctors: %w", err)
	}

	doctors := make([]Doctor, 0, len(out.Items))
	for _, item := range out.Items {
		var doc Doctor
		if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
			r.logger.Warn("skipping undecodable doctor record", "error", err)
			continue
		}
		doctors = append(doctors, doc)
	}
	return doctors, nil
}
