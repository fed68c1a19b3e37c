package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/careassist-ai/appointment-agent/pkg/logging"
)

func doctorItem(id, name, specialty, location string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"doctor_id": &types.AttributeValueMemberS{Value: id},
		"name":      &types.AttributeValueMemberS{Value: name},
		"specialty": &types.AttributeValueMemberS{Value: specialty},
		"location":  &types.AttributeValueMemberS{Value: location},
	}
}

func TestGetByID_Success(t *testing.T) {
	mock := &mockDynamo{
		getOutput: &dynamodb.GetItemOutput{
			Item: doctorItem("doc-1", "Dr. Asha Rao", "Cardiology", "Mumbai"),
		},
	}
	repo := NewRepository(mock, "doctors", logging.Default())

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if doc.Name != "Dr. Asha Rao" || doc.Specialty != "Cardiology" {
		t.Fatalf("unexpected doctor: %#v", doc)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	mock := &mockDynamo{getOutput: &dynamodb.GetItemOutput{}}
	repo := NewRepository(mock, "doctors", logging.Default())

	if _, err := repo.GetByID(context.Background(), "doc-404"); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestFindByName_ExactMatchWins(t *testing.T) {
	mock := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{Items: []map[string]types.AttributeValue{
				doctorItem("doc-1", "Dr. Asha Rao", "Cardiology", "Mumbai"),
			}},
		},
	}
	repo := NewRepository(mock, "doctors", logging.Default())

	doc, err := repo.FindByName(context.Background(), "Dr. Asha Rao")
	if err != nil {
		t.Fatalf("FindByName returned error: %v", err)
	}
	if doc.DoctorID != "doc-1" {
		t.Fatalf("unexpected doctor: %#v", doc)
	}
	if len(mock.scanInputs) != 1 {
		t.Fatalf("expected a single exact-match scan, got %d", len(mock.scanInputs))
	}
	if expr := mock.scanInputs[0].FilterExpression; expr == nil || *expr != "#n = :name" {
		t.Fatalf("expected exact-match filter, got %v", expr)
	}
}

func TestFindByName_FallsBackToContains(t *testing.T) {
	mock := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{},
			{Items: []map[string]types.AttributeValue{
				doctorItem("doc-2", "Dr. Meera Nair", "Dermatology", "Kochi"),
			}},
		},
	}
	repo := NewRepository(mock, "doctors", logging.Default())

	doc, err := repo.FindByName(context.Background(), "Meera")
	if err != nil {
		t.Fatalf("FindByName returned error: %v", err)
	}
	if doc.DoctorID != "doc-2" {
		t.Fatalf("unexpected doctor: %#v", doc)
	}
	if len(mock.scanInputs) != 2 {
		t.Fatalf("expected exact then contains scans, got %d", len(mock.scanInputs))
	}
	if expr := mock.scanInputs[1].FilterExpression; expr == nil || *expr != "contains(#n, :name)" {
		t.Fatalf("expected contains filter on fallback, got %v", expr)
	}
}

func TestFindByName_NotFound(t *testing.T) {
	mock := &mockDynamo{scanOutputs: []*dynamodb.ScanOutput{{}, {}}}
	repo := NewRepository(mock, "doctors", logging.Default())

	if _, err := repo.FindByName(context.Background(), "Nobody"); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestList_FiltersOnSpecialtyAndLocation(t *testing.T) {
	mock := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{Items: []map[string]types.AttributeValue{
				doctorItem("doc-1", "Dr. Asha Rao", "Cardiology", "Mumbai"),
				doctorItem("doc-3", "Dr. Vikram Shah", "Cardiology", "Mumbai"),
			}},
		},
	}
	repo := NewRepository(mock, "doctors", logging.Default())

	doctors, err := repo.List(context.Background(), "Cardiology", "Mumbai")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(doctors))
	}

	input := mock.scanInputs[0]
	if expr := input.FilterExpression; expr == nil || *expr != "#s = :specialty AND #l = :location" {
		t.Fatalf("unexpected filter expression %v", expr)
	}
	if input.ExpressionAttributeValues[":specialty"].(*types.AttributeValueMemberS).Value != "Cardiology" {
		t.Fatal("expected specialty bound in expression values")
	}
}

func TestList_RequiresBothFilters(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "doctors", logging.Default())
	if _, err := repo.List(context.Background(), "Cardiology", ""); err == nil {
		t.Fatal("expected error when location missing")
	}
}

type mockDynamo struct {
	getOutput   *dynamodb.GetItemOutput
	getErr      error
	scanInputs  []*dynamodb.ScanInput
	scanOutputs []*dynamodb.ScanOutput
	scanErr     error
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) Scan(ctx context.Context, input *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanInputs = append(m.scanInputs, input)
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	idx := len(m.scanInputs) - 1
	if idx < len(m.scanOutputs) {
		return m.scanOutputs[idx], nil
	}
	return &dynamodb.ScanOutput{}, nil
}
