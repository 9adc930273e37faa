package dynamock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/bizdir"
)

func TestNewMockClient(t *testing.T) {
	mock := NewMockClient(t)

	if mock == nil {
		t.Fatal("NewMockClient returned nil")
	}

	if mock.PutFunc == nil {
		t.Error("PutFunc not initialized")
	}

	if mock.DeleteFunc == nil {
		t.Error("DeleteFunc not initialized")
	}

	if mock.UpdateFunc == nil {
		t.Error("UpdateFunc not initialized")
	}

	if mock.ScanFunc == nil {
		t.Error("ScanFunc not initialized")
	}
}

func TestMockClient_PutItem_WithExpectation(t *testing.T) {
	mock := NewMockClient(t)
	ctx := context.Background()

	mock.PutFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		if aws.ToString(params.TableName) != "Businesses" {
			t.Errorf("expected table name Businesses, got %s", aws.ToString(params.TableName))
		}
		return &dynamodb.PutItemOutput{}, nil
	}

	input, err := bizdir.NewTable("Businesses").MarshalPut(NewBusiness().Build())
	if err != nil {
		t.Fatalf("MarshalPut failed: %v", err)
	}

	if _, err := mock.PutItem(ctx, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMockClient_UpdateItem_Error(t *testing.T) {
	mock := NewMockClient(t)
	ctx := context.Background()
	expectedErr := errors.New("throttled")

	mock.UpdateFunc = func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
		return nil, expectedErr
	}

	_, err := mock.UpdateItem(ctx, &dynamodb.UpdateItemInput{})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestMockClient_DrivesStore(t *testing.T) {
	mock := NewMockClient(t)
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")

	mock.ScanFunc = func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
		return &dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{
				{
					"busId":     &types.AttributeValueMemberS{Value: "Business_001"},
					"name":      &types.AttributeValueMemberS{Value: "Acme"},
					"status":    &types.AttributeValueMemberS{Value: "active"},
					"createdAt": &types.AttributeValueMemberS{Value: "2024-01-01T09:00:00.000Z"},
				},
			},
			Count:        1,
			ScannedCount: 1,
		}, nil
	}

	list, err := bizdir.NewStore(mock, table).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(list) != 1 || list[0].Name != "Acme" {
		t.Errorf("unexpected list %+v", list)
	}
}
