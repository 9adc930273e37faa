package bizdir

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestTableMarshalPut(t *testing.T) {
	table := NewTable("Businesses")
	b := Business{
		BusID:     "Business_001",
		Name:      "Acme",
		Status:    "active",
		CreatedAt: "2024-01-01T09:00:00.000Z",
	}

	input, err := table.MarshalPut(b)
	if err != nil {
		t.Fatalf("MarshalPut failed: %v", err)
	}

	if aws.ToString(input.TableName) != "Businesses" {
		t.Errorf("expected table Businesses, got %s", aws.ToString(input.TableName))
	}

	for attr, want := range map[string]string{
		"busId":     "Business_001",
		"name":      "Acme",
		"status":    "active",
		"createdAt": "2024-01-01T09:00:00.000Z",
	} {
		got, ok := input.Item[attr].(*types.AttributeValueMemberS)
		if !ok || got.Value != want {
			t.Errorf("expected %s=%s, got %v", attr, want, input.Item[attr])
		}
	}

	if !strings.Contains(aws.ToString(input.ConditionExpression), "attribute_not_exists") {
		t.Errorf("expected attribute_not_exists condition, got %s", aws.ToString(input.ConditionExpression))
	}

	var found bool
	for _, name := range input.ExpressionAttributeNames {
		found = found || name == "busId"
	}
	if !found {
		t.Errorf("expected condition on busId, got %v", input.ExpressionAttributeNames)
	}
}

func TestTableMarshalPut_MissingID(t *testing.T) {
	if _, err := NewTable("Businesses").MarshalPut(Business{Name: "Acme"}); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestTableMarshalDelete(t *testing.T) {
	table := NewTable("Businesses")

	input, err := table.MarshalDelete("Business_002")
	if err != nil {
		t.Fatalf("MarshalDelete failed: %v", err)
	}

	key, ok := input.Key["busId"].(*types.AttributeValueMemberS)
	if !ok || key.Value != "Business_002" {
		t.Errorf("unexpected key %v", input.Key)
	}

	if _, err := table.MarshalDelete(""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestTableMarshalScan(t *testing.T) {
	table := NewTable("Businesses")

	input := table.MarshalScan(nil)
	if input.Limit != nil {
		t.Errorf("expected no limit, got %d", aws.ToInt32(input.Limit))
	}
	if input.ExclusiveStartKey != nil {
		t.Error("expected no start key")
	}

	table.ScanPageSize = 25
	start := Item{"busId": &types.AttributeValueMemberS{Value: "Business_010"}}
	input = table.MarshalScan(start)
	if aws.ToInt32(input.Limit) != 25 {
		t.Errorf("expected limit 25, got %d", aws.ToInt32(input.Limit))
	}
	if input.ExclusiveStartKey == nil {
		t.Error("expected start key")
	}
}

func TestTableMarshalIncrement(t *testing.T) {
	table := NewTable("Businesses")

	input, err := table.MarshalIncrement()
	if err != nil {
		t.Fatalf("MarshalIncrement failed: %v", err)
	}

	if aws.ToString(input.TableName) != "idCounter" {
		t.Errorf("expected table idCounter, got %s", aws.ToString(input.TableName))
	}
	if !strings.HasPrefix(aws.ToString(input.UpdateExpression), "ADD ") {
		t.Errorf("expected ADD update, got %s", aws.ToString(input.UpdateExpression))
	}
	if input.ReturnValues != types.ReturnValueUpdatedNew {
		t.Errorf("expected UPDATED_NEW, got %s", input.ReturnValues)
	}

	key, ok := input.Key["id"].(*types.AttributeValueMemberS)
	if !ok || key.Value != "BusinessId" {
		t.Errorf("unexpected counter key %v", input.Key)
	}

	var one bool
	for _, v := range input.ExpressionAttributeValues {
		if n, ok := v.(*types.AttributeValueMemberN); ok && n.Value == "1" {
			one = true
		}
	}
	if !one {
		t.Errorf("expected increment of 1, got %v", input.ExpressionAttributeValues)
	}
}

func TestTableMarshalCounterSet(t *testing.T) {
	input, err := NewTable("Businesses").MarshalCounterSet(12)
	if err != nil {
		t.Fatalf("MarshalCounterSet failed: %v", err)
	}

	if !strings.HasPrefix(aws.ToString(input.UpdateExpression), "SET ") {
		t.Errorf("expected SET update, got %s", aws.ToString(input.UpdateExpression))
	}
}

func TestTableMarshalCreateTables(t *testing.T) {
	inputs := NewTable("Businesses").MarshalCreateTables()

	if len(inputs) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(inputs))
	}

	for i, want := range []struct{ table, key string }{
		{"Businesses", "busId"},
		{"idCounter", "id"},
	} {
		in := inputs[i]
		if aws.ToString(in.TableName) != want.table {
			t.Errorf("expected table %s, got %s", want.table, aws.ToString(in.TableName))
		}
		if len(in.KeySchema) != 1 || aws.ToString(in.KeySchema[0].AttributeName) != want.key {
			t.Errorf("unexpected key schema for %s", want.table)
		}
		if in.BillingMode != types.BillingModePayPerRequest {
			t.Errorf("expected on demand billing for %s", want.table)
		}
	}
}
