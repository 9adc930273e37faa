package bizdir

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MarshalPut marshals b into a put item request. The request is conditioned on the
// key being absent so an existing business is never overwritten.
func (t *Table) MarshalPut(b Business) (*dynamodb.PutItemInput, error) {
	if b.BusID == "" {
		return nil, fmt.Errorf("business id required")
	}

	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name(t.KeyAttribute))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.PutItemInput{
		TableName:                aws.String(t.TableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	}, nil
}

// MarshalDelete marshals busID into a delete item request.
func (t *Table) MarshalDelete(busID string) (*dynamodb.DeleteItemInput, error) {
	if busID == "" {
		return nil, fmt.Errorf("business id required")
	}

	return &dynamodb.DeleteItemInput{
		TableName: aws.String(t.TableName),
		Key: Item{
			t.KeyAttribute: &types.AttributeValueMemberS{Value: busID},
		},
	}, nil
}

// MarshalScan marshals a full table scan request starting after startKey.
// A nil startKey begins at the start of the table.
func (t *Table) MarshalScan(startKey Item) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.TableName),
	}

	if t.ScanPageSize > 0 {
		input.Limit = aws.Int32(t.ScanPageSize)
	}

	if len(startKey) > 0 {
		input.ExclusiveStartKey = startKey
	}

	return input
}

// MarshalIncrement marshals the counter row into an update request that adds one
// to the counter attribute and returns the new value. ADD creates the attribute
// at zero when missing, so an empty counter table starts at 1.
func (t *Table) MarshalIncrement() (*dynamodb.UpdateItemInput, error) {
	update := expression.Add(expression.Name(t.CounterAttribute), expression.Value(1))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.UpdateItemInput{
		TableName: aws.String(t.CounterTableName),
		Key: Item{
			t.CounterKeyAttribute: &types.AttributeValueMemberS{Value: t.CounterKey},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	}, nil
}

// MarshalCounterSet marshals an update that sets the counter row to n. It is used to
// fast-forward the counter after records were imported with explicit ids.
func (t *Table) MarshalCounterSet(n int64) (*dynamodb.UpdateItemInput, error) {
	update := expression.Set(expression.Name(t.CounterAttribute), expression.Value(n))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.UpdateItemInput{
		TableName: aws.String(t.CounterTableName),
		Key: Item{
			t.CounterKeyAttribute: &types.AttributeValueMemberS{Value: t.CounterKey},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	}, nil
}
