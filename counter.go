package bizdir

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// Allocator issues business ids from the counter row. It holds no state of its
// own: uniqueness comes entirely from the atomic ADD performed by DynamoDB, so
// any number of processes may share one counter row.
type Allocator struct {
	table  *Table
	client DynamoDBClient
}

// Allocator returns an Allocator backed by the table's counter row.
func (t *Table) Allocator(client DynamoDBClient) *Allocator {
	return &Allocator{
		table:  t,
		client: client,
	}
}

// Next increments the counter and returns the new value.
func (a *Allocator) Next(ctx context.Context) (int64, error) {
	input, err := a.table.MarshalIncrement()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	out, err := a.client.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	return a.unmarshalCount(out.Attributes)
}

// Allocate increments the counter and returns the formatted business id,
// e.g. "Business_007".
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	n, err := a.Next(ctx)
	if err != nil {
		return "", err
	}
	return FormatBusinessID(n), nil
}

// Reset sets the counter to n. The next allocation returns n+1.
func (a *Allocator) Reset(ctx context.Context, n int64) error {
	input, err := a.table.MarshalCounterSet(n)
	if err != nil {
		return fmt.Errorf("failed to marshal counter update: %w", err)
	}

	if _, err := a.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to reset counter: %w", err)
	}

	return nil
}

func (a *Allocator) unmarshalCount(attrs Item) (int64, error) {
	attr, ok := attrs[a.table.CounterAttribute]
	if !ok {
		return 0, fmt.Errorf("%w: %s missing from update response", ErrAllocation, a.table.CounterAttribute)
	}

	var n int64
	if err := attributevalue.Unmarshal(attr, &n); err != nil {
		return 0, fmt.Errorf("%w: failed to unmarshal %s: %w", ErrAllocation, a.table.CounterAttribute, err)
	}

	return n, nil
}
