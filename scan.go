package bizdir

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ScanResult has the shape of a DynamoDB scan response, aggregated over every page.
type ScanResult struct {
	Items        []Business `json:"Items"`
	Count        int        `json:"Count"`
	ScannedCount int        `json:"ScannedCount"`
}

// ScanAll reads every business in the table, following LastEvaluatedKey until the
// scan is exhausted. Items are returned in scan order, which is unspecified.
func (t *Table) ScanAll(ctx context.Context, client DynamoDBClient) (ScanResult, error) {
	result := ScanResult{Items: make([]Business, 0)}

	paginator := dynamodb.NewScanPaginator(client, t.MarshalScan(nil))
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to scan %s: %w", t.TableName, err)
		}

		items, err := UnmarshalList(page.Items)
		if err != nil {
			return result, err
		}

		result.Items = append(result.Items, items...)
		result.Count += int(page.Count)
		result.ScannedCount += int(page.ScannedCount)
	}

	return result, nil
}

// UnmarshalList unmarshals each item into a Business.
func UnmarshalList(items []Item) ([]Business, error) {
	out := make([]Business, 0, len(items))

	for i, item := range items {
		var b Business
		if err := attributevalue.UnmarshalMap(item, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %d: %w", i, err)
		}
		out = append(out, b)
	}

	return out, nil
}
