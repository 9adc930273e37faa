package bizdir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ClientConfig holds the settings needed to reach DynamoDB.
type ClientConfig struct {
	Region   string // Falls back to the SDK default chain when empty
	Endpoint string // Optional endpoint override, e.g. http://localhost:8000 for DynamoDB Local
}

// NewClient loads the default AWS configuration and returns a DynamoDB client.
func NewClient(ctx context.Context, cfg ClientConfig) (*dynamodb.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// SchemaClient is the subset of the DynamoDB API needed to create tables.
type SchemaClient interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// MarshalCreateTables returns create table requests for the businesses table and
// the counter table. Both are keyed by a single string hash key.
func (t *Table) MarshalCreateTables() []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		hashKeyTable(t.TableName, t.KeyAttribute),
		hashKeyTable(t.CounterTableName, t.CounterKeyAttribute),
	}
}

func hashKeyTable(name, key string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(key),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(key),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}

// CreateTables creates both tables and waits for them to become active. Tables
// that already exist are left untouched.
func (t *Table) CreateTables(ctx context.Context, client SchemaClient, timeout time.Duration) error {
	waiter := dynamodb.NewTableExistsWaiter(client)

	for _, input := range t.MarshalCreateTables() {
		name := aws.ToString(input.TableName)

		_, err := client.CreateTable(ctx, input)
		var inUse *types.ResourceInUseException
		if err != nil && !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}

		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, timeout); err != nil {
			return fmt.Errorf("table %s did not become active: %w", name, err)
		}
	}

	return nil
}
