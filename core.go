package bizdir

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrAllocation is returned when the identifier counter could not be incremented.
	ErrAllocation = errors.New("failed to allocate business id")
	// ErrPersist is returned when a business could not be written after its id was allocated.
	ErrPersist = errors.New("failed to persist business")
	// ErrInvalidBusiness is returned when a create request violates the validation policy.
	ErrInvalidBusiness = errors.New("invalid business")
	// ErrInvalidCursor is returned when a page cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid page cursor")
)

// Clock is a function type that returns the current time for dependency injection.
type Clock func() time.Time

// DefaultClock returns the current UTC time.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

const (
	// IDPrefix is prepended to every allocated counter value.
	IDPrefix = "Business_"
	// IDWidth is the minimum number of digits in a business id. Larger values widen.
	IDWidth = 3
	// TimestampLayout renders creation times in UTC with millisecond precision,
	// e.g. 2024-01-31T23:59:59.000Z. The fixed width keeps lexical and
	// chronological order identical.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

const (
	AttributeNameBusID      = "busId"
	AttributeNameName       = "name"
	AttributeNameStatus     = "status"
	AttributeNameCreatedAt  = "createdAt"
	AttributeNameCounterKey = "id"
	AttributeNameCount      = "idCount"
)

// Business is a single record of the businesses table. BusID and CreatedAt are
// assigned by the store on creation and never change afterwards.
type Business struct {
	BusID     string `dynamodbav:"busId" json:"busId"`
	Name      string `dynamodbav:"name" json:"name"`
	Status    string `dynamodbav:"status" json:"status"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// Created parses CreatedAt.
func (b Business) Created() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, b.CreatedAt)
}

// FormatTimestamp formats t the way CreatedAt is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatBusinessID renders a counter value as a business id, zero padded to IDWidth digits.
func FormatBusinessID(n int64) string {
	return fmt.Sprintf("%s%0*d", IDPrefix, IDWidth, n)
}

// ParseBusinessID returns the counter value encoded in id.
func ParseBusinessID(id string) (int64, error) {
	digits, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid business id %q", id)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid business id %q: %w", id, err)
	}
	return n, nil
}

// Table contains the DynamoDB table configuration for businesses and the id counter.
type Table struct {
	TableName           string // Businesses table name
	KeyAttribute        string // Hash key of the businesses table
	CounterTableName    string // Counter table name
	CounterKeyAttribute string // Hash key of the counter table
	CounterKey          string // Key of the counter row
	CounterAttribute    string // Numeric attribute incremented on every allocation
	ScanPageSize        int32  // Items requested per scan page. Zero lets DynamoDB decide.
}

// NewTable creates a new Table with default configuration.
func NewTable(tableName string, opts ...func(*Table)) *Table {
	t := &Table{
		TableName:           tableName,
		KeyAttribute:        AttributeNameBusID,
		CounterTableName:    "idCounter",
		CounterKeyAttribute: AttributeNameCounterKey,
		CounterKey:          "BusinessId",
		CounterAttribute:    AttributeNameCount,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithCounterTable overrides the counter table name.
func WithCounterTable(name string) func(*Table) {
	return func(t *Table) {
		t.CounterTableName = name
	}
}

// WithCounterKey overrides the key of the counter row.
func WithCounterKey(key string) func(*Table) {
	return func(t *Table) {
		t.CounterKey = key
	}
}

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// DynamoDBClient interface for easier testing and connection management.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Ensure the SDK client satisfies DynamoDBClient
var _ DynamoDBClient = (*dynamodb.Client)(nil)
