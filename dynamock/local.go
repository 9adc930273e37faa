package dynamock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/bizdir"
)

// DefaultLocalPort is the port DynamoDB Local listens on by default.
const DefaultLocalPort = 8000

const localTableTimeout = 30 * time.Second

// LocalDynamoDB is a DynamoDB Local instance on localhost.
type LocalDynamoDB struct {
	Client   *dynamodb.Client
	Endpoint string
	Port     int
}

// NewLocalDynamoDB returns a LocalDynamoDB for port. DynamoDB Local ignores
// the region and accepts any keys, but requests must still be signed.
func NewLocalDynamoDB(port int) *LocalDynamoDB {
	endpoint := fmt.Sprintf("http://localhost:%d", port)
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("bizdir", "bizdir", ""),
	}

	return &LocalDynamoDB{
		Client: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}),
		Endpoint: endpoint,
		Port:     port,
	}
}

// NewDefaultLocalDynamoDB returns a LocalDynamoDB on DefaultLocalPort.
func NewDefaultLocalDynamoDB() *LocalDynamoDB {
	return NewLocalDynamoDB(DefaultLocalPort)
}

// NewLocalClient returns a DynamoDB client for DynamoDB Local on port.
//
//	store := bizdir.NewStore(dynamock.NewLocalClient(8000), bizdir.NewTable("Businesses"))
func NewLocalClient(port int) *dynamodb.Client {
	return NewLocalDynamoDB(port).Client
}

// Store returns a bizdir store over table backed by the local instance.
func (l *LocalDynamoDB) Store(table *bizdir.Table, opts ...bizdir.StoreOption) *bizdir.Store {
	return bizdir.NewStore(l.Client, table, opts...)
}

// IsAvailable reports whether DynamoDB Local answers on the configured port.
func (l *LocalDynamoDB) IsAvailable(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", strings.TrimPrefix(l.Endpoint, "http://"))
	if err != nil {
		return false
	}
	_ = conn.Close()

	// Something is listening; make sure it speaks DynamoDB.
	_, err = l.Client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err == nil
}

// WaitForAvailable polls until DynamoDB Local answers or timeout elapses.
func (l *LocalDynamoDB) WaitForAvailable(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		if l.IsAvailable(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("dynamodb local not available at %s: %w", l.Endpoint, ctx.Err())
		case <-tick.C:
		}
	}
}

// CreateTables creates the businesses and counter tables of table.
func (l *LocalDynamoDB) CreateTables(ctx context.Context, table *bizdir.Table) error {
	return table.CreateTables(ctx, l.Client, localTableTimeout)
}

// DeleteTables drops the businesses and counter tables of table.
func (l *LocalDynamoDB) DeleteTables(ctx context.Context, table *bizdir.Table) error {
	return errors.Join(
		l.DeleteTable(ctx, table.TableName),
		l.DeleteTable(ctx, table.CounterTableName),
	)
}

// DeleteTable drops a table and waits until it is gone. A missing table is
// not an error.
func (l *LocalDynamoDB) DeleteTable(ctx context.Context, name string) error {
	_, err := l.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(name)})

	var notFound *types.ResourceNotFoundException
	switch {
	case errors.As(err, &notFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to delete table %s: %w", name, err)
	}

	waiter := dynamodb.NewTableNotExistsWaiter(l.Client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, localTableTimeout); err != nil {
		return fmt.Errorf("table %s was not deleted: %w", name, err)
	}
	return nil
}
