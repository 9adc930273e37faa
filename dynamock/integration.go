package dynamock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nisimpson/bizdir"
)

// TableManager creates tables on DynamoDB Local and drops them again.
type TableManager struct {
	local  *LocalDynamoDB
	tables []*bizdir.Table
}

// NewTableManager returns a TableManager for local.
func NewTableManager(local *LocalDynamoDB) *TableManager {
	return &TableManager{local: local}
}

// CreateTestTables creates both tables of table and remembers them for Cleanup.
func (tm *TableManager) CreateTestTables(ctx context.Context, table *bizdir.Table) error {
	if err := tm.local.CreateTables(ctx, table); err != nil {
		return err
	}
	tm.tables = append(tm.tables, table)
	return nil
}

// Cleanup drops every table created through tm.
func (tm *TableManager) Cleanup(ctx context.Context) error {
	for _, table := range tm.tables {
		if err := tm.local.DeleteTables(ctx, table); err != nil {
			return err
		}
	}
	tm.tables = nil
	return nil
}

// GetTableNames returns the names of the tables tm created, businesses table
// first for each.
func (tm *TableManager) GetTableNames() []string {
	names := make([]string, 0, 2*len(tm.tables))
	for _, table := range tm.tables {
		names = append(names, table.TableName, table.CounterTableName)
	}
	return names
}

// NewTestTable returns a table whose businesses and counter table names are
// prefixed and unique per call.
func NewTestTable(prefix string) *bizdir.Table {
	suffix := time.Now().UnixNano()
	return bizdir.NewTable(
		fmt.Sprintf("%s-businesses-%d", prefix, suffix),
		bizdir.WithCounterTable(fmt.Sprintf("%s-counter-%d", prefix, suffix)),
	)
}

// WithIsolatedTables runs fn against fresh tables that are dropped when the
// test ends.
func WithIsolatedTables(t *testing.T, local *LocalDynamoDB, fn func(table *bizdir.Table)) {
	t.Helper()
	ctx := context.Background()
	tm := NewTableManager(local)

	t.Cleanup(func() {
		if err := tm.Cleanup(ctx); err != nil {
			t.Errorf("failed to drop test tables: %v", err)
		}
	})

	table := NewTestTable(sanitize(t.Name()))
	if err := tm.CreateTestTables(ctx, table); err != nil {
		t.Fatalf("failed to create test tables: %v", err)
	}

	fn(table)
}

// WithLocalDynamoDB runs fn against DynamoDB Local on port, skipping the test
// in -short mode or when nothing answers.
func WithLocalDynamoDB(t *testing.T, port int, fn func(local *LocalDynamoDB)) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping DynamoDB Local test in short mode")
	}

	local := NewLocalDynamoDB(port)
	if !local.IsAvailable(context.Background()) {
		t.Skipf("DynamoDB Local not available on port %d", port)
	}

	fn(local)
}

// WithDefaultLocalDynamoDB is WithLocalDynamoDB on DefaultLocalPort.
func WithDefaultLocalDynamoDB(t *testing.T, fn func(local *LocalDynamoDB)) {
	WithLocalDynamoDB(t, DefaultLocalPort, fn)
}

// SeedTestData writes fixture businesses straight into a table, bypassing
// the id allocator.
type SeedTestData struct {
	client bizdir.DynamoDBClient
	table  *bizdir.Table
}

// NewSeedTestData returns a seeder for table.
func NewSeedTestData(client bizdir.DynamoDBClient, table *bizdir.Table) *SeedTestData {
	return &SeedTestData{client: client, table: table}
}

// SeedBusiness writes b with its id as given.
func (s *SeedTestData) SeedBusiness(ctx context.Context, b bizdir.Business) error {
	put, err := s.table.MarshalPut(b)
	if err != nil {
		return fmt.Errorf("failed to marshal business: %w", err)
	}
	if _, err := s.client.PutItem(ctx, put); err != nil {
		return fmt.Errorf("failed to seed business %s: %w", b.BusID, err)
	}
	return nil
}

// SeedBusinesses writes every business and moves the counter to the highest
// seeded id so later allocations do not collide with the fixtures.
func (s *SeedTestData) SeedBusinesses(ctx context.Context, businesses ...bizdir.Business) error {
	var ids []int64
	for _, b := range businesses {
		if err := s.SeedBusiness(ctx, b); err != nil {
			return err
		}
		if n, err := bizdir.ParseBusinessID(b.BusID); err == nil {
			ids = append(ids, n)
		}
	}

	if len(ids) == 0 {
		return nil
	}
	return s.table.Allocator(s.client).Reset(ctx, slices.Max(ids))
}

// RunIntegrationTest runs fn against fresh tables on DynamoDB Local at the
// default port.
func RunIntegrationTest(t *testing.T, fn func(local *LocalDynamoDB, table *bizdir.Table)) {
	t.Helper()
	WithDefaultLocalDynamoDB(t, func(local *LocalDynamoDB) {
		WithIsolatedTables(t, local, func(table *bizdir.Table) {
			fn(local, table)
		})
	})
}

// sanitize turns a test name into something DynamoDB accepts in a table name.
func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		}
		return '-'
	}, name)
	return name[:min(len(name), 100)]
}
