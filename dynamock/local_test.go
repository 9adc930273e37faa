package dynamock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nisimpson/bizdir"
)

func TestNewLocalDynamoDB(t *testing.T) {
	local := NewLocalDynamoDB(8001)

	if local.Client == nil {
		t.Fatal("Client is nil")
	}
	if local.Endpoint != "http://localhost:8001" {
		t.Errorf("expected endpoint http://localhost:8001, got %s", local.Endpoint)
	}
	if local.Port != 8001 {
		t.Errorf("expected port 8001, got %d", local.Port)
	}

	opts := local.Client.Options()
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != local.Endpoint {
		t.Errorf("client not pointed at %s", local.Endpoint)
	}
	if opts.Credentials == nil {
		t.Error("client has no credentials")
	}
}

func TestNewDefaultLocalDynamoDB(t *testing.T) {
	if port := NewDefaultLocalDynamoDB().Port; port != DefaultLocalPort {
		t.Errorf("expected port %d, got %d", DefaultLocalPort, port)
	}
	if NewLocalClient(DefaultLocalPort) == nil {
		t.Error("NewLocalClient returned nil")
	}
}

func TestLocalDynamoDB_Store(t *testing.T) {
	table := bizdir.NewTable("Businesses")
	store := NewLocalDynamoDB(1).Store(table)

	if store.Table() != table {
		t.Error("store not bound to table")
	}
}

func TestLocalDynamoDB_IsAvailable_NotRunning(t *testing.T) {
	// Nothing listens on port 1
	local := NewLocalDynamoDB(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if local.IsAvailable(ctx) {
		t.Error("expected DynamoDB Local to be unavailable on port 1")
	}
}

func TestLocalDynamoDB_WaitForAvailable_Timeout(t *testing.T) {
	local := NewLocalDynamoDB(1)

	err := local.WaitForAvailable(context.Background(), 100*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestLocalDynamoDB_TableRoundTrip(t *testing.T) {
	WithDefaultLocalDynamoDB(t, func(local *LocalDynamoDB) {
		ctx := context.Background()
		table := NewTestTable("roundtrip")

		if err := local.CreateTables(ctx, table); err != nil {
			t.Fatalf("CreateTables failed: %v", err)
		}
		if err := local.DeleteTables(ctx, table); err != nil {
			t.Fatalf("DeleteTables failed: %v", err)
		}

		// Dropping again is a no-op.
		if err := local.DeleteTables(ctx, table); err != nil {
			t.Errorf("second DeleteTables failed: %v", err)
		}
	})
}
