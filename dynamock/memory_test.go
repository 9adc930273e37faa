package dynamock

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/dynamock/assert"
)

func TestMemoryClient_PutAndScan(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)

	for _, b := range Businesses(3) {
		input, err := table.MarshalPut(b)
		if err != nil {
			t.Fatalf("MarshalPut failed: %v", err)
		}
		if _, err := mem.PutItem(ctx, input); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}

	out, err := mem.Scan(ctx, table.MarshalScan(nil))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	assert.Items(t, out.Items).
		HasCount(3).
		ContainsBusiness("Business_001").
		ContainsBusiness("Business_003").
		HasAttribute("status", "active")

	if out.LastEvaluatedKey != nil {
		t.Errorf("expected no LastEvaluatedKey, got %v", out.LastEvaluatedKey)
	}
}

func TestMemoryClient_PutItem_ConditionFails(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)

	input, err := table.MarshalPut(NewBusiness().Build())
	if err != nil {
		t.Fatalf("MarshalPut failed: %v", err)
	}

	if _, err := mem.PutItem(ctx, input); err != nil {
		t.Fatalf("first PutItem failed: %v", err)
	}

	_, err = mem.PutItem(ctx, input)
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		t.Errorf("expected ConditionalCheckFailedException, got %v", err)
	}
}

func TestMemoryClient_ScanPages(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	table.ScanPageSize = 2
	mem := NewBusinessMemoryClient(table)

	if err := NewSeedTestData(mem, table).SeedBusinesses(ctx, Businesses(5)...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var pages int
	var seen []string
	var startKey bizdir.Item
	for {
		out, err := mem.Scan(ctx, table.MarshalScan(startKey))
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		pages++
		for _, item := range out.Items {
			seen = append(seen, item["busId"].(*types.AttributeValueMemberS).Value)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
	if len(seen) != 5 || seen[0] != "Business_001" || seen[4] != "Business_005" {
		t.Errorf("unexpected scan order %v", seen)
	}
}

func TestMemoryClient_UpdateItem_Add(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)

	input, err := table.MarshalIncrement()
	if err != nil {
		t.Fatalf("MarshalIncrement failed: %v", err)
	}

	for want := 1; want <= 3; want++ {
		out, err := mem.UpdateItem(ctx, input)
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		assert.DynamoDBItem(t, out.Attributes).HasNumber("idCount", strconv.Itoa(want))
	}

	items := mem.Items(table.CounterTableName)
	if len(items) != 1 {
		t.Fatalf("expected one counter row, got %d", len(items))
	}
	assert.DynamoDBItem(t, items[0]).
		HasKey("id", "BusinessId").
		HasNumber("idCount", "3")
}

func TestMemoryClient_UpdateItem_Set(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)

	set, err := table.MarshalCounterSet(41)
	if err != nil {
		t.Fatalf("MarshalCounterSet failed: %v", err)
	}
	if _, err := mem.UpdateItem(ctx, set); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	n, err := table.Allocator(mem).Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestMemoryClient_ConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)
	alloc := table.Allocator(mem)

	const n = 50
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := alloc.Next(ctx)
			if err != nil {
				t.Errorf("Next failed: %v", err)
				return
			}
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for v := range results {
		if seen[v] {
			t.Errorf("duplicate counter value %d", v)
		}
		seen[v] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct values, got %d", n, len(seen))
	}
}

func TestMemoryClient_FailOn(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)
	boom := errors.New("unavailable")

	mem.FailOn(OpScan, boom)
	if _, err := mem.Scan(ctx, table.MarshalScan(nil)); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}

	mem.FailOn(OpScan, nil)
	if _, err := mem.Scan(ctx, table.MarshalScan(nil)); err != nil {
		t.Errorf("expected failure to be cleared, got %v", err)
	}

	if got := mem.Calls(OpScan); got != 2 {
		t.Errorf("expected 2 scan calls, got %d", got)
	}
}

func TestMemoryClient_DeleteItem_Missing(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewBusinessMemoryClient(table)

	input, err := table.MarshalDelete("Business_404")
	if err != nil {
		t.Fatalf("MarshalDelete failed: %v", err)
	}

	if _, err := mem.DeleteItem(ctx, input); err != nil {
		t.Errorf("expected deleting a missing item to succeed, got %v", err)
	}
}

func TestMemoryClient_UnknownTable(t *testing.T) {
	mem := NewMemoryClient()

	_, err := mem.Scan(context.Background(), &dynamodb.ScanInput{TableName: aws.String("missing")})
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		t.Errorf("expected ResourceNotFoundException, got %v", err)
	}
}

func TestMemoryClient_CreateTables(t *testing.T) {
	ctx := context.Background()
	table := bizdir.NewTable("Businesses")
	mem := NewMemoryClient()

	if err := table.CreateTables(ctx, mem, time.Second); err != nil {
		t.Fatalf("CreateTables failed: %v", err)
	}

	// Existing tables are left alone
	if err := table.CreateTables(ctx, mem, time.Second); err != nil {
		t.Fatalf("second CreateTables failed: %v", err)
	}

	if mem.Len("Businesses") != 0 || mem.Len("idCounter") != 0 {
		t.Error("expected empty tables")
	}
}
