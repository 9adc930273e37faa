package bizdir_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/dynamock"
	"github.com/nisimpson/bizdir/dynamock/assert"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC)

func newTestStore(opts ...bizdir.StoreOption) (*bizdir.Store, *dynamock.MemoryClient) {
	table := bizdir.NewTable("Businesses")
	mem := dynamock.NewBusinessMemoryClient(table)
	opts = append([]bizdir.StoreOption{bizdir.WithClock(func() time.Time { return fixedNow })}, opts...)
	return bizdir.NewStore(mem, table, opts...), mem
}

func TestStore_Create(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore()

	b, err := store.Create(ctx, bizdir.CreateInput{Name: "Acme", Status: "active"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := bizdir.Business{
		BusID:     "Business_001",
		Name:      "Acme",
		Status:    "active",
		CreatedAt: "2024-05-06T07:08:09.010Z",
	}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	assert.Items(t, mem.Items("Businesses")).
		HasCount(1).
		ContainsBusiness("Business_001").
		HasAttribute("createdAt", "2024-05-06T07:08:09.010Z")
}

func TestStore_Create_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	var created []bizdir.Business
	for _, name := range []string{"a", "b", "c"} {
		b, err := store.Create(ctx, bizdir.CreateInput{Name: name})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		created = append(created, b)
	}

	assert.Businesses(t, created).
		HasIDs("Business_001", "Business_002", "Business_003").
		HasStrictlyIncreasingIDs()
}

func TestStore_Create_EmptyFieldsAccepted(t *testing.T) {
	store, _ := newTestStore()

	b, err := store.Create(context.Background(), bizdir.CreateInput{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Name != "" || b.Status != "" {
		t.Errorf("expected empty fields, got %+v", b)
	}
}

func TestStore_Create_StrictValidation(t *testing.T) {
	store, mem := newTestStore(bizdir.WithValidation(bizdir.StrictValidation()))

	_, err := store.Create(context.Background(), bizdir.CreateInput{Name: "Acme", Status: "pending"})
	if !errors.Is(err, bizdir.ErrInvalidBusiness) {
		t.Fatalf("expected ErrInvalidBusiness, got %v", err)
	}

	// No id is consumed by a rejected request
	if mem.Calls(dynamock.OpUpdateItem) != 0 {
		t.Error("expected no counter update")
	}
}

func TestStore_Create_AllocationFailure(t *testing.T) {
	store, mem := newTestStore()
	mem.FailOn(dynamock.OpUpdateItem, errors.New("throttled"))

	_, err := store.Create(context.Background(), bizdir.CreateInput{Name: "Acme"})
	if !errors.Is(err, bizdir.ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}

	if mem.Calls(dynamock.OpPutItem) != 0 {
		t.Error("expected no put after failed allocation")
	}
}

func TestStore_Create_PersistFailureSkipsID(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore()
	mem.FailOn(dynamock.OpPutItem, errors.New("unavailable"))

	_, err := store.Create(ctx, bizdir.CreateInput{Name: "lost"})
	if !errors.Is(err, bizdir.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	mem.FailOn(dynamock.OpPutItem, nil)

	b, err := store.Create(ctx, bizdir.CreateInput{Name: "kept"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.BusID != "Business_002" {
		t.Errorf("expected Business_002, got %s", b.BusID)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	assert.Businesses(t, list).HasCount(1).Excludes("Business_001")
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	store, mem := newTestStore()

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}

	if err := dynamock.NewSeedTestData(mem, store.Table()).SeedBusinesses(ctx, dynamock.Businesses(4)...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	list, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	assert.Businesses(t, list).
		HasCount(4).
		Contains("Business_001").
		Contains("Business_004")
}

func TestStore_List_Failure(t *testing.T) {
	store, mem := newTestStore()
	mem.FailOn(dynamock.OpScan, errors.New("unavailable"))

	if _, err := store.List(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	a, _ := store.Create(ctx, bizdir.CreateInput{Name: "a"})
	b, _ := store.Create(ctx, bizdir.CreateInput{Name: "b"})

	if err := store.Delete(ctx, a.BusID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	assert.Businesses(t, list).HasCount(1).Contains(b.BusID).Excludes(a.BusID)

	// Deleting again succeeds
	if err := store.Delete(ctx, a.BusID); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestStore_Delete_Errors(t *testing.T) {
	store, mem := newTestStore()

	if err := store.Delete(context.Background(), ""); err == nil {
		t.Error("expected error for empty id")
	}

	mem.FailOn(dynamock.OpDeleteItem, errors.New("unavailable"))
	if err := store.Delete(context.Background(), "Business_001"); err == nil {
		t.Error("expected delete failure")
	}
}

func TestStore_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	a, _ := store.Create(ctx, bizdir.CreateInput{Name: "a"})
	if err := store.Delete(ctx, a.BusID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	b, err := store.Create(ctx, bizdir.CreateInput{Name: "b"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.BusID == a.BusID {
		t.Errorf("id %s was reused", b.BusID)
	}
}
