package dynamock

import (
	"testing"
	"time"

	"github.com/nisimpson/bizdir/dynamock/assert"
)

func TestNewBusiness_Defaults(t *testing.T) {
	b := NewBusiness().Build()

	if b.BusID != "Business_001" {
		t.Errorf("expected Business_001, got %s", b.BusID)
	}
	if b.Status != "active" {
		t.Errorf("expected status active, got %s", b.Status)
	}
	if b.CreatedAt != "2024-01-01T09:00:00.000Z" {
		t.Errorf("unexpected createdAt %s", b.CreatedAt)
	}
}

func TestNewBusiness_Options(t *testing.T) {
	created := time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC)
	b := NewBusiness(
		WithSequence(1234),
		WithName("Acme"),
		WithStatus("inactive"),
		WithCreated(created),
	).Build()

	if b.BusID != "Business_1234" {
		t.Errorf("expected Business_1234, got %s", b.BusID)
	}
	if b.Name != "Acme" || b.Status != "inactive" {
		t.Errorf("unexpected business %+v", b)
	}

	got, err := b.Created()
	if err != nil {
		t.Fatalf("Created failed: %v", err)
	}
	if !got.Equal(created) {
		t.Errorf("expected %v, got %v", created, got)
	}
}

func TestNewBusiness_WithIDAndRawTimestamp(t *testing.T) {
	b := NewBusiness(WithID("legacy"), WithCreatedAt("not a time")).Build()

	if b.BusID != "legacy" {
		t.Errorf("expected legacy, got %s", b.BusID)
	}
	if _, err := b.Created(); err == nil {
		t.Error("expected unparseable createdAt")
	}
}

func TestBusinesses(t *testing.T) {
	list := Businesses(12, WithStatus("inactive"))

	assert.Businesses(t, list).
		HasCount(12).
		HasWellFormedIDs().
		HasStrictlyIncreasingIDs().
		Contains("Business_012")

	first, _ := list[0].Created()
	last, _ := list[11].Created()
	if last.Sub(first) != 11*time.Hour {
		t.Errorf("expected businesses one hour apart, got span %v", last.Sub(first))
	}

	for _, b := range list {
		if b.Status != "inactive" {
			t.Errorf("shared option not applied to %s", b.BusID)
		}
	}
}
