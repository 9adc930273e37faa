// Package bizdir provides the storage layer of the business directory: a thin
// adapter over the AWS SDK for Go v2 DynamoDB client.
//
// # Tables
//
// Two tables are used:
//   - Businesses: one item per business, hash key busId
//   - idCounter: a single row (id = "BusinessId") holding the numeric idCount
//
// # Identifiers
//
// Business ids are allocated by atomically adding one to idCount and reading
// back the new value in the same UpdateItem call. The value is rendered as
// "Business_" followed by at least three digits:
//
//	alloc := table.Allocator(ddb)
//	id, err := alloc.Allocate(ctx) // "Business_001", "Business_002", ...
//
// The counter is not linked to the write of the business itself; a failed put
// after a successful allocation skips that id permanently.
//
// # Basic Usage
//
//	ddb, err := bizdir.NewClient(ctx, bizdir.ClientConfig{Region: "eu-north-1"})
//	table := bizdir.NewTable("Businesses")
//	store := bizdir.NewStore(ddb, table)
//
//	b, err := store.Create(ctx, bizdir.CreateInput{Name: "Acme", Status: "active"})
//	all, err := store.List(ctx)
//	err = store.Delete(ctx, b.BusID)
//
// Listing is always a full scan; searching, filtering, sorting and paging are
// left to the caller (see the view package).
package bizdir
