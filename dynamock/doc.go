// Package dynamock provides testing utilities for the bizdir library.
//
// This package includes:
//   - Expectation-based mock DynamoDB client for unit testing
//   - In-memory DynamoDB fake for end-to-end tests without a database
//   - Local DynamoDB integration utilities
//   - Business fixture builders
//   - Test data seeding helpers, including JSON:API fixtures
//
// # Mock Client
//
// The MockClient fails the test on any call without an expectation:
//
//	mock := dynamock.NewMockClient(t)
//
//	mock.UpdateFunc = func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
//		return nil, errors.New("throttled")
//	}
//
//	store := bizdir.NewStore(mock, bizdir.NewTable("Businesses"))
//	_, err := store.Create(ctx, bizdir.CreateInput{Name: "Acme"})
//	// errors.Is(err, bizdir.ErrAllocation) == true
//
// # Memory Client
//
// The MemoryClient keeps items in maps and understands the requests bizdir
// sends. Failures can be injected per operation:
//
//	table := bizdir.NewTable("Businesses")
//	mem := dynamock.NewBusinessMemoryClient(table)
//	mem.FailOn(dynamock.OpPutItem, errors.New("unavailable"))
//
// # Builders
//
//	b := dynamock.NewBusiness(
//		dynamock.WithSequence(7),
//		dynamock.WithName("Acme"),
//		dynamock.WithStatus("inactive"),
//	).Build() // BusID "Business_007"
//
//	twelve := dynamock.Businesses(12) // Business_001..Business_012, one hour apart
//
// # Local DynamoDB
//
// Integration tests run against DynamoDB Local and skip when it is not running:
//
//	dynamock.RunIntegrationTest(t, func(local *dynamock.LocalDynamoDB, table *bizdir.Table) {
//		store := bizdir.NewStore(local.Client, table)
//		// ...
//	})
//
// # JSON Fixtures
//
// Fixtures use JSON:API resources of type "business":
//
//	[
//	  {"type": "business", "id": "Business_001", "attributes": {"name": "Acme", "status": "active"}}
//	]
//
//	seeder := dynamock.NewSeedTestData(client, table)
//	n, err := seeder.SeedFromJSON(ctx, file)
package dynamock
