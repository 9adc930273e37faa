package bizdir

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store creates, lists and deletes businesses. It is safe for concurrent use;
// all shared state lives in DynamoDB.
type Store struct {
	table  *Table
	client DynamoDBClient
	alloc  *Allocator
	tick   Clock
	policy ValidationPolicy
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(tick Clock) StoreOption {
	return func(s *Store) {
		s.tick = tick
	}
}

// WithValidation sets the policy applied by Create.
func WithValidation(p ValidationPolicy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store for table using client.
func NewStore(client DynamoDBClient, table *Table, opts ...StoreOption) *Store {
	s := &Store{
		table:  table,
		client: client,
		alloc:  table.Allocator(client),
		tick:   DefaultClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the table configuration of the store.
func (s *Store) Table() *Table {
	return s.table
}

// Allocator returns the id allocator used by Create.
func (s *Store) Allocator() *Allocator {
	return s.alloc
}

// Scan returns every business along with the scan counters.
func (s *Store) Scan(ctx context.Context) (ScanResult, error) {
	result, err := s.table.ScanAll(ctx, s.client)
	if err != nil {
		s.logger.Error("scan failed", zap.String("table", s.table.TableName), zap.Error(err))
		return ScanResult{}, err
	}
	return result, nil
}

// ScanPage returns a single page of at most limit businesses following cursor.
func (s *Store) ScanPage(ctx context.Context, cursor string, limit int32) (Page, error) {
	page, err := s.table.ScanPage(ctx, s.client, cursor, limit)
	if err != nil {
		s.logger.Error("scan page failed", zap.String("table", s.table.TableName), zap.Error(err))
		return Page{}, err
	}
	return page, nil
}

// List returns every business in unspecified order. An empty table yields an empty slice.
func (s *Store) List(ctx context.Context) ([]Business, error) {
	result, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Create validates in, allocates an id, stamps the creation time and writes the
// record. If the write fails after allocation the id is skipped for good.
func (s *Store) Create(ctx context.Context, in CreateInput) (Business, error) {
	if err := s.policy.Validate(in); err != nil {
		return Business{}, err
	}

	id, err := s.alloc.Allocate(ctx)
	if err != nil {
		s.logger.Error("id allocation failed", zap.String("table", s.table.CounterTableName), zap.Error(err))
		return Business{}, err
	}

	b := Business{
		BusID:     id,
		Name:      in.Name,
		Status:    in.Status,
		CreatedAt: FormatTimestamp(s.tick()),
	}

	input, err := s.table.MarshalPut(b)
	if err != nil {
		return Business{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		s.logger.Error("put failed",
			zap.String("table", s.table.TableName),
			zap.String("busId", id),
			zap.Error(err))
		return Business{}, fmt.Errorf("%w %s: %w", ErrPersist, id, err)
	}

	s.logger.Debug("business created", zap.String("busId", id))
	return b, nil
}

// Delete removes the business with busID. Deleting a missing business succeeds.
func (s *Store) Delete(ctx context.Context, busID string) error {
	input, err := s.table.MarshalDelete(busID)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		s.logger.Error("delete failed",
			zap.String("table", s.table.TableName),
			zap.String("busId", busID),
			zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", busID, err)
	}

	s.logger.Debug("business deleted", zap.String("busId", busID))
	return nil
}
