package dynamock

import (
	"time"

	"github.com/nisimpson/bizdir"
)

// BusinessOption is a functional option for configuring businesses during building.
type BusinessOption func(*BusinessBuilder)

// BusinessBuilder builds bizdir.Business fixtures through functional options.
type BusinessBuilder struct {
	business bizdir.Business
}

// DefaultCreated is the creation time given to built businesses unless overridden.
var DefaultCreated = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// NewBusiness creates a new business builder with the given options applied.
func NewBusiness(opts ...BusinessOption) *BusinessBuilder {
	builder := &BusinessBuilder{
		business: bizdir.Business{
			BusID:     bizdir.FormatBusinessID(1),
			Status:    "active",
			CreatedAt: bizdir.FormatTimestamp(DefaultCreated),
		},
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder
}

// Build returns the configured business.
func (b *BusinessBuilder) Build() bizdir.Business {
	return b.business
}

// WithID sets the business id verbatim.
func WithID(id string) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.BusID = id
	}
}

// WithSequence sets the business id from a counter value.
func WithSequence(n int64) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.BusID = bizdir.FormatBusinessID(n)
	}
}

// WithName sets the business name.
func WithName(name string) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.Name = name
	}
}

// WithStatus sets the business status.
func WithStatus(status string) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.Status = status
	}
}

// WithCreated sets the creation timestamp.
func WithCreated(created time.Time) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.CreatedAt = bizdir.FormatTimestamp(created)
	}
}

// WithCreatedAt sets the raw creation timestamp string.
func WithCreatedAt(createdAt string) BusinessOption {
	return func(b *BusinessBuilder) {
		b.business.CreatedAt = createdAt
	}
}

// Businesses builds n businesses numbered 1..n, created one hour apart starting
// at DefaultCreated. Shared options are applied to each.
func Businesses(n int, opts ...BusinessOption) []bizdir.Business {
	out := make([]bizdir.Business, 0, n)
	for i := 1; i <= n; i++ {
		all := append([]BusinessOption{
			WithSequence(int64(i)),
			WithCreated(DefaultCreated.Add(time.Duration(i-1) * time.Hour)),
		}, opts...)
		out = append(out, NewBusiness(all...).Build())
	}
	return out
}
