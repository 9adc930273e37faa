package dynamock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nisimpson/bizdir"
)

// ResourceTypeBusiness is the JSON:API resource type of business fixtures.
const ResourceTypeBusiness = "business"

// JSONAPIDocument represents the root structure of a JSON:API document
// as an array of resources.
type JSONAPIDocument []JSONAPIResource

// JSONAPIResource represents a single resource in JSON:API format.
type JSONAPIResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes BusinessAttribute `json:"attributes"`
}

// BusinessAttribute holds the non-key fields of a business fixture.
type BusinessAttribute struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ParseJSON decodes a JSON:API document of business resources. Resources
// without a createdAt attribute get DefaultCreated.
func ParseJSON(r io.Reader) ([]bizdir.Business, error) {
	var document JSONAPIDocument
	if err := json.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	businesses := make([]bizdir.Business, 0, len(document))
	for i, resource := range document {
		b, err := convertResource(resource)
		if err != nil {
			return nil, fmt.Errorf("failed to convert resource at index %d: %w", i, err)
		}
		businesses = append(businesses, b)
	}

	return businesses, nil
}

// SeedFromJSON converts business fixtures from a JSON:API formatted reader and
// persists them, fast-forwarding the counter past the highest id.
// Returns the number of businesses saved and any error generated.
func (s *SeedTestData) SeedFromJSON(ctx context.Context, r io.Reader) (int, error) {
	businesses, err := ParseJSON(r)
	if err != nil {
		return 0, err
	}

	if err := s.SeedBusinesses(ctx, businesses...); err != nil {
		return 0, err
	}

	return len(businesses), nil
}

func convertResource(resource JSONAPIResource) (bizdir.Business, error) {
	if resource.Type != ResourceTypeBusiness {
		return bizdir.Business{}, fmt.Errorf("unsupported resource type %q", resource.Type)
	}
	if resource.ID == "" {
		return bizdir.Business{}, fmt.Errorf("resource missing required 'id' field")
	}

	opts := []BusinessOption{
		WithID(resource.ID),
		WithName(resource.Attributes.Name),
		WithStatus(resource.Attributes.Status),
	}
	if resource.Attributes.CreatedAt != "" {
		opts = append(opts, WithCreatedAt(resource.Attributes.CreatedAt))
	}

	return NewBusiness(opts...).Build(), nil
}
