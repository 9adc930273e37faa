package bizdir

import (
	"fmt"
	"slices"
	"strings"
)

// CreateInput carries the caller supplied fields of a new business.
type CreateInput struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ValidationPolicy decides which create requests are accepted. The zero value
// accepts everything, including empty names and statuses.
type ValidationPolicy struct {
	RequireName   bool     `yaml:"require_name"`
	RequireStatus bool     `yaml:"require_status"`
	Statuses      []string `yaml:"statuses"` // Allowed status values. Empty allows any.
}

// StrictValidation requires a name and one of the conventional statuses.
func StrictValidation() ValidationPolicy {
	return ValidationPolicy{
		RequireName:   true,
		RequireStatus: true,
		Statuses:      []string{"active", "inactive"},
	}
}

// Validate returns an error wrapping ErrInvalidBusiness when in violates the policy.
func (p ValidationPolicy) Validate(in CreateInput) error {
	if p.RequireName && strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBusiness)
	}
	if p.RequireStatus && strings.TrimSpace(in.Status) == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidBusiness)
	}
	if len(p.Statuses) > 0 && in.Status != "" && !slices.Contains(p.Statuses, in.Status) {
		return fmt.Errorf("%w: status must be one of %s", ErrInvalidBusiness, strings.Join(p.Statuses, ", "))
	}
	return nil
}
