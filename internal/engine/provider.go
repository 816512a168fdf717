package engine

import (
	"context"

	"workflow-automation/backend/pkg/models"
)

// Provider performs the actual work for one task type. Output shape is
// type-specific: text for summarization, predictions for
// classification, selector matches for scraping, a delivery
// acknowledgment for email.
type Provider interface {
	Invoke(ctx context.Context, config map[string]any) (any, error)
}

// Registry maps task types to their capability providers. It is built
// once at startup; lookups of unregistered types return a typed error
// rather than falling through to a runtime fault.
type Registry struct {
	providers map[models.TaskType]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.TaskType]Provider)}
}

// Register binds a provider to a task type, replacing any previous binding.
func (r *Registry) Register(t models.TaskType, p Provider) {
	r.providers[t] = p
}

// Resolve returns the provider for a task type.
func (r *Registry) Resolve(t models.TaskType) (Provider, error) {
	p, ok := r.providers[t]
	if !ok {
		return nil, &UnsupportedTaskTypeError{TaskType: t}
	}
	return p, nil
}
