package llm

import (
	"context"
	"fmt"
	"sync"

	"dev.supermcp.debate/internal/models"
)

// Params are the per-call generation parameters.
type Params struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Result is the raw outcome of one successful provider invocation.
type Result struct {
	Content    string  `json:"content"`
	Tokens     int     `json:"tokens"`
	Cost       float64 `json:"cost"`
	Confidence float64 `json:"confidence"`
}

// Provider is the opaque capability a model backend exposes. Concrete wire
// protocols live behind this interface and are not part of the core.
type Provider interface {
	Invoke(ctx context.Context, prompt string, params Params) (*Result, error)
}

// Registry maps provider identities to their backends.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.Provider]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.Provider]Provider)}
}

// Register binds a backend to a provider identity.
func (r *Registry) Register(id models.Provider, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = p
}

// Get returns the backend for a provider identity.
func (r *Registry) Get(id models.Provider) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("no backend registered for provider %q", id)
	}
	return p, nil
}

// Providers returns the identities with a registered backend.
func (r *Registry) Providers() []models.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]models.Provider, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
