// Package inference routes prompts to the configured AI backends.
package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sorynlabs/soryn/internal/domain"
)

// Request carries the input for a single inference call. Messages, when
// present, takes precedence over Prompt so multi-turn conversations keep
// their context.
type Request struct {
	Prompt   string
	Messages []domain.ChatMessage
}

// Result is the provider-agnostic outcome of a successful inference.
type Result struct {
	Text       string
	TokensUsed int
}

// Provider generates a completion for a model it knows how to talk to.
type Provider interface {
	Name() string
	Infer(ctx context.Context, model domain.Model, req Request) (*Result, error)
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its lowercased name, replacing any
// previous registration.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Name())] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	return p, nil
}

// Infer dispatches the request to the provider the model names.
func (r *Registry) Infer(ctx context.Context, model domain.Model, req Request) (*Result, error) {
	p, err := r.Get(model.Provider)
	if err != nil {
		return nil, err
	}
	return p.Infer(ctx, model, req)
}
