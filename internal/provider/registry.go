package provider

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrUnknownModel is returned when a caller asks for a provider that is not registered.
var ErrUnknownModel = errors.New("unknown model")

// Registry maps provider names to their clients.
// Thread-safe for concurrent access during requests.
type Registry struct {
	mu      sync.RWMutex
	clients map[Name]Client
	order   []Name
}

// NewRegistry creates a registry holding the given clients.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[Name]Client)}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

// Register associates a client with its name, replacing any previous one.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.clients[c.Name()] = c
}

// Get retrieves the client for a model name.
func (r *Registry) Get(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[Name(model)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return c, nil
}

// Names returns registered provider names in registration order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, len(r.order))
	copy(names, r.order)
	return names
}

// Close closes every registered client that holds resources.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, name := range r.order {
		if c, ok := r.clients[name].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
