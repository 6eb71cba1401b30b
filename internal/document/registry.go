package document

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

// Registry maps a document type tag to its factory. Instances are created
// explicitly and passed to whoever needs them; there is no process-wide
// default, so tests can build isolated registries.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, factory Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("document type name is required")
	}
	if factory == nil {
		return fmt.Errorf("document factory is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("document type %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

func (r *Registry) Get(name string) (Factory, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", appErr.ErrUnknownDocumentType, name)
	}
	return factory, nil
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
