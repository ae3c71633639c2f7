package tool

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry manages registered tool descriptors. It is safe for concurrent use
// by multiple in-flight orchestration runs.
type Registry struct {
	mu    *sync.RWMutex
	tools map[string]Descriptor
	scope string
}

// NewRegistry creates an empty unscoped registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:    &sync.RWMutex{},
		tools: make(map[string]Descriptor),
	}
}

// Scoped returns a view of the registry namespaced to the given client.
// Names registered through the view do not collide with other scopes.
func (r *Registry) Scoped(clientID string) *Registry {
	return &Registry{
		mu:    r.mu,
		tools: r.tools,
		scope: clientID,
	}
}

func (r *Registry) key(name string) string {
	if r.scope == "" {
		return name
	}
	return r.scope + "/" + name
}

// Register adds a descriptor. It fails with ErrDuplicateTool when the name is
// taken and ErrUnknownKind when the kind is not supported.
func (r *Registry) Register(desc Descriptor) error {
	if strings.TrimSpace(desc.Name) == "" {
		return fmt.Errorf("register tool: name is required")
	}
	if !desc.Kind.Valid() {
		return fmt.Errorf("register tool %q: %w: %q", desc.Name, ErrUnknownKind, desc.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(desc.Name)
	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("register tool %q: %w", desc.Name, ErrDuplicateTool)
	}
	r.tools[key] = desc
	return nil
}

// Get retrieves a descriptor by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.tools[r.key(name)]
	return desc, ok
}

// List returns all descriptors in this scope, sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := ""
	if r.scope != "" {
		prefix = r.scope + "/"
	}

	descs := make([]Descriptor, 0, len(r.tools))
	for key, desc := range r.tools {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		if prefix == "" && strings.Contains(key, "/") {
			continue
		}
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

// Remove deletes a descriptor by name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(name)
	if _, ok := r.tools[key]; !ok {
		return false
	}
	delete(r.tools, key)
	return true
}
