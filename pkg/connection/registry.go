// Package connection provides the HTTP transport for the CRM API and a
// registry that resolves connections by name.
package connection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Registry maps connection names to Connections. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]types.Connection
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]types.Connection)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry resources use when none is set.
func Default() *Registry {
	return defaultRegistry
}

// Register stores conn under name, replacing any earlier registration.
// An empty name registers the default connection.
func (r *Registry) Register(name string, conn types.Connection) {
	if name == "" {
		name = types.DefaultConnection
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[name] = conn
}

// Remove drops the connection registered under name. Idempotent.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, name)
}

// Resolve returns the connection registered under using.
// Returns ErrConnectionNotFound if there is none.
func (r *Registry) Resolve(using string) (types.Connection, error) {
	if using == "" {
		using = types.DefaultConnection
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[using]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrConnectionNotFound, using)
	}
	return conn, nil
}

// Names returns the registered connection names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
