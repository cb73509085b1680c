// Package tool provides an in-memory registry for resolving tool
// names to llm.Tool implementations, grounded on the teacher's
// domain/tool InMemoryRegistry pattern.
package tool

import (
	"sync"

	"github.com/svetzal/mojentic-go/llm"
)

// Registry is a thread-safe, name-keyed lookup of registered tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]llm.Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]llm.Tool)}
}

// Register adds t under its descriptor name, overwriting any tool
// previously registered under that name.
func (r *Registry) Register(t llm.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Descriptor().Name] = t
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (llm.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// All returns every registered tool, in no particular order.
func (r *Registry) All() []llm.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]llm.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}
