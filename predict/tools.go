package predict

import (
	"context"
	"sync"

	"github.com/vicentereig/structprompt/schema"
)

// ToolFunc executes one tool call. The returned string becomes the
// observation fed back into the reasoning loop.
type ToolFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// Tool pairs a callable with the metadata the model sees.
type Tool struct {
	Name        string
	Description string
	Parameters  *schema.TypeDescriptor // struct descriptor of the arguments
	Fn          ToolFunc
}

// ToolRegistry manages tool registration and lookup. Registration order is
// preserved so tool listings render deterministically.
type ToolRegistry struct {
	tools map[string]*Tool
	order []string
	mu    sync.RWMutex
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*Tool)}
}

// Register adds or replaces a tool in the registry.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = &tool
}

// Get returns a registered tool by name, or nil if not found.
func (r *ToolRegistry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns registered tool names in registration order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
