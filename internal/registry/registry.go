package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// Registry records every audit tool the server exposes. Operator settings
// that name tools (disabled lists) are resolved against it.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]mcp.Tool
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{tools: map[string]mcp.Tool{}}
}

// Register stores a tool definition under its lower-cased name.
func (r *Registry) Register(tool mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[strings.ToLower(tool.Name)] = tool
}

// Get resolves a tool by name, ignoring case and surrounding space.
func (r *Registry) Get(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names lists registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Tools returns the registered definitions sorted by name.
func (r *Registry) Tools() []mcp.Tool {
	names := r.Names()
	tools := make([]mcp.Tool, 0, len(names))
	for _, n := range names {
		t, _ := r.Get(n)
		tools = append(tools, t)
	}
	return tools
}
