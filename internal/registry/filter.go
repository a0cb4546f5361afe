package registry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/sellerscope/pkg/mcperr"
)

// DisabledToolsEnv names the comma-separated list of tools an operator turns off.
const DisabledToolsEnv = "SELLERSCOPE_DISABLED_TOOLS"

// ToolFilter hides operator-disabled tools from discovery and rejects calls
// to them. Names are resolved against the Registry.
type ToolFilter struct {
	reg      *Registry
	mu       sync.RWMutex
	disabled map[string]bool
}

// NewToolFilter constructs a filter with nothing disabled.
func NewToolFilter(reg *Registry) *ToolFilter {
	return &ToolFilter{reg: reg, disabled: map[string]bool{}}
}

// DisabledFromEnv splits DisabledToolsEnv into tool names.
func DisabledFromEnv() []string {
	return strings.Split(os.Getenv(DisabledToolsEnv), ",")
}

// Disable turns off the named tools. Blank names are skipped; names that match
// no registered tool are reported in the error and otherwise ignored.
func (f *ToolFilter) Disable(names ...string) error {
	var unknown []string
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tool, ok := f.reg.Get(name)
		if !ok {
			unknown = append(unknown, strings.TrimSpace(name))
			continue
		}
		f.disabled[tool.Name] = true
	}
	if len(unknown) > 0 {
		return fmt.Errorf("registry: unknown tools %s (available: %s)", strings.Join(unknown, ", "), strings.Join(f.reg.Names(), ", "))
	}
	return nil
}

// Disabled reports whether the named tool is turned off.
func (f *ToolFilter) Disabled(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.disabled[name]
}

// FilterTools implements server tool filtering semantics.
func (f *ToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if f.Disabled(t.Name) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ToolMiddleware rejects calls to disabled tools.
func (f *ToolFilter) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if f.Disabled(req.Params.Name) {
			return mcperr.Wrapf(mcperr.ToolDisabled, "tool %s is disabled on this server", req.Params.Name), nil
		}
		return next(ctx, req)
	}
}
