package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/sellerscope/pkg/mcperr"
)

// Middleware gates audit tool calls on the Controller's request slots and
// bounds each call by the operation timeout.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// slot waits for a request slot, giving up after AcquireRequestTimeout.
func (m *Middleware) slot(ctx context.Context) error {
	if m.ctrl.limits.AcquireRequestTimeout <= 0 {
		return m.ctrl.AcquireRequest(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, m.ctrl.limits.AcquireRequestTimeout)
	defer cancel()
	return m.ctrl.AcquireRequest(waitCtx)
}

// ToolMiddleware wraps a tool handler with slot acquisition and a deadline.
// Saturation maps to BUSY_RESOURCE and an expired deadline to TIMEOUT, both
// naming the tool so clients can tell which audit step to retry.
func (m *Middleware) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool := req.Params.Name
		log := zerolog.Ctx(ctx).With().Str("tool", tool).Logger()

		start := time.Now()
		if err := m.slot(ctx); err != nil {
			log.Warn().Dur("waited", time.Since(start)).Int("max_requests", m.ctrl.limits.MaxConcurrentRequests).Msg("no request slot")
			return mcperr.Wrapf(mcperr.BusyResource, "%s: all %d request slots are in use", tool, m.ctrl.limits.MaxConcurrentRequests), nil
		}
		defer m.ctrl.ReleaseRequest()

		callCtx := ctx
		if limit := m.ctrl.limits.OperationTimeout; limit > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, limit)
			defer cancel()
		}

		res, err := next(callCtx, req)
		if errors.Is(err, context.DeadlineExceeded) || (err == nil && res == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded)) {
			log.Warn().Dur("limit", m.ctrl.limits.OperationTimeout).Msg("tool call timed out")
			return mcperr.Wrapf(mcperr.Timeout, "%s exceeded the %s operation limit", tool, m.ctrl.limits.OperationTimeout), nil
		}
		return res, err
	}
}
