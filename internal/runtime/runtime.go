package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/sellerscope/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and timeout guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxConcurrentParses   int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxConcurrentParses int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxConcurrentParses <= 0 {
		maxConcurrentParses = config.DefaultMaxConcurrentParses
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxConcurrentParses:   maxConcurrentParses,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromConfig derives Limits from loaded configuration, keeping the
// defaults for any zero timeout.
func LimitsFromConfig(cfg *config.Config) Limits {
	l := NewLimits(cfg.MaxConcurrentRequests, cfg.MaxConcurrentParses)
	if cfg.OperationTimeout > 0 {
		l.OperationTimeout = cfg.OperationTimeout
	}
	if cfg.AcquireTimeout > 0 {
		l.AcquireRequestTimeout = cfg.AcquireTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and parse guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	parseSemaphore   *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		parseSemaphore:   semaphore.NewWeighted(int64(limits.MaxConcurrentParses)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireParse reserves a slot for parsing one spreadsheet. Workbooks are
// held fully in memory while parsing, so this bounds peak memory.
func (c *Controller) AcquireParse(ctx context.Context) error {
	return c.parseSemaphore.Acquire(ctx, 1)
}

// ReleaseParse frees a parse slot.
func (c *Controller) ReleaseParse() {
	c.parseSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
