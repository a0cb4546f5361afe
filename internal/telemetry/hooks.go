package telemetry

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/vinodismyname/sellerscope/internal/reports"
)

// Hooks implements mcp-go server lifecycle callbacks and audit session
// callbacks, logging each event through zerolog.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnServerStart is called when the server begins accepting connections.
func (h *Hooks) OnServerStart() {
	h.logger.Info().Msg("MCP server starting")
}

// OnServerStop is called during server shutdown.
func (h *Hooks) OnServerStop() {
	h.logger.Info().Msg("MCP server stopping")
}

// OnSessionStart records the start of a client session.
func (h *Hooks) OnSessionStart(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("session started")
}

// OnSessionEnd records the end of a client session.
func (h *Hooks) OnSessionEnd(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("session ended")
}

// OnToolCall logs tool invocations and their outcomes.
func (h *Hooks) OnToolCall(sessionID, toolName string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error().Str("session_id", sessionID).Str("tool", toolName).Dur("duration", duration).Err(err).Msg("tool call error")
		return
	}
	h.logger.Info().Str("session_id", sessionID).Str("tool", toolName).Dur("duration", duration).Msg("tool call completed")
}

// OnReportLoaded logs the outcome of parsing one report file.
func (h *Hooks) OnReportLoaded(sessionID string, kind reports.Kind, name string, rows int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Warn().Str("session_id", sessionID).Str("kind", string(kind)).Str("file", name).Dur("duration", duration).Err(err).Msg("report rejected")
		return
	}
	h.logger.Info().Str("session_id", sessionID).Str("kind", string(kind)).Str("file", name).Int("rows", rows).Dur("duration", duration).Msg("report loaded")
}

// OnAuditRun logs a completed audit pipeline run.
func (h *Hooks) OnAuditRun(sessionID string, scored int, missing []reports.Kind, duration time.Duration, err error) {
	if err != nil {
		h.logger.Error().Str("session_id", sessionID).Dur("duration", duration).Err(err).Msg("audit run failed")
		return
	}
	kinds := make([]string, len(missing))
	for i, k := range missing {
		kinds[i] = string(k)
	}
	h.logger.Info().Str("session_id", sessionID).Int("asins_scored", scored).Strs("missing", kinds).Dur("duration", duration).Msg("audit run completed")
}
