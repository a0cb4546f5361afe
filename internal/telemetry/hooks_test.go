package telemetry

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/internal/reports"
)

func TestOnReportLoaded(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))

	h.OnReportLoaded("s1", reports.KindCOGS, "cogs.csv", 12, time.Millisecond, nil)
	require.Contains(t, buf.String(), `"message":"report loaded"`)
	require.Contains(t, buf.String(), `"rows":12`)

	buf.Reset()
	h.OnReportLoaded("s1", reports.KindPPCBulk, "bulk.csv", 0, time.Millisecond, errors.New("boom"))
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"error":"boom"`)
}

func TestOnAuditRun(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))

	h.OnAuditRun("s1", 4, []reports.Kind{reports.KindInventory}, time.Second, nil)
	require.Contains(t, buf.String(), `"asins_scored":4`)
	require.Contains(t, buf.String(), `"missing":["inventory"]`)
}

func TestOnToolCall(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(zerolog.New(&buf))

	h.OnToolCall("s1", "run_audit", time.Millisecond, nil)
	require.Contains(t, buf.String(), `"tool":"run_audit"`)
	require.Contains(t, buf.String(), `"message":"tool call completed"`)

	buf.Reset()
	h.OnToolCall("s1", "ppc_waste", time.Millisecond, errors.New("MISSING_REPORT"))
	require.Contains(t, buf.String(), `"level":"error"`)
}
