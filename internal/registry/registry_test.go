package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/internal/audit"
	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/security"
	"github.com/vinodismyname/sellerscope/pkg/mcperr"
)

const businessCSV = "(Parent) ASIN,(Child) ASIN,Title,SKU,Sessions - Total,Unit Session Percentage,Featured Offer (Buy Box) Percentage,Units Ordered,Ordered Product Sales\n" +
	"P1,A1,Widget A,SKU-A,100,20%,98%,10,$200.00\n" +
	"P1,A2,Widget B,SKU-B,50,2%,60%,1,$10.00\n" +
	"P2,A3,Gadget C,SKU-C,10,0%,50%,0,$0.00\n"

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	sec, err := security.NewManager([]string{dir}, nil)
	require.NoError(t, err)
	return &Service{Store: audit.NewStore(4, audit.Options{}), Security: sec}, dir
}

func requireCode(t *testing.T, err error, code mcperr.Code) {
	t.Helper()
	var te *toolError
	require.True(t, errors.As(err, &te), "error %v", err)
	require.Equal(t, code, te.code, te.msg)
}

func loadAndRun(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	out, err := svc.LoadReport(ctx, LoadReportInput{Kind: "business_report", Content: businessCSV})
	require.NoError(t, err)
	require.NotEmpty(t, out.SessionID)
	require.Equal(t, 3, out.Rows)
	require.Equal(t, "business_report.csv", out.Name)

	run, err := svc.RunAudit(ctx, RunAuditInput{SessionID: out.SessionID})
	require.NoError(t, err)
	require.Equal(t, 3, run.Scored)
	return out.SessionID
}

func TestLoadFromAllowedPath(t *testing.T) {
	svc, dir := newService(t)
	path := filepath.Join(dir, "cogs.csv")
	require.NoError(t, os.WriteFile(path, []byte("ASIN,Cost\nA1,5\n"), 0o600))

	out, err := svc.LoadReport(context.Background(), LoadReportInput{Kind: "COGS", Path: path})
	require.NoError(t, err)
	require.Equal(t, "cogs.csv", out.Name)
	require.Equal(t, 1, out.Rows)
	require.Equal(t, []reports.Kind{reports.KindCOGS}, out.Loaded)

	_, err = svc.LoadReport(context.Background(), LoadReportInput{Kind: "cogs", Path: filepath.Join(t.TempDir(), "other.csv")})
	requireCode(t, err, mcperr.PermissionDenied)
}

func TestLoadReportFailures(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.LoadReport(ctx, LoadReportInput{Kind: "cogs"})
	requireCode(t, err, mcperr.Validation)

	_, err = svc.LoadReport(ctx, LoadReportInput{Kind: "ppc_bulk", Path: "/r/bulk.csv"})
	requireCode(t, err, mcperr.UnsupportedFormat)

	_, err = svc.LoadReport(ctx, LoadReportInput{SessionID: "missing", Kind: "cogs", Content: "ASIN,Cost\n"})
	requireCode(t, err, mcperr.InvalidSession)

	_, err = svc.LoadReport(ctx, LoadReportInput{Kind: "cogs", Content: "ASIN,Cost\nA1,2\n", Previous: true})
	requireCode(t, err, mcperr.Validation)

	_, err = svc.LoadReport(ctx, LoadReportInput{Kind: "ppc_bulk", Content: "not base64!"})
	requireCode(t, err, mcperr.Validation)

	_, err = svc.LoadReport(ctx, LoadReportInput{Kind: "cogs", Content: "a\x00b\n1\n"})
	requireCode(t, err, mcperr.UnsupportedFormat)

	csvAsBulk := base64.StdEncoding.EncodeToString([]byte("Entity,Spend\nCampaign,2\n"))
	_, err = svc.LoadReport(ctx, LoadReportInput{Kind: "ppc_bulk", Content: csvAsBulk})
	requireCode(t, err, mcperr.UnsupportedFormat)
}

func TestKeepKillMatrixPages(t *testing.T) {
	svc, _ := newService(t)
	sid := loadAndRun(t, svc)
	ctx := context.Background()

	first, err := svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Scores, 2)
	require.Equal(t, 3, first.Meta.Total)
	require.True(t, first.Meta.Truncated)
	require.NotEmpty(t, first.Meta.NextCursor)
	require.Len(t, first.Summary, len(portfolio.Actions))

	second, err := svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid, Cursor: first.Meta.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Scores, 1)
	require.False(t, second.Meta.Truncated)
	require.Empty(t, second.Meta.NextCursor)
	require.NotEqual(t, first.Scores[0].ASIN, second.Scores[0].ASIN)

	_, err = svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid, Action: "EXIT", Cursor: first.Meta.NextCursor})
	requireCode(t, err, mcperr.CursorInvalid)

	_, err = svc.RunAudit(ctx, RunAuditInput{SessionID: sid})
	require.NoError(t, err)
	_, err = svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid, Cursor: first.Meta.NextCursor})
	requireCode(t, err, mcperr.CursorInvalid)

	exits, err := svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid, Action: "exit"})
	require.NoError(t, err)
	for _, s := range exits.Scores {
		require.Equal(t, portfolio.ActionExit, s.Action)
	}
	require.Equal(t, first.Summary[portfolio.ActionExit], exits.Meta.Total)
}

func TestViewsNeedRunAndReports(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	out, err := svc.LoadReport(ctx, LoadReportInput{Kind: "business_report", Content: businessCSV})
	require.NoError(t, err)

	_, err = svc.PPCWaste(ctx, SessionInput{SessionID: out.SessionID})
	requireCode(t, err, mcperr.Validation)

	_, err = svc.RunAudit(ctx, RunAuditInput{SessionID: out.SessionID})
	require.NoError(t, err)

	_, err = svc.PPCWaste(ctx, SessionInput{SessionID: out.SessionID})
	requireCode(t, err, mcperr.MissingReport)
	_, err = svc.SearchTermRecommendations(ctx, SearchTermsInput{SessionID: out.SessionID})
	requireCode(t, err, mcperr.MissingReport)
	_, err = svc.SQPComparison(ctx, SQPComparisonInput{SessionID: out.SessionID})
	requireCode(t, err, mcperr.MissingReport)
	_, err = svc.SQPComparison(ctx, SQPComparisonInput{SessionID: out.SessionID, Order: "random"})
	requireCode(t, err, mcperr.Validation)

	h, err := svc.HierarchySummary(ctx, HierarchyInput{SessionID: out.SessionID, IncludeChildren: true})
	require.NoError(t, err)
	require.Len(t, h.Parents, 2)
	require.Len(t, h.Children, 3)
	require.Equal(t, "P1", h.Parents[0].Key)

	_, err = svc.RunAudit(ctx, RunAuditInput{SessionID: "nope"})
	requireCode(t, err, mcperr.InvalidSession)
}

func TestCloseSession(t *testing.T) {
	svc, _ := newService(t)
	sid := loadAndRun(t, svc)
	ctx := context.Background()

	out, err := svc.CloseSession(ctx, SessionInput{SessionID: sid})
	require.NoError(t, err)
	require.True(t, out.Success)
	_, err = svc.CloseSession(ctx, SessionInput{SessionID: sid})
	requireCode(t, err, mcperr.InvalidSession)
	_, err = svc.KeepKillMatrix(ctx, KeepKillInput{SessionID: sid})
	requireCode(t, err, mcperr.InvalidSession)
}

func TestErrorResultCarriesGuidance(t *testing.T) {
	res := errorResult(failf(mcperr.MissingReport, "load a ppc_bulk report"))
	require.True(t, res.IsError)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	require.Contains(t, tc.Text, "MISSING_REPORT: load a ppc_bulk report")
	require.Contains(t, tc.Text, "nextSteps")

	res = errorResult(errors.New("boom"))
	tc, _ = mcp.AsTextContent(res.Content[0])
	require.Contains(t, tc.Text, "ANALYSIS_FAILED: boom")
}

func TestRegisterAuditTools(t *testing.T) {
	svc, _ := newService(t)
	reg := New()
	RegisterAuditTools(server.NewMCPServer("sellerscope-test", "dev"), reg, svc)

	require.Equal(t, []string{
		"close_session", "hierarchy_summary", "keep_kill_matrix", "load_report",
		"ppc_waste", "run_audit", "search_term_recommendations", "sqp_comparison",
	}, reg.Names())
	tool, ok := reg.Get(" Run_Audit ")
	require.True(t, ok)
	require.Equal(t, "run_audit", tool.Name)
	require.Len(t, reg.Tools(), 8)
}

func TestToolFilterDisablesRegisteredTools(t *testing.T) {
	reg := New()
	reg.Register(mcp.NewTool("run_audit"))
	reg.Register(mcp.NewTool("load_report"))
	reg.Register(mcp.NewTool("ppc_waste"))

	filter := NewToolFilter(reg)
	require.Len(t, filter.FilterTools(context.Background(), reg.Tools()), 3)

	err := filter.Disable(" PPC_Waste ", "", "export_csv")
	require.ErrorContains(t, err, "unknown tools export_csv")
	require.ErrorContains(t, err, "load_report, ppc_waste, run_audit")
	require.True(t, filter.Disabled("ppc_waste"))
	require.False(t, filter.Disabled("export_csv"))

	listed := filter.FilterTools(context.Background(), reg.Tools())
	require.Len(t, listed, 2)
	for _, tool := range listed {
		require.NotEqual(t, "ppc_waste", tool.Name)
	}

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("served " + req.Params.Name), nil
	}
	call := func(name string) *mcp.CallToolResult {
		var req mcp.CallToolRequest
		req.Params.Name = name
		res, err := filter.ToolMiddleware(next)(context.Background(), req)
		require.NoError(t, err)
		return res
	}

	res := call("ppc_waste")
	require.True(t, res.IsError)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	require.Contains(t, tc.Text, "TOOL_DISABLED: tool ppc_waste is disabled")

	res = call("run_audit")
	require.False(t, res.IsError)
	tc, _ = mcp.AsTextContent(res.Content[0])
	require.Equal(t, "served run_audit", tc.Text)
}

func TestDisabledFromEnv(t *testing.T) {
	t.Setenv(DisabledToolsEnv, "ppc_waste, sqp_comparison")
	reg := New()
	reg.Register(mcp.NewTool("ppc_waste"))
	reg.Register(mcp.NewTool("sqp_comparison"))

	filter := NewToolFilter(reg)
	require.NoError(t, filter.Disable(DisabledFromEnv()...))
	require.Empty(t, filter.FilterTools(context.Background(), reg.Tools()))
}
