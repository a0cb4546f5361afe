package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/sellerscope/pkg/mcperr"
)

// errorResult renders a service error as an MCP tool error with catalog guidance.
func errorResult(err error) *mcp.CallToolResult {
	var te *toolError
	if errors.As(err, &te) {
		return mcperr.New(te.code, te.msg)
	}
	return mcperr.Wrapf(mcperr.AnalysisFailed, "%v", err)
}

// addTool registers tool with a typed handler that renders out as structured
// content plus a one-line text summary for clients ignoring structured output.
func addTool[In, Out any](s *server.MCPServer, reg *Registry, tool mcp.Tool, run func(context.Context, In) (Out, error), summarize func(Out) string) {
	s.AddTool(tool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in In) (*mcp.CallToolResult, error) {
		out, err := run(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		summary := summarize(out)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(tool)
}

// RegisterAuditTools wires the report loading and audit tools.
func RegisterAuditTools(s *server.MCPServer, reg *Registry, svc *Service) {
	addTool(s, reg, mcp.NewTool(
		"load_report",
		mcp.WithDescription("Parse one Amazon Seller Central export into an audit session. Supply either a path inside an allowed directory or inline content (base64 for the ppc_bulk and category_listing workbooks). Omit session_id to start a new session; the returned session_id is used by every other tool. Loading a kind again replaces it; previous=true stores a prior period for sqp_brand, sqp_asin and business_report. Errors: VALIDATION, UNSUPPORTED_FORMAT, PERMISSION_DENIED, PARSE_FAILED, INVALID_SESSION."),
		mcp.WithInputSchema[LoadReportInput](),
		mcp.WithOutputSchema[LoadReportOutput](),
	), svc.LoadReport, func(out LoadReportOutput) string {
		return fmt.Sprintf("session=%s kind=%s rows=%d previous=%v loaded=%v", out.SessionID, out.Kind, out.Rows, out.Previous, out.Loaded)
	})

	addTool(s, reg, mcp.NewTool(
		"run_audit",
		mcp.WithDescription("Run the audit pipeline over every report loaded in the session: product hierarchy with hero ASINs, PPC summary and waste, search-term recommendations, SQP funnel and period comparison, keep/kill portfolio scores and brand health. Missing reports are listed rather than failing the run; scoring needs a business_report. Page the details with keep_kill_matrix, search_term_recommendations, sqp_comparison, ppc_waste and hierarchy_summary."),
		mcp.WithInputSchema[RunAuditInput](),
		mcp.WithOutputSchema[RunAuditOutput](),
	), svc.RunAudit, func(out RunAuditOutput) string {
		return fmt.Sprintf("run=%d scored=%d brand_health=%.1f (%s) missing=%v", out.Run, out.Scored, out.BrandHealth.Score, out.BrandHealth.Grade, out.Missing)
	})

	addTool(s, reg, mcp.NewTool(
		"keep_kill_matrix",
		mcp.WithDescription("Page the keep/kill portfolio matrix of the latest audit run: per-ASIN profitability, growth, market and efficiency sub-scores (0-25 each), total score and action (INVEST, MAINTAIN, OPTIMIZE, HARVEST, EXIT) with rationale, highest total first. Filter by action; cursors are bound to the run and filter."),
		mcp.WithInputSchema[KeepKillInput](),
		mcp.WithOutputSchema[KeepKillOutput](),
	), svc.KeepKillMatrix, func(out KeepKillOutput) string {
		return fmt.Sprintf("run=%d returned=%d total=%d truncated=%v", out.Run, out.Meta.Returned, out.Meta.Total, out.Meta.Truncated)
	})

	addTool(s, reg, mcp.NewTool(
		"search_term_recommendations",
		mcp.WithDescription("Page PPC customer search terms with a recommendation (Scale, Maintain, Optimize, Negate, More Data, Monitor, No Data) ordered by impact score. Requires a ppc_bulk report in the latest run."),
		mcp.WithInputSchema[SearchTermsInput](),
		mcp.WithOutputSchema[SearchTermsOutput](),
	), svc.SearchTermRecommendations, func(out SearchTermsOutput) string {
		return fmt.Sprintf("run=%d returned=%d total=%d truncated=%v", out.Run, out.Meta.Returned, out.Meta.Total, out.Meta.Truncated)
	})

	addTool(s, reg, mcp.NewTool(
		"ppc_waste",
		mcp.WithDescription("Return Sponsored Products wasted spend: high-ACoS campaigns with excess spend, spend without sales, low-CTR targets, the estimated total, plus search terms to scale, negate, harvest or move to exact match."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[PPCWasteOutput](),
	), svc.PPCWaste, func(out PPCWasteOutput) string {
		return fmt.Sprintf("run=%d estimated_waste=%.2f high_acos=%d zero_sales=%d", out.Run, out.Waste.TotalEstimatedWaste, len(out.Waste.HighACoSCampaigns), len(out.Waste.ZeroSales))
	})

	addTool(s, reg, mcp.NewTool(
		"hierarchy_summary",
		mcp.WithDescription("Return the parent/child product hierarchy of the latest run with per-parent sales, sessions, units and hero ASINs. Built from the category listing report when loaded, otherwise from the business report."),
		mcp.WithInputSchema[HierarchyInput](),
		mcp.WithOutputSchema[HierarchyOutput](),
	), svc.HierarchySummary, func(out HierarchyOutput) string {
		return fmt.Sprintf("run=%d parents=%d heroes=%d orphans=%d", out.Run, len(out.Parents), len(out.Heroes), len(out.Orphans))
	})

	addTool(s, reg, mcp.NewTool(
		"sqp_comparison",
		mcp.WithDescription("Return the Search Query Performance brand funnel with its bottleneck, brand share, growth and market position, plus a page of query-level changes against the previous period ordered by query, gainers or losers."),
		mcp.WithInputSchema[SQPComparisonInput](),
		mcp.WithOutputSchema[SQPComparisonOutput](),
	), svc.SQPComparison, func(out SQPComparisonOutput) string {
		return fmt.Sprintf("run=%d share=%.2f%% bottleneck=%s position=%s returned=%d", out.Run, out.BrandShare, out.Bottleneck, out.Position, out.Meta.Returned)
	})

	addTool(s, reg, mcp.NewTool(
		"close_session",
		mcp.WithDescription("Drop an audit session and its loaded reports"),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[CloseSessionOutput](),
	), svc.CloseSession, func(out CloseSessionOutput) string {
		return fmt.Sprintf("closed=%v", out.Success)
	})
}
