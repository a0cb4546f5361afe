package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vinodismyname/sellerscope/config"
	"github.com/vinodismyname/sellerscope/internal/audit"
	"github.com/vinodismyname/sellerscope/internal/hierarchy"
	"github.com/vinodismyname/sellerscope/internal/metrics"
	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/security"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
	"github.com/vinodismyname/sellerscope/pkg/mcperr"
	"github.com/vinodismyname/sellerscope/pkg/pagination"
	"github.com/vinodismyname/sellerscope/pkg/validation"
)

// toolError carries a canonical code so handlers can render catalog guidance.
type toolError struct {
	code mcperr.Code
	msg  string
}

func (e *toolError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.msg
}

func failf(code mcperr.Code, format string, args ...any) error {
	return &toolError{code: code, msg: fmt.Sprintf(format, args...)}
}

// invalid turns a ValidateStruct message ("CODE: detail") into a toolError.
func invalid(msg string) error {
	code, detail, _ := strings.Cut(msg, ":")
	return &toolError{code: mcperr.Code(strings.TrimSpace(code)), msg: strings.TrimSpace(detail)}
}

// Service implements the audit tools independent of the MCP transport.
type Service struct {
	Store    *audit.Store
	Security *security.Manager
}

// --- Input / Output Schemas (typed for discovery) ---

// LoadReportInput defines parameters for loading one report export.
type LoadReportInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema_description:"Audit session to load into; omit to start a new session"`
	Kind      string `json:"kind" validate:"required,report_kind" jsonschema_description:"Report kind: sqp_brand, sqp_asin, business_report, ppc_bulk, inventory, cogs, fee_report, category_listing, returns, top_search_terms, search_catalog"`
	Path      string `json:"path,omitempty" validate:"omitempty,report_ext" jsonschema_description:"Path to the export inside an allowed directory"`
	Content   string `json:"content,omitempty" validate:"required_without=Path" jsonschema_description:"Inline report text (base64 for ppc_bulk and category_listing) when no path is given"`
	Name      string `json:"name,omitempty" jsonschema_description:"Display name for inline content"`
	Previous  bool   `json:"previous,omitempty" jsonschema_description:"Load as the previous period (sqp_brand, sqp_asin, business_report only)"`
}

// LoadReportOutput documents the response fields for load_report.
type LoadReportOutput struct {
	SessionID string         `json:"session_id" jsonschema_description:"Audit session holding the report"`
	Kind      reports.Kind   `json:"kind"`
	Name      string         `json:"name"`
	Previous  bool           `json:"previous,omitempty"`
	Rows      int            `json:"rows" jsonschema_description:"Normalized rows (all sheets for ppc_bulk)"`
	Loaded    []reports.Kind `json:"loaded" jsonschema_description:"Current-period report kinds loaded in the session"`
}

// LoadReport parses one report into a session, creating the session when
// none is named.
func (s *Service) LoadReport(ctx context.Context, in LoadReportInput) (LoadReportOutput, error) {
	var out LoadReportOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	kind, _ := reports.ParseKind(in.Kind)
	sess, err := s.Store.GetOrCreate(in.SessionID)
	if err != nil {
		return out, failf(mcperr.InvalidSession, "session %q not found", in.SessionID)
	}

	name := strings.TrimSpace(in.Name)
	var r io.Reader
	if in.Path != "" {
		if s.Security == nil {
			return out, failf(mcperr.PermissionDenied, "path loading is disabled; supply content instead")
		}
		f, real, err := s.Security.Open(in.Path)
		if err != nil {
			return out, pathFailure(err)
		}
		defer f.Close()
		r = f
		if name == "" {
			name = filepath.Base(real)
		}
	} else {
		if kind.IsWorkbook() {
			data, err := base64.StdEncoding.DecodeString(in.Content)
			if err != nil {
				return out, failf(mcperr.Validation, "content for %s must be base64 encoded", kind)
			}
			r = bytes.NewReader(data)
		} else {
			r = strings.NewReader(in.Content)
		}
		if name == "" {
			name = string(kind) + kind.Extensions()[0]
		}
	}

	res := sess.LoadBatch(ctx, []audit.Upload{{Kind: kind, Name: name, Previous: in.Previous, Reader: r}})[0]
	if !res.OK() {
		return out, loadFailure(res.Err)
	}
	out = LoadReportOutput{
		SessionID: sess.ID,
		Kind:      res.Kind,
		Name:      res.Name,
		Previous:  res.Previous,
		Rows:      res.Rows,
		Loaded:    []reports.Kind{},
	}
	for _, k := range reports.Kinds {
		if sess.Has(k) {
			out.Loaded = append(out.Loaded, k)
		}
	}
	return out, nil
}

func pathFailure(err error) error {
	switch {
	case errors.Is(err, security.ErrUnsupportedExtension):
		return failf(mcperr.UnsupportedFormat, "file extension not allowed")
	case errors.Is(err, security.ErrNotFound):
		return failf(mcperr.PermissionDenied, "file not found in allowed directories")
	case errors.Is(err, security.ErrNotAllowed):
		return failf(mcperr.PermissionDenied, "path is outside the allowed directories")
	}
	return failf(mcperr.PermissionDenied, "%v", err)
}

func loadFailure(err error) error {
	switch {
	case errors.Is(err, audit.ErrNoPreviousPeriod):
		return failf(mcperr.Validation, "previous period is only supported for sqp_brand, sqp_asin and business_report")
	case errors.Is(err, context.DeadlineExceeded):
		return failf(mcperr.Timeout, "")
	case errors.Is(err, reports.ErrBinaryInput), errors.Is(err, reports.ErrLayoutMismatch), errors.Is(err, workbooks.ErrUnsupportedFormat):
		return failf(mcperr.UnsupportedFormat, "%v", err)
	}
	return failf(mcperr.ParseFailed, "%v", err)
}

// RunAuditInput defines parameters for running the audit pipeline.
type RunAuditInput struct {
	SessionID     string  `json:"session_id" validate:"required" jsonschema_description:"Audit session to analyze"`
	BreakevenACoS float64 `json:"breakeven_acos,omitempty" validate:"omitempty,gt=0,lte=100" jsonschema_description:"Break-even ACoS percent for PPC rules (default from config)"`
	HeroTopN      int     `json:"hero_top_n,omitempty" validate:"omitempty,min=1,max=50" jsonschema_description:"Hero children flagged per parent"`
	TopN          int     `json:"top_n,omitempty" validate:"omitempty,min=1,max=100" jsonschema_description:"Rows kept in top/worst performer lists"`
}

// RunAuditOutput summarizes one audit run; details are paged by other tools.
type RunAuditOutput struct {
	SessionID     string                   `json:"session_id"`
	Run           int64                    `json:"run"`
	Marketplace   string                   `json:"marketplace"`
	BreakevenACoS float64                  `json:"breakeven_acos"`
	Scored        int                      `json:"scored_asins"`
	Actions       map[portfolio.Action]int `json:"action_summary"`
	BrandHealth   metrics.BrandHealth      `json:"brand_health"`
	Parents       int                      `json:"parents"`
	Orphans       int                      `json:"orphans"`
	PPC           *ppc.Summary             `json:"ppc,omitempty"`
	WastedSpend   float64                  `json:"estimated_waste"`
	SearchTerms   int                      `json:"search_terms"`
	SQPQueries    int                      `json:"sqp_queries"`
	Missing       []reports.Kind           `json:"missing_reports"`
}

// RunAudit runs the pipeline over everything loaded in the session.
func (s *Service) RunAudit(ctx context.Context, in RunAuditInput) (RunAuditOutput, error) {
	var out RunAuditOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	sess, err := s.Store.Get(in.SessionID)
	if err != nil {
		return out, failf(mcperr.InvalidSession, "session %q not found", in.SessionID)
	}
	res, err := sess.Run(ctx, audit.RunOptions{BreakevenACoS: in.BreakevenACoS, HeroTopN: in.HeroTopN, TopN: in.TopN})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return out, failf(mcperr.Timeout, "")
		}
		return out, failf(mcperr.AnalysisFailed, "%v", err)
	}
	out = RunAuditOutput{
		SessionID:     res.SessionID,
		Run:           res.Run,
		Marketplace:   res.Marketplace,
		BreakevenACoS: res.BreakevenACoS,
		Scored:        len(res.Scores),
		Actions:       res.Actions,
		BrandHealth:   res.BrandHealth,
		Parents:       len(res.Parents),
		Orphans:       len(res.Orphans),
		Missing:       res.Missing,
	}
	if out.Missing == nil {
		out.Missing = []reports.Kind{}
	}
	if res.PPC != nil {
		out.PPC = &res.PPC.Summary
		out.WastedSpend = res.PPC.Waste.TotalEstimatedWaste
		out.SearchTerms = len(res.PPC.SearchTerms)
	}
	if res.SQP != nil {
		out.SQPQueries = len(res.SQP.Changes)
	}
	return out, nil
}

// lastResult returns the latest audit result of a session.
func (s *Service) lastResult(id string) (*audit.Result, error) {
	sess, err := s.Store.Get(id)
	if err != nil {
		return nil, failf(mcperr.InvalidSession, "session %q not found", id)
	}
	res := sess.LastResult()
	if res == nil {
		return nil, failf(mcperr.Validation, "no audit has run for this session; call run_audit first")
	}
	return res, nil
}

// PageMeta captures paging/truncation metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type pageRequest struct {
	sid    string
	view   pagination.View
	run    int64
	filter string
	cursor string
	limit  int
}

// paginate slices items for one page. A cursor is bound to the session, view,
// audit run and filter that produced it.
func paginate[T any](items []T, p pageRequest) ([]T, PageMeta, error) {
	off, ps := 0, p.limit
	if ps <= 0 {
		ps = config.DefaultPageSize
	}
	if p.cursor != "" {
		c, err := pagination.DecodeCursor(p.cursor)
		if err != nil {
			return nil, PageMeta{}, failf(mcperr.CursorInvalid, "%v", err)
		}
		if c.Sid != p.sid || c.Vw != p.view || c.Rv != p.run || c.Fh != p.filter {
			return nil, PageMeta{}, failf(mcperr.CursorInvalid, "cursor does not match the current audit run or filters")
		}
		off, ps = c.Off, c.Ps
	}
	if ps > config.MaxPageSize {
		ps = config.MaxPageSize
	}
	start, end := pagination.Window(len(items), off, ps)
	page := items[start:end]
	meta := PageMeta{Total: len(items), Returned: len(page), Truncated: end < len(items)}
	if meta.Truncated {
		next, err := pagination.EncodeCursor(pagination.Cursor{
			Sid: p.sid, Vw: p.view, Off: pagination.NextOffset(start, len(page)), Ps: ps, Rv: p.run, Fh: p.filter,
		})
		if err != nil {
			return nil, PageMeta{}, failf(mcperr.CursorInvalid, "%v", err)
		}
		meta.NextCursor = next
	}
	return page, meta, nil
}

// KeepKillInput defines parameters for paging the keep/kill matrix.
type KeepKillInput struct {
	SessionID string `json:"session_id" validate:"required" jsonschema_description:"Audit session"`
	Action    string `json:"action,omitempty" validate:"omitempty,portfolio_action" jsonschema_description:"Only ASINs with this action: INVEST, MAINTAIN, OPTIMIZE, HARVEST, EXIT"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500" jsonschema_description:"Rows per page"`
}

// KeepKillOutput is one page of ASIN scores, highest total first.
type KeepKillOutput struct {
	SessionID string                   `json:"session_id"`
	Run       int64                    `json:"run"`
	Summary   map[portfolio.Action]int `json:"action_summary"`
	Scores    []portfolio.Score        `json:"scores"`
	Meta      PageMeta                 `json:"meta"`
}

// KeepKillMatrix pages the scored portfolio.
func (s *Service) KeepKillMatrix(_ context.Context, in KeepKillInput) (KeepKillOutput, error) {
	var out KeepKillOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	res, err := s.lastResult(in.SessionID)
	if err != nil {
		return out, err
	}
	action := strings.ToUpper(strings.TrimSpace(in.Action))
	scores := res.Scores
	if a, ok := portfolio.ParseAction(action); ok {
		scores = portfolio.Filter(scores, a)
	}
	page, meta, err := paginate(scores, pageRequest{
		sid: res.SessionID, view: pagination.ViewKeepKill, run: res.Run,
		filter: pagination.FilterHash(action), cursor: in.Cursor, limit: in.Limit,
	})
	if err != nil {
		return out, err
	}
	if page == nil {
		page = []portfolio.Score{}
	}
	return KeepKillOutput{SessionID: res.SessionID, Run: res.Run, Summary: res.Actions, Scores: page, Meta: meta}, nil
}

// SearchTermsInput defines parameters for paging search-term recommendations.
type SearchTermsInput struct {
	SessionID      string `json:"session_id" validate:"required" jsonschema_description:"Audit session"`
	Recommendation string `json:"recommendation,omitempty" jsonschema_description:"Only terms with this recommendation: Scale, Maintain, Optimize, Negate, More Data, Monitor, No Data"`
	Cursor         string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
	Limit          int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500" jsonschema_description:"Rows per page"`
}

// SearchTermsOutput is one page of analyzed search terms by impact.
type SearchTermsOutput struct {
	SessionID string                     `json:"session_id"`
	Run       int64                      `json:"run"`
	Counts    map[ppc.Recommendation]int `json:"recommendation_counts"`
	Terms     []ppc.SearchTermAnalysis   `json:"search_terms"`
	Meta      PageMeta                   `json:"meta"`
}

// SearchTermRecommendations pages the PPC search-term analysis.
func (s *Service) SearchTermRecommendations(_ context.Context, in SearchTermsInput) (SearchTermsOutput, error) {
	var out SearchTermsOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	res, err := s.lastResult(in.SessionID)
	if err != nil {
		return out, err
	}
	if res.PPC == nil {
		return out, failf(mcperr.MissingReport, "load a %s report and re-run the audit", reports.KindPPCBulk)
	}
	terms := res.PPC.SearchTerms
	filter := ""
	if strings.TrimSpace(in.Recommendation) != "" {
		rec, ok := ppc.ParseRecommendation(in.Recommendation)
		if !ok {
			return out, failf(mcperr.Validation, "unknown recommendation %q", in.Recommendation)
		}
		filter = string(rec)
		var kept []ppc.SearchTermAnalysis
		for _, t := range terms {
			if t.Recommendation == rec {
				kept = append(kept, t)
			}
		}
		terms = kept
	}
	page, meta, err := paginate(terms, pageRequest{
		sid: res.SessionID, view: pagination.ViewSearchTerms, run: res.Run,
		filter: pagination.FilterHash(filter), cursor: in.Cursor, limit: in.Limit,
	})
	if err != nil {
		return out, err
	}
	if page == nil {
		page = []ppc.SearchTermAnalysis{}
	}
	return SearchTermsOutput{SessionID: res.SessionID, Run: res.Run, Counts: res.PPC.Recommendations, Terms: page, Meta: meta}, nil
}

// SessionInput names an audit session.
type SessionInput struct {
	SessionID string `json:"session_id" validate:"required" jsonschema_description:"Audit session"`
}

// PPCWasteOutput lists waste findings next to efficient targets worth scaling.
type PPCWasteOutput struct {
	SessionID       string                  `json:"session_id"`
	Run             int64                   `json:"run"`
	Waste           ppc.WasteReport         `json:"waste"`
	Opportunities   ppc.Opportunities       `json:"opportunities"`
	WorstPerformers []ppc.WorstPerformer    `json:"worst_performers"`
	LowConversion   []ppc.EntityPerformance `json:"low_conversion"`
	Scaling         []ppc.ScalingCandidate  `json:"scaling_candidates"`
}

// PPCWaste returns the waste findings of the latest run.
func (s *Service) PPCWaste(_ context.Context, in SessionInput) (PPCWasteOutput, error) {
	var out PPCWasteOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	res, err := s.lastResult(in.SessionID)
	if err != nil {
		return out, err
	}
	if res.PPC == nil {
		return out, failf(mcperr.MissingReport, "load a %s report and re-run the audit", reports.KindPPCBulk)
	}
	return PPCWasteOutput{
		SessionID:       res.SessionID,
		Run:             res.Run,
		Waste:           res.PPC.Waste,
		Opportunities:   res.PPC.Opportunities,
		WorstPerformers: res.PPC.WorstPerformers,
		LowConversion:   res.PPC.LowConversion,
		Scaling:         res.PPC.Scaling,
	}, nil
}

// HierarchyInput defines parameters for the hierarchy overview.
type HierarchyInput struct {
	SessionID       string `json:"session_id" validate:"required" jsonschema_description:"Audit session"`
	IncludeChildren bool   `json:"include_children,omitempty" jsonschema_description:"Also list every child ASIN"`
}

// HierarchyOutput is the parent/child overview with hero ASINs.
type HierarchyOutput struct {
	SessionID string                    `json:"session_id"`
	Run       int64                     `json:"run"`
	Parents   []hierarchy.ParentSummary `json:"parents"`
	Children  []hierarchy.ChildSummary  `json:"children,omitempty"`
	Orphans   []hierarchy.ASINInfo      `json:"orphans,omitempty"`
	Heroes    []string                  `json:"hero_asins"`
}

// HierarchySummary returns the parent/child structure of the latest run.
func (s *Service) HierarchySummary(_ context.Context, in HierarchyInput) (HierarchyOutput, error) {
	var out HierarchyOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	res, err := s.lastResult(in.SessionID)
	if err != nil {
		return out, err
	}
	if res.Hierarchy == nil {
		return out, failf(mcperr.MissingReport, "load a %s or %s report and re-run the audit", reports.KindCategoryListing, reports.KindBusinessReport)
	}
	out = HierarchyOutput{
		SessionID: res.SessionID,
		Run:       res.Run,
		Parents:   res.Parents,
		Orphans:   res.Orphans,
		Heroes:    res.Hierarchy.HeroASINs(),
	}
	if in.IncludeChildren {
		out.Children = res.Hierarchy.Children()
	}
	return out, nil
}

// SQPComparisonInput defines parameters for paging the SQP period comparison.
type SQPComparisonInput struct {
	SessionID string `json:"session_id" validate:"required" jsonschema_description:"Audit session"`
	Order     string `json:"order,omitempty" validate:"omitempty,oneof=query gainers losers" jsonschema_description:"Row order: query (default), gainers or losers by share change"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500" jsonschema_description:"Rows per page"`
}

// SQPComparisonOutput is the brand funnel plus one page of query changes.
type SQPComparisonOutput struct {
	SessionID    string                `json:"session_id"`
	Run          int64                 `json:"run"`
	Funnel       []metrics.Stage       `json:"funnel"`
	Bottleneck   string                `json:"bottleneck"`
	BrandShare   float64               `json:"brand_share"`
	ShareChange  float64               `json:"share_change"`
	BrandGrowth  float64               `json:"brand_growth"`
	MarketGrowth float64               `json:"market_growth"`
	Position     metrics.Quadrant      `json:"market_position"`
	HasPrevious  bool                  `json:"has_previous"`
	Changes      []metrics.QueryChange `json:"changes"`
	Meta         PageMeta              `json:"meta"`
}

// SQPComparison pages the query-level comparison of the latest run.
func (s *Service) SQPComparison(_ context.Context, in SQPComparisonInput) (SQPComparisonOutput, error) {
	var out SQPComparisonOutput
	if msg := validation.ValidateStruct(in); msg != "" {
		return out, invalid(msg)
	}
	res, err := s.lastResult(in.SessionID)
	if err != nil {
		return out, err
	}
	if res.SQP == nil {
		return out, failf(mcperr.MissingReport, "load a %s report and re-run the audit", reports.KindSQPBrand)
	}
	order := in.Order
	if order == "" {
		order = "query"
	}
	changes := res.SQP.Changes
	switch order {
	case "gainers":
		changes = metrics.TopGainers(changes, -1)
	case "losers":
		changes = metrics.TopLosers(changes, -1)
	}
	page, meta, err := paginate(changes, pageRequest{
		sid: res.SessionID, view: pagination.ViewSQPChanges, run: res.Run,
		filter: pagination.FilterHash(order), cursor: in.Cursor, limit: in.Limit,
	})
	if err != nil {
		return out, err
	}
	if page == nil {
		page = []metrics.QueryChange{}
	}
	sqp := res.SQP
	return SQPComparisonOutput{
		SessionID:    res.SessionID,
		Run:          res.Run,
		Funnel:       sqp.Funnel,
		Bottleneck:   sqp.Bottleneck,
		BrandShare:   sqp.BrandShare,
		ShareChange:  sqp.ShareChange,
		BrandGrowth:  sqp.BrandGrowth,
		MarketGrowth: sqp.MarketGrowth,
		Position:     sqp.Position,
		HasPrevious:  sqp.HasPrevious,
		Changes:      page,
		Meta:         meta,
	}, nil
}

// CloseSessionOutput documents the response of close_session.
type CloseSessionOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the session existed and was dropped"`
}

// CloseSession drops a session and its reports.
func (s *Service) CloseSession(_ context.Context, in SessionInput) (CloseSessionOutput, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return CloseSessionOutput{}, invalid(msg)
	}
	if !s.Store.Delete(in.SessionID) {
		return CloseSessionOutput{}, failf(mcperr.InvalidSession, "session %q not found", in.SessionID)
	}
	return CloseSessionOutput{Success: true}, nil
}
