// Package audit owns one seller's uploaded reports and runs the analysis
// pipeline over them. A Session replaces process-wide state: every report is
// an optional field and each pipeline stage checks presence explicitly.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vinodismyname/sellerscope/config"
	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
)

// ErrNoPreviousPeriod indicates a previous-period upload for a report kind
// that is not compared across periods.
var ErrNoPreviousPeriod = errors.New("audit: report kind has no previous period")

// Hooks receives session lifecycle events.
type Hooks interface {
	OnReportLoaded(sessionID string, kind reports.Kind, name string, rows int, duration time.Duration, err error)
	OnAuditRun(sessionID string, scored int, missing []reports.Kind, duration time.Duration, err error)
}

type noHooks struct{}

func (noHooks) OnReportLoaded(string, reports.Kind, string, int, time.Duration, error) {}
func (noHooks) OnAuditRun(string, int, []reports.Kind, time.Duration, error) {}

// Options configure a session.
type Options struct {
	Marketplace   string
	BreakevenACoS float64
	HeroTopN      int
	MaxParallel   int
	Workbooks     *workbooks.Manager
	Hooks         Hooks
	Now           func() time.Time
}

// OptionsFromConfig maps loaded configuration onto session options.
func OptionsFromConfig(cfg *config.Config, mgr *workbooks.Manager, hooks Hooks) Options {
	return Options{
		Marketplace:   cfg.Marketplace,
		BreakevenACoS: cfg.BreakevenACoS,
		HeroTopN:      cfg.HeroTopN,
		MaxParallel:   cfg.MaxConcurrentParses,
		Workbooks:     mgr,
		Hooks:         hooks,
	}
}

func (o Options) withDefaults() Options {
	if o.BreakevenACoS <= 0 {
		o.BreakevenACoS = config.DefaultBreakevenACoS
	}
	if o.HeroTopN <= 0 {
		o.HeroTopN = config.DefaultHeroTopN
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = config.DefaultMaxConcurrentParses
	}
	if o.Workbooks == nil {
		o.Workbooks = workbooks.NewManager(nil)
	}
	if o.Hooks == nil {
		o.Hooks = noHooks{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Upload is one report file to load.
type Upload struct {
	Kind     reports.Kind
	Name     string
	Previous bool
	Reader   io.Reader
}

// LoadResult is the outcome of loading one upload. Err is nil on success.
type LoadResult struct {
	Kind     reports.Kind `json:"kind"`
	Name     string       `json:"name"`
	Previous bool         `json:"previous,omitempty"`
	Rows     int          `json:"rows"`
	Err      error        `json:"-"`
	Error    string       `json:"error,omitempty"`
}

// OK reports whether the upload was parsed and stored.
func (r LoadResult) OK() bool { return r.Err == nil }

func newLoadResult(u Upload, p *reports.Parsed, err error) LoadResult {
	res := LoadResult{Kind: u.Kind, Name: u.Name, Previous: u.Previous, Err: err}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Rows = p.Rows()
	return res
}

// reportSet holds every report a session may carry. Nil means not loaded.
type reportSet struct {
	sqpBrand, sqpBrandPrevious     *reports.SQPReport
	sqpASIN, sqpASINPrevious       []*reports.SQPReport
	business, businessPrevious     *table.Table
	inventory, cogs, fees, returns *table.Table
	categoryListing                *table.Table
	topSearchTerms, searchCatalog  *reports.MarketReport
	ppc                            *ppc.Bulk
}

func (rs *reportSet) store(kind reports.Kind, previous bool, p *reports.Parsed) {
	switch kind {
	case reports.KindSQPBrand:
		rep := &reports.SQPReport{Table: p.Table, Metadata: p.Metadata}
		if previous {
			rs.sqpBrandPrevious = rep
		} else {
			rs.sqpBrand = rep
		}
	case reports.KindSQPASIN:
		rep := &reports.SQPReport{Table: p.Table, Metadata: p.Metadata}
		if previous {
			rs.sqpASINPrevious = replaceASINView(rs.sqpASINPrevious, rep)
		} else {
			rs.sqpASIN = replaceASINView(rs.sqpASIN, rep)
		}
	case reports.KindBusinessReport:
		if previous {
			rs.businessPrevious = p.Table
		} else {
			rs.business = p.Table
		}
	case reports.KindInventory:
		rs.inventory = p.Table
	case reports.KindCOGS:
		rs.cogs = p.Table
	case reports.KindFeeReport:
		rs.fees = p.Table
	case reports.KindReturns:
		rs.returns = p.Table
	case reports.KindCategoryListing:
		rs.categoryListing = p.Table
	case reports.KindTopSearchTerms:
		rs.topSearchTerms = &reports.MarketReport{Table: p.Table, Metadata: p.Metadata}
	case reports.KindSearchCatalog:
		rs.searchCatalog = &reports.MarketReport{Table: p.Table, Metadata: p.Metadata}
	case reports.KindPPCBulk:
		rs.ppc = p.PPC
	}
}

// replaceASINView keeps one view per ASIN; a later upload for the same ASIN
// replaces the earlier one.
func replaceASINView(views []*reports.SQPReport, rep *reports.SQPReport) []*reports.SQPReport {
	asin := rep.Metadata["asin"]
	if asin != "" {
		for i, v := range views {
			if v.Metadata["asin"] == asin {
				views[i] = rep
				return views
			}
		}
	}
	return append(views, rep)
}

func (rs *reportSet) has(kind reports.Kind) bool {
	switch kind {
	case reports.KindSQPBrand:
		return rs.sqpBrand != nil
	case reports.KindSQPASIN:
		return len(rs.sqpASIN) > 0
	case reports.KindBusinessReport:
		return rs.business != nil
	case reports.KindInventory:
		return rs.inventory != nil
	case reports.KindCOGS:
		return rs.cogs != nil
	case reports.KindFeeReport:
		return rs.fees != nil
	case reports.KindReturns:
		return rs.returns != nil
	case reports.KindCategoryListing:
		return rs.categoryListing != nil
	case reports.KindTopSearchTerms:
		return rs.topSearchTerms != nil
	case reports.KindSearchCatalog:
		return rs.searchCatalog != nil
	case reports.KindPPCBulk:
		return rs.ppc != nil
	}
	return false
}

func periodic(kind reports.Kind) bool {
	return kind == reports.KindSQPBrand || kind == reports.KindSQPASIN || kind == reports.KindBusinessReport
}

// Session is one audit: the uploaded reports plus the latest result.
// It is safe for concurrent use; loads and runs are serialized.
type Session struct {
	ID          string
	Marketplace reports.Marketplace
	CreatedAt   time.Time

	opts Options

	mu      sync.Mutex
	data    reportSet
	loaded  []LoadResult
	runs    int64
	last    *Result
	touched time.Time
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	opts = opts.withDefaults()
	now := opts.Now()
	return &Session{
		ID:          uuid.NewString(),
		Marketplace: reports.LookupMarketplace(opts.Marketplace),
		CreatedAt:   now,
		opts:        opts,
		touched:     now,
	}
}

// Load parses one current-period report and stores it, replacing any
// earlier report of the same kind.
func (s *Session) Load(ctx context.Context, kind reports.Kind, name string, r io.Reader) LoadResult {
	return s.LoadBatch(ctx, []Upload{{Kind: kind, Name: name, Reader: r}})[0]
}

// LoadPrevious parses a previous-period report used for period comparison.
func (s *Session) LoadPrevious(ctx context.Context, kind reports.Kind, name string, r io.Reader) LoadResult {
	return s.LoadBatch(ctx, []Upload{{Kind: kind, Name: name, Previous: true, Reader: r}})[0]
}

// LoadBatch parses uploads concurrently and stores them in upload order. One
// failing file never prevents the others from loading; each upload gets its
// own LoadResult.
func (s *Session) LoadBatch(ctx context.Context, uploads []Upload) []LoadResult {
	parsed := make([]*reports.Parsed, len(uploads))
	errs := make([]error, len(uploads))
	took := make([]time.Duration, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallel)
	for i, u := range uploads {
		g.Go(func() error {
			start := s.opts.Now()
			if u.Previous && !periodic(u.Kind) {
				errs[i] = fmt.Errorf("%w: %s", ErrNoPreviousPeriod, u.Kind)
				return nil
			}
			parsed[i], errs[i] = reports.Parse(gctx, s.opts.Workbooks, u.Kind, u.Name, u.Reader)
			took[i] = s.opts.Now().Sub(start)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]LoadResult, len(uploads))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range uploads {
		res := newLoadResult(u, parsed[i], errs[i])
		if res.OK() {
			s.data.store(u.Kind, u.Previous, parsed[i])
		}
		s.loaded = append(s.loaded, res)
		s.opts.Hooks.OnReportLoaded(s.ID, u.Kind, u.Name, res.Rows, took[i], res.Err)
		results[i] = res
	}
	s.touched = s.opts.Now()
	return results
}

// Loaded returns every load attempt in order.
func (s *Session) Loaded() []LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LoadResult(nil), s.loaded...)
}

// Has reports whether a current-period report of kind is loaded.
func (s *Session) Has(kind reports.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.has(kind)
}

// LastResult returns the result of the most recent Run, or nil.
func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LastUsed is when the session was last loaded into or run.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
