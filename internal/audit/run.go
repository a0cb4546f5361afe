package audit

import (
	"context"
	"time"

	"github.com/vinodismyname/sellerscope/internal/hierarchy"
	"github.com/vinodismyname/sellerscope/internal/metrics"
	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// CoreKinds are the reports a complete audit expects. Missing ones are listed
// on the Result; the pipeline runs with whatever is present.
var CoreKinds = []reports.Kind{
	reports.KindBusinessReport,
	reports.KindPPCBulk,
	reports.KindSQPBrand,
	reports.KindSQPASIN,
	reports.KindInventory,
	reports.KindCOGS,
	reports.KindFeeReport,
}

const (
	defaultTopN          = 10
	defaultWorstMinSpend = 10.0
)

// RunOptions tune one Run. Zero values fall back to the session options.
type RunOptions struct {
	BreakevenACoS float64
	HeroTopN      int
	TopN          int
	WorstMinSpend float64
}

// PPCResult is the advertising section of a Result.
type PPCResult struct {
	Summary         ppc.Summary                      `json:"summary"`
	Waste           ppc.WasteReport                  `json:"waste"`
	SearchTerms     []ppc.SearchTermAnalysis         `json:"search_terms"`
	Recommendations map[ppc.Recommendation]int       `json:"recommendation_counts"`
	Opportunities   ppc.Opportunities                `json:"opportunities"`
	TopPerformers   []ppc.EntityPerformance          `json:"top_performers"`
	WorstPerformers []ppc.WorstPerformer             `json:"worst_performers"`
	LowConversion   []ppc.EntityPerformance          `json:"low_conversion"`
	Scaling         []ppc.ScalingCandidate           `json:"scaling_candidates"`
	Campaigns       map[string][]ppc.CampaignSummary `json:"campaigns"`
}

// SQPResult is the search-query-performance section of a Result.
type SQPResult struct {
	Funnel       []metrics.Stage       `json:"funnel"`
	Bottleneck   string                `json:"bottleneck"`
	Changes      []metrics.QueryChange `json:"changes,omitempty"`
	BrandShare   float64               `json:"brand_share"`
	ShareChange  float64               `json:"share_change"`
	BrandGrowth  float64               `json:"brand_growth"`
	MarketGrowth float64               `json:"market_growth"`
	Position     metrics.Quadrant      `json:"market_position"`
	HasPrevious  bool                  `json:"has_previous"`
}

// Result is the output of one audit run. Sections whose reports are missing
// are nil.
type Result struct {
	SessionID     string    `json:"session_id"`
	Run           int64     `json:"run"`
	Marketplace   string    `json:"marketplace"`
	GeneratedAt   time.Time `json:"generated_at"`
	BreakevenACoS float64   `json:"breakeven_acos"`

	Hierarchy *hierarchy.Hierarchy      `json:"-"`
	Parents   []hierarchy.ParentSummary `json:"parents,omitempty"`
	Orphans   []hierarchy.ASINInfo      `json:"orphans,omitempty"`

	PPC       *PPCResult                `json:"ppc,omitempty"`
	SQP       *SQPResult                `json:"sqp,omitempty"`
	Inventory *metrics.InventorySummary `json:"inventory,omitempty"`
	Returns   *metrics.ReturnsSummary   `json:"returns,omitempty"`

	Scores      []portfolio.Score        `json:"scores"`
	Actions     map[portfolio.Action]int `json:"action_summary"`
	BrandHealth metrics.BrandHealth      `json:"brand_health"`

	Missing []reports.Kind `json:"missing_reports,omitempty"`
}

// Run executes the analysis pipeline over the loaded reports. Runs of one
// session are serialized; the result is also kept as LastResult.
func (s *Session) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.opts.Now()
	res, err := s.run(ctx, opts)
	scored := 0
	var missing []reports.Kind
	if res != nil {
		scored, missing = len(res.Scores), res.Missing
	}
	s.opts.Hooks.OnAuditRun(s.ID, scored, missing, s.opts.Now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	s.last = res
	s.touched = s.opts.Now()
	return res, nil
}

func (s *Session) run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.BreakevenACoS <= 0 {
		opts.BreakevenACoS = s.opts.BreakevenACoS
	}
	if opts.HeroTopN <= 0 {
		opts.HeroTopN = s.opts.HeroTopN
	}
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.WorstMinSpend <= 0 {
		opts.WorstMinSpend = defaultWorstMinSpend
	}
	d := &s.data

	s.runs++
	res := &Result{
		SessionID:     s.ID,
		Run:           s.runs,
		Marketplace:   s.Marketplace.Code,
		GeneratedAt:   s.opts.Now(),
		BreakevenACoS: opts.BreakevenACoS,
	}
	for _, k := range CoreKinds {
		if !d.has(k) {
			res.Missing = append(res.Missing, k)
		}
	}

	switch {
	case d.categoryListing != nil:
		res.Hierarchy, res.Orphans = hierarchy.FromCategoryListing(d.categoryListing)
	case d.business != nil:
		res.Hierarchy = hierarchy.FromBusinessReport(d.business)
	}
	if res.Hierarchy != nil {
		hierarchy.DetectHeroes(res.Hierarchy, d.business, opts.HeroTopN)
		res.Parents = res.Hierarchy.Summary()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.ppc != nil {
		res.PPC = analyzePPC(d.ppc, opts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.sqpBrand != nil {
		res.SQP = analyzeSQP(d.sqpBrand, d.sqpBrandPrevious)
	}
	if d.inventory != nil {
		inv := metrics.SummarizeInventory(d.inventory, opts.TopN)
		res.Inventory = &inv
	}
	if d.returns != nil {
		ret := metrics.SummarizeReturns(d.returns, d.business)
		res.Returns = &ret
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	marketGrowth := 0.0
	if res.SQP != nil {
		marketGrowth = res.SQP.MarketGrowth
	}
	res.Scores = portfolio.Build(portfolio.Inputs{
		BusinessReport:   d.business,
		PreviousBusiness: d.businessPrevious,
		COGS:             d.cogs,
		Fees:             d.fees,
		Inventory:        d.inventory,
		PPC:              d.ppc,
		SQPASIN:          d.sqpASIN,
		SQPASINPrevious:  d.sqpASINPrevious,
		MarketGrowth:     marketGrowth,
	})
	if res.Scores == nil {
		res.Scores = []portfolio.Score{}
	}
	res.Actions = portfolio.ActionSummary(res.Scores)
	res.BrandHealth = brandHealth(res, d.business, opts.BreakevenACoS)
	return res, nil
}

func analyzePPC(b *ppc.Bulk, opts RunOptions) *PPCResult {
	terms := ppc.AnalyzeSearchTerms(b.SearchTermRows(), opts.BreakevenACoS)
	out := &PPCResult{
		Summary:         ppc.Summarize(b),
		Waste:           ppc.DetectWaste(b, opts.BreakevenACoS),
		SearchTerms:     terms,
		Recommendations: ppc.CountRecommendations(terms),
		Opportunities:   ppc.FindOpportunities(b.SearchTermRows()),
		TopPerformers:   ppc.TopPerformers(b, opts.TopN),
		WorstPerformers: ppc.WorstPerformers(b, opts.WorstMinSpend, opts.TopN),
		LowConversion:   ppc.LowConversionTargets(b, ppc.DefaultLowConversion),
		Scaling:         ppc.ScalingCandidates(b, ppc.DefaultScaling),
		Campaigns:       make(map[string][]ppc.CampaignSummary),
	}
	for _, sheet := range b.CampaignSheets() {
		out.Campaigns[sheet.Kind.String()] = ppc.Campaigns(sheet)
	}
	return out
}

// purchaseShare is the brand's share of market purchases in percent.
func purchaseShare(t *table.Table) float64 {
	total := t.Sum(reports.SQPTotalColumn("Purchases"))
	if total == 0 {
		return 0
	}
	return t.Sum(reports.SQPCountColumn("Purchases", string(reports.ViewBrand))) / total * 100
}

func analyzeSQP(cur, prev *reports.SQPReport) *SQPResult {
	out := &SQPResult{BrandShare: purchaseShare(cur.Table)}
	out.Funnel, out.Bottleneck = metrics.SQPFunnel(cur.Table, reports.ViewBrand)
	if prev != nil {
		out.HasPrevious = true
		out.Changes = metrics.ComparePeriods(cur.Table, prev.Table, reports.ViewBrand)
		out.ShareChange = metrics.BrandShareChange(out.BrandShare, purchaseShare(prev.Table))
		brandCol := reports.SQPCountColumn("Purchases", string(reports.ViewBrand))
		out.BrandGrowth = metrics.BrandGrowth(cur.Table.Sum(brandCol), prev.Table.Sum(brandCol))
		totalCol := reports.SQPTotalColumn("Purchases")
		out.MarketGrowth = metrics.MarketGrowth(cur.Table.Sum(totalCol), prev.Table.Sum(totalCol))
	}
	out.Position = metrics.MarketPosition(out.BrandShare, out.MarketGrowth)
	return out
}

func brandHealth(res *Result, business *table.Table, breakeven float64) metrics.BrandHealth {
	in := metrics.BrandHealthInputs{}
	if business != nil {
		in.AvgConversionRate = business.Mean(reports.ColUnitSessPct)
	}
	if res.SQP != nil {
		in.MarketShare = res.SQP.BrandShare
		in.MarketShareChange = res.SQP.ShareChange
		in.BrandGrowth = res.SQP.BrandGrowth
		in.MarketGrowth = res.SQP.MarketGrowth
	}
	if res.Inventory != nil {
		in.InventoryHealthPct = res.Inventory.HealthyPct
	}
	if res.PPC != nil {
		sum := res.PPC.Summary
		cpc := 0.0
		if sum.TotalClicks > 0 {
			cpc = sum.TotalSpend / sum.TotalClicks
		}
		in.PPCEfficiency = metrics.PPCEfficiencyScore(sum.OverallACoS, breakeven, sum.OverallCVR, cpc, sum.TotalImpressions)
	}
	return metrics.BrandHealthScore(in)
}
