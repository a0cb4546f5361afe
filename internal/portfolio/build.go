package portfolio

import (
	"sort"

	"github.com/vinodismyname/sellerscope/internal/metrics"
	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// HealthUnknown labels an ASIN with no inventory row.
const HealthUnknown = "Unknown"

// Score is the full keep/kill assessment of one ASIN.
type Score struct {
	ASIN  string `json:"asin"`
	Title string `json:"title"`

	SalesRevenue float64 `json:"sales_revenue"`
	SalesTrend   float64 `json:"sales_trend"`
	UnitsSold    int     `json:"units_sold"`

	GrossMargin        float64 `json:"gross_margin"`
	ContributionMargin float64 `json:"contribution_margin"`
	ACoS               float64 `json:"acos"`
	BreakevenACoS      float64 `json:"breakeven_acos"`

	MarketShare       float64 `json:"market_share"`
	MarketShareChange float64 `json:"market_share_change"`
	SearchVisibility  float64 `json:"search_visibility"`

	ConversionRate float64 `json:"conversion_rate"`
	BuyBoxPct      float64 `json:"buy_box_percentage"`

	DaysOfSupply    float64 `json:"days_of_supply"`
	InventoryHealth string  `json:"inventory_health"`

	Profitability float64 `json:"profitability_score"`
	Growth        float64 `json:"growth_score"`
	Market        float64 `json:"market_score"`
	Efficiency    float64 `json:"efficiency_score"`
	Total         float64 `json:"total_score"`

	Action    Action `json:"action"`
	Rationale string `json:"rationale"`
}

// Inputs are the tables scoring draws on. Only BusinessReport is required;
// every other source may be nil and its metrics then read as zero.
type Inputs struct {
	BusinessReport   *table.Table
	PreviousBusiness *table.Table
	COGS             *table.Table
	Fees             *table.Table
	Inventory        *table.Table
	PPC              *ppc.Bulk
	SQPASIN          []*reports.SQPReport
	SQPASINPrevious  []*reports.SQPReport
	MarketGrowth     float64
}

type fees struct {
	price, referral, fba float64
}

type sqpShare struct {
	share, visibility float64
}

func textIndex(t *table.Table, key string) map[string]table.Record {
	out := make(map[string]table.Record)
	if t == nil {
		return out
	}
	for _, rec := range t.Records {
		if k := rec.Str(key); k != "" {
			out[k] = rec
		}
	}
	return out
}

// SQPShares sums an ASIN-view report into purchase share and impression
// share, both in percent of the market totals.
func SQPShares(r *reports.SQPReport) (share, visibility float64) {
	if r == nil {
		return 0, 0
	}
	t, prefix := r.Table, string(reports.ViewASIN)
	share = ratioPct(t.Sum(reports.SQPCountColumn("Purchases", prefix)), t.Sum(reports.SQPTotalColumn("Purchases")))
	visibility = ratioPct(t.Sum(reports.SQPCountColumn("Impressions", prefix)), t.Sum(reports.SQPTotalColumn("Impressions")))
	return share, visibility
}

func ratioPct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

func sqpIndex(views []*reports.SQPReport) map[string]sqpShare {
	out := make(map[string]sqpShare)
	for _, v := range views {
		if v == nil {
			continue
		}
		asin := v.Metadata["asin"]
		if asin == "" {
			continue
		}
		s, vis := SQPShares(v)
		out[asin] = sqpShare{share: s, visibility: vis}
	}
	return out
}

// Build scores every business-report row and returns the scores by total,
// highest first.
func Build(in Inputs) []Score {
	if in.BusinessReport.Empty() {
		return nil
	}
	cogs := textIndex(in.COGS, reports.ColCOGSASIN)
	feeRows := textIndex(in.Fees, reports.ColFeeASIN)
	invRows := textIndex(in.Inventory, reports.ColInvASIN)
	previous := textIndex(in.PreviousBusiness, reports.ColChildASIN)
	ads := ppc.SpendByASIN(in.PPC)
	sqpCur := sqpIndex(in.SQPASIN)
	sqpPrev := sqpIndex(in.SQPASINPrevious)

	out := make([]Score, 0, in.BusinessReport.Len())
	for _, rec := range in.BusinessReport.Records {
		asin := rec.Str(reports.ColChildASIN)
		if asin == "" {
			continue
		}
		sales := rec.Float(reports.ColOrderedSales)
		units := rec.Float(reports.ColUnitsOrdered)

		f := fees{}
		if fr, ok := feeRows[asin]; ok {
			f = fees{
				price:    fr.Float(reports.ColFeeYourPrice),
				referral: fr.Float(reports.ColFeeReferral),
				fba:      fr.Float(reports.ColFeeFulfillment),
			}
		}
		price := f.price
		if price == 0 && units > 0 {
			price = sales / units
		}
		cost := cogs[asin].Float(reports.ColCOGSCost)

		s := Score{
			ASIN:           asin,
			Title:          shorten(rec.Str(reports.ColTitle)),
			SalesRevenue:   sales,
			UnitsSold:      int(units),
			ConversionRate: rec.Float(reports.ColUnitSessPct),
			BuyBoxPct:      rec.Float(reports.ColBuyBoxPct),
			GrossMargin:    metrics.GrossMarginPct(price, cost, f.fba, f.referral),
			BreakevenACoS:  metrics.BreakevenACoS(price, cost, f.fba, f.referral),
		}
		s.InventoryHealth = HealthUnknown

		ad := ads[asin]
		s.ACoS = ad.ACoS()
		cm := metrics.ContributionMargin(price, cost, f.fba, f.referral, ad.Spend, units)
		s.ContributionMargin = metrics.ContributionMarginPct(cm, price)

		if in.PreviousBusiness != nil {
			s.SalesTrend = metrics.BrandGrowth(sales, previous[asin].Float(reports.ColOrderedSales))
		}
		if inv, ok := invRows[asin]; ok {
			s.DaysOfSupply = inv.Float(reports.ColInvDaysOfSupply)
			s.InventoryHealth = metrics.InventoryRowHealth(inv)
		}
		if cur, ok := sqpCur[asin]; ok {
			s.MarketShare = cur.share
			s.SearchVisibility = cur.visibility
			if prev, ok := sqpPrev[asin]; ok {
				s.MarketShareChange = metrics.BrandShareChange(cur.share, prev.share)
			}
		}

		s.Profitability = ProfitabilityScore(s.GrossMargin, s.ACoS, s.BreakevenACoS, s.ContributionMargin)
		s.Growth = GrowthScore(s.SalesTrend, in.MarketGrowth)
		s.Market = MarketScore(s.MarketShare, s.MarketShareChange, s.SearchVisibility)
		s.Efficiency = EfficiencyScore(s.ConversionRate, s.BuyBoxPct, s.InventoryHealth)
		s.Total = s.Profitability + s.Growth + s.Market + s.Efficiency
		s.Action, s.Rationale = Classify(s.Total, s.Growth, s.Profitability)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func shorten(title string) string {
	r := []rune(title)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return title
}

// ActionSummary counts scores per action. Every action is present.
func ActionSummary(scores []Score) map[Action]int {
	out := make(map[Action]int, len(Actions))
	for _, a := range Actions {
		out[a] = 0
	}
	for _, s := range scores {
		out[s.Action]++
	}
	return out
}

// Filter keeps the scores whose action is in actions; no actions keeps all.
func Filter(scores []Score, actions ...Action) []Score {
	if len(actions) == 0 {
		return scores
	}
	want := make(map[Action]bool, len(actions))
	for _, a := range actions {
		want[a] = true
	}
	var out []Score
	for _, s := range scores {
		if want[s.Action] {
			out = append(out, s)
		}
	}
	return out
}
