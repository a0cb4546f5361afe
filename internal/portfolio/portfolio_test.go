package portfolio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

func TestClassifyBoundaries(t *testing.T) {
	a, why := Classify(80, 0, 0)
	require.Equal(t, ActionInvest, a)
	require.Equal(t, "Top performer - maximize investment", why)

	a, why = Classify(79.9, 17.9, 25)
	require.Equal(t, ActionMaintain, a)
	require.Equal(t, "Solid performer - maintain current strategy", why)

	cases := []struct {
		total, growth, prof float64
		want                Action
		why                 string
	}{
		{70, 18, 0, ActionInvest, "Strong growth trajectory - increase investment"},
		{55, 20, 18, ActionHarvest, "Profitable but limited growth - optimize for cash"},
		{55, 15, 17, ActionOptimize, "Growth potential but needs optimization"},
		{50, 0, 0, ActionOptimize, "Needs improvement across metrics"},
		{40, 0, 12, ActionHarvest, "Marginally profitable - reduce investment, harvest"},
		{35, 25, 11.9, ActionExit, "Underperforming - consider discontinuation"},
		{34.9, 25, 25, ActionExit, "Poor performance - recommend exit"},
	}
	for _, c := range cases {
		a, why := Classify(c.total, c.growth, c.prof)
		require.Equal(t, c.want, a, "total %v", c.total)
		require.Equal(t, c.why, why)
	}
}

func TestRulesEndWithCatchAll(t *testing.T) {
	last := Rules[len(Rules)-1]
	require.True(t, last.Match(-1, -1, -1))
	require.Equal(t, ActionExit, last.Action)
}

func TestProfitabilityScore(t *testing.T) {
	require.Equal(t, 25.0, ProfitabilityScore(50, 10, 50, 20))
	require.Equal(t, 2.0+5+2, ProfitabilityScore(10, 0, 30, 0))
	require.Equal(t, 2.0, ProfitabilityScore(5, 40, 0, 1))
	require.Equal(t, 6.0+0+0, ProfitabilityScore(30, 40, 30, -1))
	require.Equal(t, 4.0+3+3, ProfitabilityScore(20, 37.5, 30, 5))
}

func TestGrowthScore(t *testing.T) {
	require.Equal(t, 25.0, GrowthScore(100, 0))
	require.Equal(t, 5.0+4, GrowthScore(0, 0))
	require.Equal(t, 3.0+0, GrowthScore(-10, 5))
	require.Equal(t, 0.0, GrowthScore(-50, 0))
}

func TestMarketAndEfficiencyScores(t *testing.T) {
	require.Equal(t, 25.0, MarketScore(20, 5, 10))
	require.Equal(t, 1.0+0+1, MarketScore(0, -3, 0))
	require.Equal(t, 25.0, EfficiencyScore(20, 95, "Healthy"))
	require.Equal(t, 1.0+1+4, EfficiencyScore(0, 0, "Unknown"))
	require.Equal(t, 6.0+5+1, EfficiencyScore(10, 80, "Aging"))
}

func brRow(asin string, sales, units, cvr, buyBox float64) table.Record {
	rec := table.NewRecord()
	rec.SetText(reports.ColChildASIN, asin)
	rec.SetText(reports.ColTitle, "Widget "+asin)
	rec.SetFloat(reports.ColOrderedSales, sales)
	rec.SetFloat(reports.ColUnitsOrdered, units)
	rec.SetFloat(reports.ColUnitSessPct, cvr)
	rec.SetFloat(reports.ColBuyBoxPct, buyBox)
	return rec
}

func tableOf(recs ...table.Record) *table.Table {
	t := table.New(nil)
	for _, r := range recs {
		t.Append(r)
	}
	return t
}

func sqpView(asin string, purchases, totalPurchases, impressions, totalImpressions float64) *reports.SQPReport {
	rec := table.NewRecord()
	rec.SetText(reports.ColSearchQuery, "widget")
	rec.SetFloat(reports.SQPCountColumn("Purchases", "ASIN"), purchases)
	rec.SetFloat(reports.SQPTotalColumn("Purchases"), totalPurchases)
	rec.SetFloat(reports.SQPCountColumn("Impressions", "ASIN"), impressions)
	rec.SetFloat(reports.SQPTotalColumn("Impressions"), totalImpressions)
	return &reports.SQPReport{Table: tableOf(rec), Metadata: reports.Metadata{"asin": asin}}
}

func TestBuild(t *testing.T) {
	fee := table.NewRecord()
	fee.SetText(reports.ColFeeASIN, "A")
	fee.SetFloat(reports.ColFeeYourPrice, 40)
	fee.SetFloat(reports.ColFeeReferral, 6)
	fee.SetFloat(reports.ColFeeFulfillment, 4)

	cost := table.NewRecord()
	cost.SetText(reports.ColCOGSASIN, "A")
	cost.SetFloat(reports.ColCOGSCost, 10)

	inv := table.NewRecord()
	inv.SetText(reports.ColInvASIN, "A")
	inv.SetText(reports.ColInvHealth, "healthy")
	inv.SetFloat(reports.ColInvDaysOfSupply, 45)

	bulk := ppc.NewBulk()
	bulk.Set(&ppc.Sheet{Kind: ppc.SponsoredProducts, Rows: []ppc.Row{
		{Entity: ppc.EntityProductAd, ASIN: "A", Spend: 10, Sales: 100},
	}})

	scores := Build(Inputs{
		BusinessReport:   tableOf(brRow("B", 0, 0, 0, 0), brRow("A", 200, 10, 25, 98)),
		PreviousBusiness: tableOf(brRow("A", 50, 2, 0, 0)),
		COGS:             tableOf(cost),
		Fees:             tableOf(fee),
		Inventory:        tableOf(inv),
		PPC:              bulk,
		SQPASIN:          []*reports.SQPReport{sqpView("A", 30, 100, 150, 1000)},
		SQPASINPrevious:  []*reports.SQPReport{sqpView("A", 20, 100, 100, 1000)},
		MarketGrowth:     10,
	})
	require.Len(t, scores, 2)

	a := scores[0]
	require.Equal(t, "A", a.ASIN)
	require.Equal(t, 50.0, a.GrossMargin)
	require.Equal(t, a.GrossMargin, a.BreakevenACoS)
	require.Equal(t, 10.0, a.ACoS)
	require.InDelta(t, 47.5, a.ContributionMargin, 1e-9)
	require.Equal(t, 300.0, a.SalesTrend)
	require.InDelta(t, 30.0, a.MarketShare, 1e-9)
	require.InDelta(t, 10.0, a.MarketShareChange, 1e-9)
	require.InDelta(t, 15.0, a.SearchVisibility, 1e-9)
	require.Equal(t, "Healthy", a.InventoryHealth)
	require.Equal(t, 100.0, a.Total)
	require.Equal(t, ActionInvest, a.Action)

	b := scores[1]
	require.Equal(t, "B", b.ASIN)
	require.Equal(t, HealthUnknown, b.InventoryHealth)
	require.Equal(t, 2.0, b.Profitability)
	require.Equal(t, 7.0, b.Growth)
	require.Equal(t, 6.0, b.Market)
	require.Equal(t, 6.0, b.Efficiency)
	require.Equal(t, ActionExit, b.Action)
	require.Equal(t, "Poor performance - recommend exit", b.Rationale)

	summary := ActionSummary(scores)
	require.Len(t, summary, 5)
	require.Equal(t, 1, summary[ActionInvest])
	require.Equal(t, 1, summary[ActionExit])
	require.Zero(t, summary[ActionHarvest])

	require.Len(t, Filter(scores, ActionExit), 1)
	require.Len(t, Filter(scores), 2)
}

func TestBuildWithoutBusinessReport(t *testing.T) {
	require.Empty(t, Build(Inputs{}))
	summary := ActionSummary(nil)
	require.Len(t, summary, 5)
}

func TestBuildInventoryFallsBackToAgeing(t *testing.T) {
	inv := table.NewRecord()
	inv.SetText(reports.ColInvASIN, "A")
	inv.SetFloat(reports.ColInvDaysOfSupply, 5)
	scores := Build(Inputs{
		BusinessReport: tableOf(brRow("A", 10, 1, 0, 0)),
		Inventory:      tableOf(inv),
	})
	require.Len(t, scores, 1)
	require.Equal(t, "Low Stock", scores[0].InventoryHealth)
	require.Equal(t, 5.0, scores[0].DaysOfSupply)
}
