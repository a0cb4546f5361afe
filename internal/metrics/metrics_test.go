package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

func TestGrossMarginEqualsBreakeven(t *testing.T) {
	inputs := [][4]float64{
		{25, 8, 5.5, 3.75},
		{0, 1, 1, 1},
		{10, 12, 3, 1.5},
		{99.99, 0, 0, 0},
	}
	for _, in := range inputs {
		require.Equal(t,
			GrossMarginPct(in[0], in[1], in[2], in[3]),
			BreakevenACoS(in[0], in[1], in[2], in[3]))
	}
	require.InDelta(t, 31.0, GrossMarginPct(25, 8, 5.5, 3.75), 1e-9)
	require.Zero(t, GrossMarginPct(0, 1, 1, 1))
}

func TestContributionMargin(t *testing.T) {
	require.InDelta(t, 7.75-2, ContributionMargin(25, 8, 5.5, 3.75, 20, 10), 1e-9)
	require.Zero(t, ContributionMargin(25, 8, 5.5, 3.75, 20, 0))
	require.InDelta(t, 23.0, ContributionMarginPct(5.75, 25), 1e-9)
	require.Zero(t, ContributionMarginPct(5, 0))
}

func TestZeroGuards(t *testing.T) {
	for _, sales := range []float64{100, 1, 0.5} {
		require.Zero(t, ROAS(0, sales))
	}
	for _, spend := range []float64{0, 10, 1000} {
		require.Zero(t, TrueACoS(spend, 0))
		require.Zero(t, TACoS(spend, 0))
	}
	require.Equal(t, 4.0, ROAS(25, 100))
	require.Equal(t, 25.0, TrueACoS(25, 100))
	require.True(t, math.IsInf(DaysOfSupply(100, 0), 1))
	require.InDelta(t, 60.0, DaysOfSupply(100, 50), 1e-9)
	require.Zero(t, SellThrough(0, 0))
	require.Equal(t, 25.0, SellThrough(25, 75))
}

func TestGrowth(t *testing.T) {
	require.Zero(t, BrandGrowth(0, 0))
	require.Equal(t, 100.0, BrandGrowth(5, 0))
	require.Equal(t, 50.0, BrandGrowth(150, 100))
	require.Zero(t, MarketGrowth(5, 0))
	require.Equal(t, -20.0, MarketGrowth(80, 100))
	require.Equal(t, -1.5, BrandShareChange(2, 3.5))
}

func TestMarketPosition(t *testing.T) {
	require.Equal(t, QuadrantStar, MarketPosition(10, 20))
	require.Equal(t, QuadrantQuestionMark, MarketPosition(9.9, 25))
	require.Equal(t, QuadrantCashCow, MarketPosition(15, 5))
	require.Equal(t, QuadrantDog, MarketPosition(1, 1))
}

func TestFunnel(t *testing.T) {
	f := Funnel(1000, 100, 20, 5)
	require.Equal(t, 10.0, f.CTR)
	require.Equal(t, 20.0, f.CartRate)
	require.Equal(t, 25.0, f.PurchaseRate)
	require.Equal(t, 0.5, f.OverallCVR)
	require.Equal(t, FunnelRates{}, Funnel(0, 0, 0, 0))
}

func TestFunnelStagesBottleneck(t *testing.T) {
	stages, bottleneck := FunnelStages([]string{"Impressions", "Clicks", "Orders"}, []float64{1000, 100, 50})
	require.Len(t, stages, 3)
	require.Equal(t, 100.0, stages[0].StepConversion)
	require.Equal(t, 10.0, stages[1].StepConversion)
	require.Equal(t, 50.0, stages[2].StepConversion)
	require.Equal(t, 5.0, stages[2].CumulativeConv)
	require.Equal(t, "Clicks", bottleneck)
}

func sqpTable(rows ...map[string]float64) *table.Table {
	t := table.New(nil)
	for _, r := range rows {
		rec := table.NewRecord()
		for k, v := range r {
			if k == "query" {
				continue
			}
			rec.SetFloat(k, v)
		}
		t.Append(rec)
	}
	return t
}

func withQuery(t *table.Table, queries ...string) *table.Table {
	for i, q := range queries {
		t.Records[i].SetText(reports.ColSearchQuery, q)
	}
	return t
}

func TestComparePeriods(t *testing.T) {
	imp := reports.SQPCountColumn("Impressions", "Brand")
	clk := reports.SQPCountColumn("Clicks", "Brand")
	pur := reports.SQPCountColumn("Purchases", "Brand")
	share := reports.SQPShareColumn("Impressions", "Brand")

	current := withQuery(sqpTable(
		map[string]float64{imp: 100, clk: 10, pur: 2, reports.ColSearchQueryVolume: 50},
		map[string]float64{imp: 40, share: 8, reports.ColSearchQueryVolume: 10},
	), "a", "new")
	previous := withQuery(sqpTable(
		map[string]float64{imp: 80, clk: 8, pur: 1},
		map[string]float64{imp: 30, share: 3, pur: 4, reports.ColSearchQueryVolume: 20},
	), "a", "gone")

	got := ComparePeriods(current, previous, reports.ViewBrand)
	require.Len(t, got, 3)
	require.Equal(t, []string{"a", "gone", "new"}, []string{got[0].Query, got[1].Query, got[2].Query})

	a := got[0]
	require.Equal(t, 1.0, a.PurchasesChange)
	require.Zero(t, a.ShareChange)
	require.Equal(t, 100.0, a.VolumeChangePct)
	require.Equal(t, 100.0, a.ImpressionsCurrent)
	require.Equal(t, 80.0, a.ImpressionsPrevious)

	gone := got[1]
	require.Equal(t, -3.0, gone.ShareChange)
	require.Equal(t, -4.0, gone.PurchasesChange)
	require.Equal(t, -100.0, gone.VolumeChangePct)

	require.Equal(t, 8.0, got[2].ShareChange)

	gainers := TopGainers(got, 1)
	require.Equal(t, "new", gainers[0].Query)
	losers := TopLosers(got, -1)
	require.Len(t, losers, 3)
	require.Equal(t, "gone", losers[0].Query)
	require.Equal(t, "a", got[0].Query, "input order is preserved")

	require.Empty(t, ComparePeriods(nil, nil, reports.ViewASIN))
}

func TestInventoryHealth(t *testing.T) {
	require.Equal(t, HealthLowStock, CategorizeInventoryHealth(10, 100, 0))
	require.Equal(t, HealthExcess, CategorizeInventoryHealth(200, 100, 0))
	require.Equal(t, HealthAging, CategorizeInventoryHealth(60, 60, 40))
	require.Equal(t, HealthHealthy, CategorizeInventoryHealth(60, 80, 20))
	require.Equal(t, HealthHealthy, CategorizeInventoryHealth(60, 0, 0))

	require.Equal(t, HealthLowStock, NormalizeHealthLabel(" low stock "))
	require.Equal(t, "Unknown", NormalizeHealthLabel("Unknown"))
}

func TestPPCEfficiencyScore(t *testing.T) {
	require.Equal(t, 100.0, PPCEfficiencyScore(10, 30, 20, 0.4, 20000))
	require.Equal(t, 5.0+5+5+2, PPCEfficiencyScore(100, 30, 1, 3, 10))
	require.Equal(t, 30.0+20+2, PPCEfficiencyScore(10, 0, 15, 0.5, 0))
}

func TestBrandHealthScore(t *testing.T) {
	h := BrandHealthScore(BrandHealthInputs{
		MarketShare:        12,
		MarketShareChange:  8,
		BrandGrowth:        30,
		MarketGrowth:       10,
		AvgConversionRate:  11,
		InventoryHealthPct: 75,
		PPCEfficiency:      80,
	})
	require.Equal(t, 25.0, h.Components[ComponentMarketPosition])
	require.Equal(t, 20.0, h.Components[ComponentConversionHealth])
	require.InDelta(t, 15.0, h.Components[ComponentInventoryHealth], 1e-9)
	require.InDelta(t, 24.0, h.Components[ComponentPPCEfficiency], 1e-9)
	require.InDelta(t, 84.0, h.Score, 1e-9)
	require.Equal(t, "A", h.Grade)

	low := BrandHealthScore(BrandHealthInputs{})
	require.Equal(t, 5.0, low.Score)
	require.Equal(t, "F", low.Grade)
}

func TestHealthGrade(t *testing.T) {
	cases := map[float64]string{95: "A+", 90: "A+", 85: "A", 70: "B+", 60: "B", 55: "C", 40: "D", 39.9: "F"}
	for score, want := range cases {
		require.Equal(t, want, HealthGrade(score), "score %v", score)
	}
}

func invRow(sku, status string, available, dos, aged181 float64) table.Record {
	rec := table.NewRecord()
	rec.SetText(reports.ColInvSKU, sku)
	rec.SetText(reports.ColInvASIN, "A-"+sku)
	if status != "" {
		rec.SetText(reports.ColInvHealth, status)
	}
	rec.SetFloat(reports.ColInvAvailable, available)
	rec.SetFloat(reports.ColInvDaysOfSupply, dos)
	rec.SetFloat(reports.ColInvAge181To270, aged181)
	rec.SetFloat(reports.ColInvStorageFee, 2.5)
	return rec
}

func TestSummarizeInventory(t *testing.T) {
	inv := table.New([]string{reports.ColInvSKU, "estimated-ais-181-210-days"})
	first := invRow("S1", "Healthy", 100, 60, 0)
	first.SetFloat("estimated-ais-181-210-days", 4)
	inv.Append(first)
	inv.Append(invRow("S2", "", 10, 5, 3))
	inv.Append(invRow("S3", "excess", 500, 300, 9))
	inv.Append(invRow("S4", "Healthy", 40, 50, 0))

	s := SummarizeInventory(inv, 1)
	require.Equal(t, 4, s.SKUs)
	require.Equal(t, 650.0, s.TotalUnits)
	require.Equal(t, 2, s.StatusCounts[HealthHealthy])
	require.Equal(t, 1, s.StatusCounts[HealthLowStock])
	require.Equal(t, 50.0, s.HealthyPct)
	require.Equal(t, 25.0, s.ExcessPct)
	require.Equal(t, 10.0, s.StorageFees)
	require.Equal(t, 4.0, s.AgedSurcharge)
	require.Len(t, s.AtRisk, 1)
	require.Equal(t, "S3", s.AtRisk[0].SKU)

	empty := SummarizeInventory(nil, 5)
	require.Zero(t, empty.SKUs)
	require.NotNil(t, empty.StatusCounts)
}

func TestSummarizeReturns(t *testing.T) {
	ret := table.New(nil)
	for _, r := range []struct {
		asin        string
		qty, refund float64
	}{{"A", 1, 10}, {"B", 3, 30}, {"A", 1, 12}, {"", 2, 5}} {
		rec := table.NewRecord()
		rec.SetText(reports.ColReturnASIN, r.asin)
		rec.SetFloat(reports.ColReturnQty, r.qty)
		rec.SetFloat(reports.ColReturnRefunded, r.refund)
		ret.Append(rec)
	}
	br := table.New(nil)
	rec := table.NewRecord()
	rec.SetText(reports.ColChildASIN, "A")
	rec.SetFloat(reports.ColUnitsOrdered, 20)
	br.Append(rec)

	s := SummarizeReturns(ret, br)
	require.Equal(t, 7.0, s.TotalReturned)
	require.Equal(t, 57.0, s.TotalRefunded)
	require.Len(t, s.ByASIN, 2)
	require.Equal(t, "B", s.ByASIN[0].ASIN)
	require.Zero(t, s.ByASIN[0].ReturnRate)
	require.Equal(t, 10.0, s.ByASIN[1].ReturnRate)
	require.Equal(t, 22.0, s.ByASIN[1].Refunded)

	require.Empty(t, SummarizeReturns(nil, br).ByASIN)
}
