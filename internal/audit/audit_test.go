package audit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/internal/metrics"
	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/reports"
)

const businessCSV = "(Parent) ASIN,(Child) ASIN,Title,SKU,Sessions - Total,Unit Session Percentage,Featured Offer (Buy Box) Percentage,Units Ordered,Ordered Product Sales\n" +
	"P1,A1,Widget A,SKU-A,100,20%,98%,10,$200.00\n" +
	"P1,A2,Widget B,SKU-B,50,2%,60%,1,$10.00\n"

const feeCSV = "sku,asin,your-price,estimated-referral-fee-per-unit,expected-domestic-fulfilment-fee-per-unit\n" +
	"SKU-A,A1,$20.00,3.00,2.00\n"

const cogsCSV = "ASIN,Cost\nA1,5.00\n"

func sqpBrand(brandPurchases, totalPurchases int) string {
	return `"Brand=[""Acme""]","Select year=[""2024""]"` + "\n" +
		"Search Query,Search Query Volume,Impressions: Total Count,Impressions: Brand Count,Clicks: Brand Count,Cart Adds: Brand Count,Purchases: Total Count,Purchases: Brand Count\n" +
		"ball,1000,5000,250,50,20," + strconv.Itoa(totalPurchases) + "," + strconv.Itoa(brandPurchases) + "\n"
}

type recorder struct {
	mu     sync.Mutex
	loads  []reports.Kind
	failed int
	runs   int
	runErr error
}

func (r *recorder) OnReportLoaded(_ string, kind reports.Kind, _ string, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, kind)
	if err != nil {
		r.failed++
	}
}

func (r *recorder) OnAuditRun(_ string, _ int, _ []reports.Kind, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.runErr = err
}

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func TestLoadBatchIsolatesFailures(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Hooks: rec})
	results := s.LoadBatch(context.Background(), []Upload{
		{Kind: reports.KindBusinessReport, Name: "br.csv", Reader: strings.NewReader(businessCSV)},
		{Kind: reports.KindCOGS, Name: "cogs.csv", Reader: strings.NewReader("")},
		{Kind: reports.KindInventory, Name: "inv.csv", Previous: true, Reader: strings.NewReader("sku\nX\n")},
	})
	require.Len(t, results, 3)

	require.True(t, results[0].OK())
	require.Equal(t, 2, results[0].Rows)
	require.False(t, results[1].OK())
	require.True(t, errors.Is(results[1].Err, reports.ErrEmptyInput))
	require.NotEmpty(t, results[1].Error)
	require.True(t, errors.Is(results[2].Err, ErrNoPreviousPeriod))

	require.True(t, s.Has(reports.KindBusinessReport))
	require.False(t, s.Has(reports.KindCOGS))
	require.False(t, s.Has(reports.KindInventory))
	require.Len(t, s.Loaded(), 3)
	require.Equal(t, []reports.Kind{reports.KindBusinessReport, reports.KindCOGS, reports.KindInventory}, rec.loads)
	require.Equal(t, 2, rec.failed)
}

func TestRunScoresBusinessReport(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Hooks: rec, Marketplace: "de"})
	ctx := context.Background()
	require.True(t, s.Load(ctx, reports.KindBusinessReport, "br.csv", strings.NewReader(businessCSV)).OK())
	require.True(t, s.Load(ctx, reports.KindFeeReport, "fees.csv", strings.NewReader(feeCSV)).OK())
	require.True(t, s.Load(ctx, reports.KindCOGS, "cogs.csv", strings.NewReader(cogsCSV)).OK())

	res, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, s.ID, res.SessionID)
	require.Equal(t, int64(1), res.Run)
	require.Equal(t, "DE", res.Marketplace)
	require.Equal(t, 30.0, res.BreakevenACoS)

	require.Len(t, res.Parents, 1)
	require.Equal(t, 2, res.Parents[0].ChildCount)
	require.Equal(t, 210.0, res.Parents[0].TotalSales)
	require.Equal(t, []string{"A1", "A2"}, res.Hierarchy.HeroASINs())

	require.Len(t, res.Scores, 2)
	require.Equal(t, "A1", res.Scores[0].ASIN)
	require.Equal(t, 50.0, res.Scores[0].GrossMargin)
	total := 0
	for _, n := range res.Actions {
		total += n
	}
	require.Equal(t, 2, total)

	require.Nil(t, res.PPC)
	require.Nil(t, res.SQP)
	require.Equal(t, []reports.Kind{reports.KindPPCBulk, reports.KindSQPBrand, reports.KindSQPASIN, reports.KindInventory}, res.Missing)
	require.Equal(t, 20.0, res.BrandHealth.Components[metrics.ComponentConversionHealth])

	require.Same(t, res, s.LastResult())
	require.Equal(t, 1, rec.runs)
	require.NoError(t, rec.runErr)

	again, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), again.Run)
	require.Equal(t, res.Scores, again.Scores)
}

func TestRunWithoutBusinessReport(t *testing.T) {
	s := NewSession(Options{})
	res, err := s.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.Scores)
	require.Empty(t, res.Scores)
	require.Len(t, res.Actions, len(portfolio.Actions))
	require.Equal(t, CoreKinds, res.Missing)
	require.Nil(t, res.Hierarchy)
}

func TestRunComparesSQPPeriods(t *testing.T) {
	s := NewSession(Options{})
	ctx := context.Background()
	require.True(t, s.Load(ctx, reports.KindSQPBrand, "cur.csv", strings.NewReader(sqpBrand(12, 100))).OK())
	require.True(t, s.LoadPrevious(ctx, reports.KindSQPBrand, "prev.csv", strings.NewReader(sqpBrand(8, 80))).OK())

	res, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.SQP)
	require.True(t, res.SQP.HasPrevious)
	require.InDelta(t, 12.0, res.SQP.BrandShare, 1e-9)
	require.InDelta(t, 2.0, res.SQP.ShareChange, 1e-9)
	require.InDelta(t, 50.0, res.SQP.BrandGrowth, 1e-9)
	require.InDelta(t, 25.0, res.SQP.MarketGrowth, 1e-9)
	require.Equal(t, metrics.QuadrantStar, res.SQP.Position)
	require.Len(t, res.SQP.Changes, 1)
	require.Len(t, res.SQP.Funnel, 4)
	require.Equal(t, "Clicks", res.SQP.Bottleneck)
}

func TestRunHonoursCancellation(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Hooks: rec})
	require.True(t, s.Load(context.Background(), reports.KindBusinessReport, "br.csv", strings.NewReader(businessCSV)).OK())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
	require.Nil(t, s.LastResult())
	require.ErrorIs(t, rec.runErr, context.Canceled)
}

func TestSQPASINViewsReplacePerASIN(t *testing.T) {
	view := func(asin string) string {
		return `"ASIN or Product=[""` + asin + `""]"` + "\nSearch Query,Purchases: ASIN Count\nball,1\n"
	}
	s := NewSession(Options{})
	ctx := context.Background()
	s.Load(ctx, reports.KindSQPASIN, "a.csv", strings.NewReader(view("A1")))
	s.Load(ctx, reports.KindSQPASIN, "b.csv", strings.NewReader(view("A2")))
	s.Load(ctx, reports.KindSQPASIN, "a2.csv", strings.NewReader(view("A1")))
	require.Len(t, s.data.sqpASIN, 2)
	require.Equal(t, "A1", s.data.sqpASIN[0].Metadata["asin"])
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	st := NewStore(2, Options{Now: tickingClock()})
	first := st.Create()
	second := st.Create()
	third := st.Create()
	require.Equal(t, 2, st.Len())

	_, err := st.Get(first.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	got, err := st.Get(second.ID)
	require.NoError(t, err)
	require.Same(t, second, got)

	got, err = st.GetOrCreate(third.ID)
	require.NoError(t, err)
	require.Same(t, third, got)
	fresh, err := st.GetOrCreate("")
	require.NoError(t, err)
	require.NotEqual(t, third.ID, fresh.ID)
	require.Equal(t, 2, st.Len())

	require.True(t, st.Delete(fresh.ID))
	require.False(t, st.Delete(fresh.ID))
	require.Equal(t, 1, st.Len())
}
