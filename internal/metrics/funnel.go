package metrics

import (
	"sort"

	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// FunnelRates are successive-stage conversion rates in percent.
type FunnelRates struct {
	CTR          float64 `json:"ctr"`
	CartRate     float64 `json:"cart_rate"`
	PurchaseRate float64 `json:"purchase_rate"`
	OverallCVR   float64 `json:"overall_cvr"`
}

func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Funnel computes click-through, cart-add, purchase-from-cart and overall
// conversion rates.
func Funnel(impressions, clicks, cartAdds, purchases float64) FunnelRates {
	return FunnelRates{
		CTR:          pct(clicks, impressions),
		CartRate:     pct(cartAdds, clicks),
		PurchaseRate: pct(purchases, cartAdds),
		OverallCVR:   pct(purchases, impressions),
	}
}

// Stage is one funnel step with conversions in percent.
type Stage struct {
	Name           string  `json:"name"`
	Total          float64 `json:"total"`
	StepConversion float64 `json:"step_conversion"`
	CumulativeConv float64 `json:"cumulative_conversion"`
}

// FunnelStages computes step and cumulative conversion for ordered stage
// totals and names the bottleneck, the stage with the lowest step conversion.
func FunnelStages(names []string, totals []float64) ([]Stage, string) {
	n := len(names)
	if len(totals) < n {
		n = len(totals)
	}
	stages := make([]Stage, n)
	bottleneck := ""
	lowest := 0.0
	for i := 0; i < n; i++ {
		s := Stage{Name: names[i], Total: totals[i], StepConversion: 100, CumulativeConv: 100}
		if i > 0 {
			s.StepConversion = pct(totals[i], totals[i-1])
			s.CumulativeConv = pct(totals[i], totals[0])
			if bottleneck == "" || s.StepConversion < lowest {
				bottleneck, lowest = s.Name, s.StepConversion
			}
		}
		stages[i] = s
	}
	return stages, bottleneck
}

// SQPFunnel sums the brand (or ASIN) funnel counts of an SQP table.
func SQPFunnel(t *table.Table, view reports.View) ([]Stage, string) {
	names := []string{"Impressions", "Clicks", "Cart Adds", "Purchases"}
	totals := make([]float64, len(names))
	for i, stage := range names {
		totals[i] = t.Sum(reports.SQPCountColumn(stage, string(view)))
	}
	return FunnelStages(names, totals)
}

// QueryChange compares one search query across two SQP periods.
type QueryChange struct {
	Query               string  `json:"query"`
	VolumeCurrent       float64 `json:"volume_current"`
	VolumePrevious      float64 `json:"volume_previous"`
	ImpressionsCurrent  float64 `json:"impressions_current"`
	ImpressionsPrevious float64 `json:"impressions_previous"`
	ShareCurrent        float64 `json:"share_current"`
	SharePrevious       float64 `json:"share_previous"`
	ClicksCurrent       float64 `json:"clicks_current"`
	ClicksPrevious      float64 `json:"clicks_previous"`
	PurchasesCurrent    float64 `json:"purchases_current"`
	PurchasesPrevious   float64 `json:"purchases_previous"`
	VolumeChangePct     float64 `json:"volume_change_pct"`
	ShareChange         float64 `json:"share_change_pp"`
	PurchasesChange     float64 `json:"purchases_change"`
}

type periodValues struct {
	volume, impressions, share, clicks, purchases float64
}

func indexPeriod(t *table.Table, prefix string) map[string]periodValues {
	out := make(map[string]periodValues)
	if t == nil {
		return out
	}
	for _, rec := range t.Records {
		q := rec.Str(reports.ColSearchQuery)
		if _, seen := out[q]; seen {
			continue
		}
		out[q] = periodValues{
			volume:      rec.Float(reports.ColSearchQueryVolume),
			impressions: rec.Float(reports.SQPCountColumn("Impressions", prefix)),
			share:       rec.Float(reports.SQPShareColumn("Impressions", prefix)),
			clicks:      rec.Float(reports.SQPCountColumn("Clicks", prefix)),
			purchases:   rec.Float(reports.SQPCountColumn("Purchases", prefix)),
		}
	}
	return out
}

// ComparePeriods outer-joins two SQP tables on the search query. A query
// missing from one period reads as zeros there. Duplicate queries keep their
// first row. The result is ordered by query.
func ComparePeriods(current, previous *table.Table, view reports.View) []QueryChange {
	prefix := string(view)
	cur := indexPeriod(current, prefix)
	prev := indexPeriod(previous, prefix)

	queries := make([]string, 0, len(cur)+len(prev))
	for q := range cur {
		queries = append(queries, q)
	}
	for q := range prev {
		if _, ok := cur[q]; !ok {
			queries = append(queries, q)
		}
	}
	sort.Strings(queries)

	out := make([]QueryChange, 0, len(queries))
	for _, q := range queries {
		c, p := cur[q], prev[q]
		out = append(out, QueryChange{
			Query:               q,
			VolumeCurrent:       c.volume,
			VolumePrevious:      p.volume,
			ImpressionsCurrent:  c.impressions,
			ImpressionsPrevious: p.impressions,
			ShareCurrent:        c.share,
			SharePrevious:       p.share,
			ClicksCurrent:       c.clicks,
			ClicksPrevious:      p.clicks,
			PurchasesCurrent:    c.purchases,
			PurchasesPrevious:   p.purchases,
			VolumeChangePct:     BrandGrowth(c.volume, p.volume),
			ShareChange:         BrandShareChange(c.share, p.share),
			PurchasesChange:     c.purchases - p.purchases,
		})
	}
	return out
}

func limit(v []QueryChange, n int) []QueryChange {
	if n >= 0 && len(v) > n {
		return v[:n]
	}
	return v
}

// TopGainers returns up to n comparisons with the largest share gain first.
// A negative n returns all.
func TopGainers(changes []QueryChange, n int) []QueryChange {
	out := append([]QueryChange(nil), changes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShareChange > out[j].ShareChange })
	return limit(out, n)
}

// TopLosers returns up to n comparisons with the largest share loss first.
func TopLosers(changes []QueryChange, n int) []QueryChange {
	out := append([]QueryChange(nil), changes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShareChange < out[j].ShareChange })
	return limit(out, n)
}
