package metrics

import (
	"sort"
	"strings"

	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// InventoryRowHealth labels one inventory row. The report's own health
// status wins when present; otherwise the row is categorized from days of
// supply and its age buckets.
func InventoryRowHealth(rec table.Record) string {
	if label := rec.Str(reports.ColInvHealth); label != "" {
		return NormalizeHealthLabel(label)
	}
	aged := 0.0
	for _, col := range reports.InventoryAgedColumns {
		aged += rec.Float(col)
	}
	return CategorizeInventoryHealth(rec.Float(reports.ColInvDaysOfSupply), rec.Float(reports.ColInvAge0To90), aged)
}

// AtRiskSKU is a SKU holding stock aged 181-270 days.
type AtRiskSKU struct {
	SKU       string  `json:"sku"`
	ASIN      string  `json:"asin"`
	AgedUnits float64 `json:"aged_units"`
}

// InventorySummary aggregates the FBA inventory report.
type InventorySummary struct {
	SKUs          int            `json:"skus"`
	TotalUnits    float64        `json:"total_units"`
	StatusCounts  map[string]int `json:"status_distribution"`
	HealthyPct    float64        `json:"healthy_pct"`
	ExcessPct     float64        `json:"excess_pct"`
	StorageFees   float64        `json:"storage_fees"`
	AgedSurcharge float64        `json:"aged_surcharge"`
	AtRisk        []AtRiskSKU    `json:"at_risk"`
}

// SummarizeInventory counts health labels, sums fee exposure and lists up to
// maxAtRisk SKUs with units aged 181-270 days, most aged first.
func SummarizeInventory(t *table.Table, maxAtRisk int) InventorySummary {
	s := InventorySummary{StatusCounts: map[string]int{}}
	if t.Empty() {
		return s
	}
	var surcharge []string
	for _, c := range t.Columns {
		if strings.HasPrefix(c, reports.ColInvAgedSurchargePrefix) {
			surcharge = append(surcharge, c)
		}
	}
	for _, rec := range t.Records {
		s.SKUs++
		s.TotalUnits += rec.Float(reports.ColInvAvailable)
		s.StatusCounts[InventoryRowHealth(rec)]++
		s.StorageFees += rec.Float(reports.ColInvStorageFee)
		for _, c := range surcharge {
			s.AgedSurcharge += rec.Float(c)
		}
		if aged := rec.Float(reports.ColInvAge181To270); aged > 0 {
			s.AtRisk = append(s.AtRisk, AtRiskSKU{
				SKU:       rec.Str(reports.ColInvSKU),
				ASIN:      rec.Str(reports.ColInvASIN),
				AgedUnits: aged,
			})
		}
	}
	s.HealthyPct = pct(float64(s.StatusCounts[HealthHealthy]), float64(s.SKUs))
	s.ExcessPct = pct(float64(s.StatusCounts[HealthExcess]), float64(s.SKUs))
	sort.SliceStable(s.AtRisk, func(i, j int) bool { return s.AtRisk[i].AgedUnits > s.AtRisk[j].AgedUnits })
	if maxAtRisk >= 0 && len(s.AtRisk) > maxAtRisk {
		s.AtRisk = s.AtRisk[:maxAtRisk]
	}
	return s
}

// ASINReturns is the return activity of one ASIN.
type ASINReturns struct {
	ASIN       string  `json:"asin"`
	Returned   float64 `json:"returned_units"`
	Refunded   float64 `json:"refunded_amount"`
	Ordered    float64 `json:"ordered_units"`
	ReturnRate float64 `json:"return_rate"`
}

// ReturnsSummary aggregates the returns report.
type ReturnsSummary struct {
	TotalReturned float64       `json:"total_returned_units"`
	TotalRefunded float64       `json:"total_refunded"`
	ByASIN        []ASINReturns `json:"by_asin"`
}

// SummarizeReturns totals returns per ASIN and rates them against units
// ordered in the business report (nil business report leaves rates at 0).
// ASINs are ordered by returned units, highest first.
func SummarizeReturns(returns, business *table.Table) ReturnsSummary {
	var s ReturnsSummary
	if returns.Empty() {
		return s
	}
	ordered := make(map[string]float64)
	if business != nil {
		for _, rec := range business.Records {
			ordered[rec.Str(reports.ColChildASIN)] += rec.Float(reports.ColUnitsOrdered)
		}
	}
	idx := make(map[string]int)
	for _, rec := range returns.Records {
		asin := rec.Str(reports.ColReturnASIN)
		qty := rec.Float(reports.ColReturnQty)
		refund := rec.Float(reports.ColReturnRefunded)
		s.TotalReturned += qty
		s.TotalRefunded += refund
		if asin == "" {
			continue
		}
		i, ok := idx[asin]
		if !ok {
			i = len(s.ByASIN)
			idx[asin] = i
			s.ByASIN = append(s.ByASIN, ASINReturns{ASIN: asin, Ordered: ordered[asin]})
		}
		s.ByASIN[i].Returned += qty
		s.ByASIN[i].Refunded += refund
	}
	for i := range s.ByASIN {
		s.ByASIN[i].ReturnRate = pct(s.ByASIN[i].Returned, s.ByASIN[i].Ordered)
	}
	sort.SliceStable(s.ByASIN, func(i, j int) bool { return s.ByASIN[i].Returned > s.ByASIN[j].Returned })
	return s
}
