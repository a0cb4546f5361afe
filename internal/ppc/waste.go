package ppc

import "sort"

// HighACoSCampaign is a campaign spending far beyond break-even.
type HighACoSCampaign struct {
	CampaignSummary
	ExcessSpend float64 `json:"excess_spend"`
}

// WasteReport lists wasted-spend findings for Sponsored Products.
//
// TotalEstimatedWaste is the excess spend of HighACoSCampaigns plus the raw
// spend of ZeroSales. LowCTR is reported but never added to the total.
type WasteReport struct {
	HighACoSCampaigns   []HighACoSCampaign  `json:"high_acos_campaigns"`
	ZeroSales           []EntityPerformance `json:"zero_sales_spend"`
	LowCTR              []EntityPerformance `json:"low_ctr_high_spend"`
	TotalEstimatedWaste float64             `json:"total_estimated_waste"`
}

// DetectWaste flags high-ACoS campaigns, keyword/target rows with spend but
// no sales, and high-impression rows with a click-through rate below 0.2%.
func DetectWaste(b *Bulk, breakeven float64) WasteReport {
	var w WasteReport
	s, ok := b.Sheet(SponsoredProducts)
	if !ok {
		return w
	}

	for _, c := range Campaigns(s) {
		if c.ACoS > breakeven*2 && c.Spend >= 50 {
			w.HighACoSCampaigns = append(w.HighACoSCampaigns, HighACoSCampaign{
				CampaignSummary: c,
				ExcessSpend:     c.Spend - c.Sales*breakeven/100,
			})
		}
	}
	sort.SliceStable(w.HighACoSCampaigns, func(i, j int) bool {
		return w.HighACoSCampaigns[i].ExcessSpend > w.HighACoSCampaigns[j].ExcessSpend
	})

	for _, p := range project(s, EntityKeyword, EntityProductTargeting) {
		if p.Spend >= 20 && p.Sales == 0 && p.Clicks >= 10 {
			w.ZeroSales = append(w.ZeroSales, p)
		}
		if p.Impressions >= 5000 && p.Spend >= 20 && p.CTR < 0.2 {
			w.LowCTR = append(w.LowCTR, p)
		}
	}
	sort.SliceStable(w.ZeroSales, func(i, j int) bool { return w.ZeroSales[i].Spend > w.ZeroSales[j].Spend })
	sort.SliceStable(w.LowCTR, func(i, j int) bool { return w.LowCTR[i].Impressions > w.LowCTR[j].Impressions })

	for _, c := range w.HighACoSCampaigns {
		w.TotalEstimatedWaste += c.ExcessSpend
	}
	for _, p := range w.ZeroSales {
		w.TotalEstimatedWaste += p.Spend
	}
	return w
}

// Summary aggregates campaign-level performance across campaign sheets.
type Summary struct {
	TotalSpend       float64 `json:"total_spend"`
	TotalSales       float64 `json:"total_sales"`
	TotalOrders      float64 `json:"total_orders"`
	TotalImpressions float64 `json:"total_impressions"`
	TotalClicks      float64 `json:"total_clicks"`
	OverallACoS      float64 `json:"overall_acos"`
	OverallROAS      float64 `json:"overall_roas"`
	OverallCTR       float64 `json:"overall_ctr"`
	OverallCVR       float64 `json:"overall_cvr"`
	SPSpend          float64 `json:"sp_spend"`
	SBSpend          float64 `json:"sb_spend"`
	SDSpend          float64 `json:"sd_spend"`
	CampaignCount    int     `json:"campaign_count"`
	ActiveCampaigns  int     `json:"active_campaigns"`
}

// Summarize sums campaign rows of every campaign sheet. A bulk workbook holds
// at most one sheet per ad type, so per-type spend is that sheet's total.
func Summarize(b *Bulk) Summary {
	var s Summary
	for _, sheet := range b.CampaignSheets() {
		var spend float64
		for _, r := range sheet.Entities(EntityCampaign) {
			spend += r.Spend
			s.TotalSales += r.Sales
			s.TotalOrders += r.Orders
			s.TotalImpressions += r.Impressions
			s.TotalClicks += r.Clicks
			s.CampaignCount++
			if r.State == "enabled" {
				s.ActiveCampaigns++
			}
		}
		s.TotalSpend += spend
		switch sheet.Kind {
		case SponsoredProducts:
			s.SPSpend = spend
		case SponsoredBrands:
			s.SBSpend = spend
		case SponsoredDisplay:
			s.SDSpend = spend
		}
	}
	if s.TotalSales > 0 {
		s.OverallACoS = s.TotalSpend / s.TotalSales * 100
	}
	if s.TotalSpend > 0 {
		s.OverallROAS = s.TotalSales / s.TotalSpend
	}
	if s.TotalImpressions > 0 {
		s.OverallCTR = s.TotalClicks / s.TotalImpressions * 100
	}
	if s.TotalClicks > 0 {
		s.OverallCVR = s.TotalOrders / s.TotalClicks * 100
	}
	return s
}
