package ppc

import (
	"sort"
	"strings"
)

// CampaignNameParts is what a campaign naming convention reveals.
type CampaignNameParts struct {
	AdType    string `json:"ad_type,omitempty"`
	MatchType string `json:"match_type,omitempty"`
	Targeting string `json:"targeting,omitempty"`
	BrandCode string `json:"brand_code,omitempty"`
	Objective string `json:"objective,omitempty"`
}

// ParseCampaignName recognises "SP-Exact-keyword" style prefixes and
// "BRAND | Objective | ..." pipe-separated names.
func ParseCampaignName(name string) CampaignNameParts {
	var p CampaignNameParts
	lower := strings.ToLower(name)

	switch {
	case strings.HasPrefix(lower, "sp-") || strings.Contains(lower, "sponsored products"):
		p.AdType = "SP"
	case strings.HasPrefix(lower, "sb-") || strings.Contains(lower, "sponsored brands"):
		p.AdType = "SB"
	case strings.HasPrefix(lower, "sd-") || strings.Contains(lower, "sponsored display"):
		p.AdType = "SD"
	}

	// Match type wins over targeting when both appear.
	switch {
	case strings.Contains(lower, "exact"):
		p.MatchType = "Exact"
	case strings.Contains(lower, "phrase"):
		p.MatchType = "Phrase"
	case strings.Contains(lower, "broad"):
		p.MatchType = "Broad"
	case strings.Contains(lower, "auto"):
		p.Targeting = "Auto"
	case strings.Contains(lower, "asin") || strings.Contains(lower, "product"):
		p.Targeting = "Product"
	}

	if strings.Contains(name, "|") {
		parts := strings.Split(name, "|")
		if len(parts) >= 2 {
			p.BrandCode = strings.TrimSpace(parts[0])
			p.Objective = strings.TrimSpace(parts[1])
		}
	}
	return p
}

// CampaignSummary is the campaign-level view of a campaign sheet.
type CampaignSummary struct {
	Source          SheetKind `json:"source"`
	CampaignID      string    `json:"campaign_id"`
	CampaignName    string    `json:"campaign_name"`
	AdType          string    `json:"ad_type"`
	MatchType       string    `json:"match_type,omitempty"`
	AutoManual      string    `json:"auto_manual"`
	State           string    `json:"state"`
	TargetingType   string    `json:"targeting_type,omitempty"`
	BiddingStrategy string    `json:"bidding_strategy,omitempty"`
	DailyBudget     float64   `json:"daily_budget"`
	Impressions     float64   `json:"impressions"`
	Clicks          float64   `json:"clicks"`
	CTR             float64   `json:"ctr"`
	Spend           float64   `json:"spend"`
	Sales           float64   `json:"sales"`
	Orders          float64   `json:"orders"`
	CVR             float64   `json:"cvr"`
	ACoS            float64   `json:"acos"`
	ROAS            float64   `json:"roas"`
	CPC             float64   `json:"cpc"`
}

// Campaigns projects the campaign rows of s, sorted by spend descending.
func Campaigns(s *Sheet) []CampaignSummary {
	rows := s.Entities(EntityCampaign)
	out := make([]CampaignSummary, 0, len(rows))
	for _, r := range rows {
		parts := ParseCampaignName(r.CampaignName)
		adType := parts.AdType
		if adType == "" {
			adType = s.Kind.AdType()
		}
		autoManual := "Manual"
		if parts.Targeting == "Auto" {
			autoManual = "Auto"
		}
		out = append(out, CampaignSummary{
			Source:          s.Kind,
			CampaignID:      r.CampaignID,
			CampaignName:    r.CampaignName,
			AdType:          adType,
			MatchType:       parts.MatchType,
			AutoManual:      autoManual,
			State:           r.State,
			TargetingType:   r.TargetingType,
			BiddingStrategy: r.BiddingStrategy,
			DailyBudget:     r.DailyBudget,
			Impressions:     r.Impressions,
			Clicks:          r.Clicks,
			CTR:             r.CTR,
			Spend:           r.Spend,
			Sales:           r.Sales,
			Orders:          r.Orders,
			CVR:             r.CVR,
			ACoS:            r.ACoS,
			ROAS:            r.ROAS,
			CPC:             r.CPC,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	return out
}

// EntityPerformance is the shared projection for ad groups, keywords and
// product targets.
type EntityPerformance struct {
	Source      SheetKind  `json:"source"`
	Entity      EntityType `json:"entity"`
	Campaign    string     `json:"campaign"`
	AdGroup     string     `json:"ad_group"`
	Target      string     `json:"target,omitempty"`
	MatchType   string     `json:"match_type,omitempty"`
	State       string     `json:"state"`
	Bid         float64    `json:"bid"`
	Impressions float64    `json:"impressions"`
	Clicks      float64    `json:"clicks"`
	CTR         float64    `json:"ctr"`
	Spend       float64    `json:"spend"`
	Sales       float64    `json:"sales"`
	Orders      float64    `json:"orders"`
	CVR         float64    `json:"cvr"`
	ACoS        float64    `json:"acos"`
	ROAS        float64    `json:"roas"`
	CPC         float64    `json:"cpc"`
}

func performance(kind SheetKind, r Row) EntityPerformance {
	p := EntityPerformance{
		Source:      kind,
		Entity:      r.Entity,
		Campaign:    r.CampaignName,
		AdGroup:     r.AdGroupName,
		MatchType:   r.MatchType,
		State:       r.State,
		Bid:         r.Bid,
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		CTR:         r.CTR,
		Spend:       r.Spend,
		Sales:       r.Sales,
		Orders:      r.Orders,
		CVR:         r.CVR,
		ACoS:        r.ACoS,
		ROAS:        r.ROAS,
		CPC:         r.CPC,
	}
	switch r.Entity {
	case EntityKeyword:
		p.Target = r.Keyword
	case EntityProductTargeting:
		p.Target = r.TargetExpr
	case EntityAdGroup:
		p.Bid = r.DefaultBid
	}
	return p
}

func project(s *Sheet, types ...EntityType) []EntityPerformance {
	if s == nil {
		return nil
	}
	rows := s.Entities(types...)
	out := make([]EntityPerformance, 0, len(rows))
	for _, r := range rows {
		out = append(out, performance(s.Kind, r))
	}
	return out
}

func bySpendDesc(v []EntityPerformance) []EntityPerformance {
	sort.SliceStable(v, func(i, j int) bool { return v[i].Spend > v[j].Spend })
	return v
}

// AdGroups projects the ad group rows of s, sorted by spend descending.
func AdGroups(s *Sheet) []EntityPerformance {
	return bySpendDesc(project(s, EntityAdGroup))
}

// Keywords projects the keyword rows of s, sorted by spend descending.
func Keywords(s *Sheet) []EntityPerformance {
	return bySpendDesc(project(s, EntityKeyword))
}

// ProductTargets projects the product targeting rows of s, sorted by spend descending.
func ProductTargets(s *Sheet) []EntityPerformance {
	return bySpendDesc(project(s, EntityProductTargeting))
}

// targets gathers keyword and product targeting rows across every campaign sheet.
func targets(b *Bulk) []EntityPerformance {
	var out []EntityPerformance
	for _, s := range b.CampaignSheets() {
		out = append(out, project(s, EntityKeyword, EntityProductTargeting)...)
	}
	return out
}

// TopPerformers returns up to n keyword/target rows with sales, largest sales first.
func TopPerformers(b *Bulk, n int) []EntityPerformance {
	var out []EntityPerformance
	for _, p := range targets(b) {
		if p.Sales > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sales > out[j].Sales })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WorstPerformer is a keyword/target ranked by spend minus sales.
type WorstPerformer struct {
	EntityPerformance
	WasteScore float64 `json:"waste_score"`
}

// WorstPerformers returns up to n keyword/target rows with spend of at least
// minSpend and either no sales or ACoS above 50%.
func WorstPerformers(b *Bulk, minSpend float64, n int) []WorstPerformer {
	var out []WorstPerformer
	for _, p := range targets(b) {
		if p.Spend >= minSpend && (p.Sales == 0 || p.ACoS > 50) {
			out = append(out, WorstPerformer{EntityPerformance: p, WasteScore: p.Spend - p.Sales})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WasteScore > out[j].WasteScore })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// AdTotals aggregates advertising activity for one advertised ASIN.
type AdTotals struct {
	Spend  float64 `json:"spend"`
	Sales  float64 `json:"sales"`
	Orders float64 `json:"orders"`
	Clicks float64 `json:"clicks"`
}

// ACoS is spend over sales as a percentage, zero without sales.
func (t AdTotals) ACoS() float64 {
	if t.Sales == 0 {
		return 0
	}
	return t.Spend / t.Sales * 100
}

// SpendByASIN sums Sponsored Products product-ad rows per advertised ASIN.
func SpendByASIN(b *Bulk) map[string]AdTotals {
	out := make(map[string]AdTotals)
	s, ok := b.Sheet(SponsoredProducts)
	if !ok {
		return out
	}
	for _, r := range s.Entities(EntityProductAd) {
		if r.ASIN == "" {
			continue
		}
		t := out[r.ASIN]
		t.Spend += r.Spend
		t.Sales += r.Sales
		t.Orders += r.Orders
		t.Clicks += r.Clicks
		out[r.ASIN] = t
	}
	return out
}
