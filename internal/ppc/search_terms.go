package ppc

import (
	"sort"
	"strings"
)

// Recommendation is the action proposed for one customer search term.
type Recommendation string

const (
	RecNoData   Recommendation = "No Data"
	RecScale    Recommendation = "Scale"
	RecMaintain Recommendation = "Maintain"
	RecOptimize Recommendation = "Optimize"
	RecNegate   Recommendation = "Negate"
	RecMoreData Recommendation = "More Data"
	RecMonitor  Recommendation = "Monitor"
)

// Recommendations lists every recommendation in rule order.
var Recommendations = []Recommendation{RecNoData, RecScale, RecMaintain, RecOptimize, RecNegate, RecMoreData, RecMonitor}

// ParseRecommendation resolves a recommendation name case-insensitively.
func ParseRecommendation(s string) (Recommendation, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Recommendations {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// SearchTerm is the projection of one search-term report row.
type SearchTerm struct {
	Term        string  `json:"search_term"`
	Campaign    string  `json:"campaign"`
	AdGroup     string  `json:"ad_group"`
	Keyword     string  `json:"keyword"`
	MatchType   string  `json:"match_type"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
	Orders      float64 `json:"orders"`
	CVR         float64 `json:"cvr"`
	ACoS        float64 `json:"acos"`
	ROAS        float64 `json:"roas"`
	CPC         float64 `json:"cpc"`
}

func searchTerm(r Row) SearchTerm {
	return SearchTerm{
		Term:        r.SearchTerm,
		Campaign:    r.CampaignName,
		AdGroup:     r.AdGroupName,
		Keyword:     r.Keyword,
		MatchType:   r.MatchType,
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
}

// SearchTermAnalysis is a search term with its recommendation and impact.
type SearchTermAnalysis struct {
	SearchTerm
	Recommendation Recommendation `json:"recommendation"`
	ImpactScore    float64        `json:"impact_score"`
}

// Recommend applies the recommendation rules in order; the first match wins.
func Recommend(t SearchTerm, breakeven float64) Recommendation {
	switch {
	case t.Spend == 0:
		return RecNoData
	case t.ACoS > 0 && t.ACoS <= breakeven*0.7 && t.CVR >= 5:
		return RecScale
	case t.ACoS > 0 && t.ACoS <= breakeven && t.CVR >= 2:
		return RecMaintain
	case t.ACoS > breakeven && t.ACoS <= breakeven*1.5 && t.Sales > 0:
		return RecOptimize
	case t.Spend >= 10 && t.Clicks >= 10 && (t.Sales == 0 || t.ACoS > breakeven*2):
		return RecNegate
	case t.Clicks < 5:
		return RecMoreData
	}
	return RecMonitor
}

// AnalyzeSearchTerms recommends an action for every row and orders the result
// by impact score (spend × (1 + CVR/10)) descending.
func AnalyzeSearchTerms(rows []Row, breakeven float64) []SearchTermAnalysis {
	out := make([]SearchTermAnalysis, 0, len(rows))
	for _, r := range rows {
		t := searchTerm(r)
		out = append(out, SearchTermAnalysis{
			SearchTerm:     t,
			Recommendation: Recommend(t, breakeven),
			ImpactScore:    t.Spend * (1 + t.CVR/10),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ImpactScore > out[j].ImpactScore })
	return out
}

// CountRecommendations tallies analyses per recommendation.
func CountRecommendations(v []SearchTermAnalysis) map[Recommendation]int {
	out := make(map[Recommendation]int, len(Recommendations))
	for _, r := range Recommendations {
		out[r] = 0
	}
	for _, a := range v {
		out[a.Recommendation]++
	}
	return out
}

// ScaleOpportunity is a profitable converting term worth more budget.
type ScaleOpportunity struct {
	SearchTerm
	Potential float64 `json:"potential"`
}

// NegateOpportunity is a term burning spend without return.
type NegateOpportunity struct {
	SearchTerm
	WastedSpend float64 `json:"wasted_spend"`
}

// Opportunities groups search-term optimisation candidates.
type Opportunities struct {
	ToScale     []ScaleOpportunity  `json:"to_scale"`
	ToNegate    []NegateOpportunity `json:"to_negate"`
	NewKeywords []SearchTerm        `json:"new_keywords"`
	ToExact     []SearchTerm        `json:"to_exact"`
}

func isBroadOrPhrase(matchType string) bool {
	return strings.EqualFold(matchType, "broad") || strings.EqualFold(matchType, "phrase")
}

// FindOpportunities scans search-term rows for terms to scale, negate,
// harvest as new keywords or promote to exact match.
func FindOpportunities(rows []Row) Opportunities {
	var o Opportunities
	for _, r := range rows {
		t := searchTerm(r)
		if t.ACoS > 0 && t.ACoS <= 20 && t.CVR >= 5 && t.Impressions >= 500 {
			o.ToScale = append(o.ToScale, ScaleOpportunity{SearchTerm: t, Potential: t.Sales * (1 - t.ACoS/100)})
		}
		if t.Spend >= 15 && t.Clicks >= 15 && (t.Sales == 0 || t.ACoS > 100) {
			o.ToNegate = append(o.ToNegate, NegateOpportunity{SearchTerm: t, WastedSpend: t.Spend - t.Sales})
		}
		if t.ACoS > 0 && t.ACoS <= 30 && t.Orders >= 2 && t.Term != t.Keyword {
			o.NewKeywords = append(o.NewKeywords, t)
		}
		if isBroadOrPhrase(t.MatchType) && t.ACoS > 0 && t.ACoS <= 25 && t.Orders >= 3 {
			o.ToExact = append(o.ToExact, t)
		}
	}
	sort.SliceStable(o.ToScale, func(i, j int) bool { return o.ToScale[i].Potential > o.ToScale[j].Potential })
	sort.SliceStable(o.ToNegate, func(i, j int) bool { return o.ToNegate[i].WastedSpend > o.ToNegate[j].WastedSpend })
	sort.SliceStable(o.NewKeywords, func(i, j int) bool { return o.NewKeywords[i].Orders > o.NewKeywords[j].Orders })
	sort.SliceStable(o.ToExact, func(i, j int) bool { return o.ToExact[i].Orders > o.ToExact[j].Orders })
	return o
}
