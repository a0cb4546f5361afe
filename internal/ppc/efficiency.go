package ppc

import "sort"

// LowConversionCriteria bounds keyword/target rows that spend without converting.
// MaxCVR is a percentage.
type LowConversionCriteria struct {
	MinSpend  float64
	MinClicks float64
	MaxCVR    float64
}

// DefaultLowConversion flags $10+ of spend over 10+ clicks converting below 0.5%.
var DefaultLowConversion = LowConversionCriteria{MinSpend: 10, MinClicks: 10, MaxCVR: 0.5}

// LowConversionTargets returns keyword/target rows across every campaign
// sheet that meet c, largest spend first.
func LowConversionTargets(b *Bulk, c LowConversionCriteria) []EntityPerformance {
	var out []EntityPerformance
	for _, p := range targets(b) {
		if p.Spend >= c.MinSpend && p.Clicks >= c.MinClicks && p.CVR < c.MaxCVR {
			out = append(out, p)
		}
	}
	return bySpendDesc(out)
}

// ScalingCriteria bounds efficient keyword/target rows worth more budget.
// MinCVR and MaxACoS are percentages.
type ScalingCriteria struct {
	MinCVR         float64
	MaxACoS        float64
	MinImpressions float64
}

// DefaultScaling selects rows converting at 5%+ under 30% ACoS on 1000+ impressions.
var DefaultScaling = ScalingCriteria{MinCVR: 5, MaxACoS: 30, MinImpressions: 1000}

// ScalingCandidate is an efficient keyword/target with its ranking score.
type ScalingCandidate struct {
	EntityPerformance
	Potential float64 `json:"potential_score"`
}

// ScalingCandidates returns keyword/target rows with sales-backed ACoS inside
// c, ranked by CVR / (ACoS + 1) descending.
func ScalingCandidates(b *Bulk, c ScalingCriteria) []ScalingCandidate {
	var out []ScalingCandidate
	for _, p := range targets(b) {
		if p.CVR >= c.MinCVR && p.ACoS > 0 && p.ACoS <= c.MaxACoS && p.Impressions >= c.MinImpressions {
			out = append(out, ScalingCandidate{EntityPerformance: p, Potential: p.CVR / (p.ACoS + 1)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Potential > out[j].Potential })
	return out
}
