package metrics

import (
	"math"
	"strings"
)

// Inventory health labels.
const (
	HealthHealthy  = "Healthy"
	HealthLowStock = "Low Stock"
	HealthExcess   = "Excess"
	HealthAging    = "Aging"
)

// CategorizeInventoryHealth labels stock by days of supply and the share of
// units aged past 90 days.
func CategorizeInventoryHealth(daysOfSupply, age0to90, age90plus float64) string {
	total := age0to90 + age90plus
	switch {
	case daysOfSupply < 14:
		return HealthLowStock
	case daysOfSupply > 180:
		return HealthExcess
	case total > 0 && age90plus/total > 0.3:
		return HealthAging
	}
	return HealthHealthy
}

// NormalizeHealthLabel maps a report's free-form status onto a known label,
// case-insensitively. Unknown labels come back unchanged.
func NormalizeHealthLabel(s string) string {
	s = strings.TrimSpace(s)
	for _, l := range []string{HealthHealthy, HealthLowStock, HealthExcess, HealthAging} {
		if strings.EqualFold(s, l) {
			return l
		}
	}
	return s
}

// PPCEfficiencyScore rates ad efficiency on 0-100: ACoS against break-even
// (40), conversion rate (30), CPC (20) and impression volume (10).
func PPCEfficiencyScore(acos, breakeven, cvr, cpc, impressions float64) float64 {
	score := 0.0
	if breakeven > 0 {
		ratio := acos / breakeven
		switch {
		case ratio <= 0.5:
			score += 40
		case ratio <= 0.75:
			score += 35
		case ratio <= 1.0:
			score += 25
		case ratio <= 1.25:
			score += 15
		default:
			score += 5
		}
	}
	switch {
	case cvr >= 15:
		score += 30
	case cvr >= 10:
		score += 25
	case cvr >= 5:
		score += 15
	case cvr >= 2:
		score += 10
	default:
		score += 5
	}
	switch {
	case cpc <= 0.5:
		score += 20
	case cpc <= 1.0:
		score += 15
	case cpc <= 2.0:
		score += 10
	default:
		score += 5
	}
	switch {
	case impressions >= 10000:
		score += 10
	case impressions >= 5000:
		score += 8
	case impressions >= 1000:
		score += 5
	default:
		score += 2
	}
	return score
}

// BrandHealthInputs feed BrandHealthScore.
type BrandHealthInputs struct {
	MarketShare        float64
	MarketShareChange  float64
	BrandGrowth        float64
	MarketGrowth       float64
	AvgConversionRate  float64
	InventoryHealthPct float64
	PPCEfficiency      float64
}

// Brand health components.
const (
	ComponentMarketPosition   = "Market Position"
	ComponentConversionHealth = "Conversion Health"
	ComponentInventoryHealth  = "Inventory Health"
	ComponentPPCEfficiency    = "PPC Efficiency"
)

// BrandHealth is the 0-100 brand score with its components.
type BrandHealth struct {
	Score      float64            `json:"score"`
	Grade      string             `json:"grade"`
	Components map[string]float64 `json:"components"`
}

// BrandHealthScore weights market position (25), conversion (25), inventory
// health (20% of the healthy-SKU percentage) and PPC efficiency (30% of its score).
func BrandHealthScore(in BrandHealthInputs) BrandHealth {
	market := 0.0
	switch {
	case in.MarketShare >= 10:
		market += 15
	case in.MarketShare >= 5:
		market += 10
	case in.MarketShare >= 1:
		market += 5
	}
	if in.MarketShareChange > 0 {
		market += math.Min(5, in.MarketShareChange)
	}
	if in.BrandGrowth > in.MarketGrowth {
		market += 5
	}

	var cvr float64
	switch {
	case in.AvgConversionRate >= 15:
		cvr = 25
	case in.AvgConversionRate >= 10:
		cvr = 20
	case in.AvgConversionRate >= 5:
		cvr = 15
	case in.AvgConversionRate >= 2:
		cvr = 10
	default:
		cvr = 5
	}

	c := map[string]float64{
		ComponentMarketPosition:   math.Min(25, market),
		ComponentConversionHealth: cvr,
		ComponentInventoryHealth:  in.InventoryHealthPct * 0.2,
		ComponentPPCEfficiency:    in.PPCEfficiency * 0.3,
	}
	total := c[ComponentMarketPosition] + c[ComponentConversionHealth] +
		c[ComponentInventoryHealth] + c[ComponentPPCEfficiency]
	return BrandHealth{Score: total, Grade: HealthGrade(total), Components: c}
}

// HealthGrade converts a 0-100 score to a letter grade.
func HealthGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	case score >= 40:
		return "D"
	}
	return "F"
}
