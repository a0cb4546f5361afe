// Package portfolio scores every ASIN on profitability, growth, market
// position and efficiency, then classifies it into a portfolio action.
package portfolio

import (
	"math"

	"github.com/vinodismyname/sellerscope/internal/metrics"
)

// Action is a portfolio recommendation.
type Action string

const (
	ActionInvest   Action = "INVEST"
	ActionMaintain Action = "MAINTAIN"
	ActionOptimize Action = "OPTIMIZE"
	ActionHarvest  Action = "HARVEST"
	ActionExit     Action = "EXIT"
)

// Actions lists every action in display order.
var Actions = []Action{ActionInvest, ActionMaintain, ActionOptimize, ActionHarvest, ActionExit}

// ParseAction resolves an action name case-sensitively.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// subScoreCap bounds each of the four sub-scores.
const subScoreCap = 25

// ProfitabilityScore rates gross margin (0-10), ACoS against break-even (0-10)
// and contribution margin (0-5). Without a positive break-even the ACoS part
// scores nothing; with no ad spend it scores a neutral 5.
func ProfitabilityScore(grossMargin, acos, breakeven, contributionMargin float64) float64 {
	score := 0.0
	switch {
	case grossMargin >= 50:
		score += 10
	case grossMargin >= 40:
		score += 8
	case grossMargin >= 30:
		score += 6
	case grossMargin >= 20:
		score += 4
	case grossMargin >= 10:
		score += 2
	}

	if breakeven > 0 {
		ratio := 0.0
		if acos > 0 {
			ratio = acos / breakeven
		}
		switch {
		case ratio == 0:
			score += 5
		case ratio <= 0.5:
			score += 10
		case ratio <= 0.75:
			score += 8
		case ratio <= 1.0:
			score += 6
		case ratio <= 1.25:
			score += 3
		}
	}

	switch {
	case contributionMargin >= 20:
		score += 5
	case contributionMargin >= 10:
		score += 4
	case contributionMargin >= 5:
		score += 3
	case contributionMargin >= 0:
		score += 2
	}
	return math.Min(subScoreCap, score)
}

// GrowthScore rates the sales trend (0-15) and the trend relative to market
// growth in percentage points (0-10).
func GrowthScore(salesTrend, marketGrowth float64) float64 {
	score := 0.0
	switch {
	case salesTrend >= 100:
		score += 15
	case salesTrend >= 50:
		score += 12
	case salesTrend >= 25:
		score += 10
	case salesTrend >= 10:
		score += 8
	case salesTrend >= 0:
		score += 5
	case salesTrend >= -10:
		score += 3
	}

	relative := salesTrend - marketGrowth
	switch {
	case relative >= 50:
		score += 10
	case relative >= 25:
		score += 8
	case relative >= 10:
		score += 6
	case relative >= 0:
		score += 4
	case relative >= -10:
		score += 2
	}
	return math.Min(subScoreCap, score)
}

// MarketScore rates market share (1-12), share change (0-8) and search
// visibility (1-5).
func MarketScore(share, shareChange, visibility float64) float64 {
	score := 0.0
	switch {
	case share >= 20:
		score += 12
	case share >= 10:
		score += 10
	case share >= 5:
		score += 8
	case share >= 2:
		score += 5
	case share >= 1:
		score += 3
	default:
		score++
	}

	switch {
	case shareChange >= 5:
		score += 8
	case shareChange >= 2:
		score += 6
	case shareChange >= 0:
		score += 4
	case shareChange >= -2:
		score += 2
	}

	switch {
	case visibility >= 10:
		score += 5
	case visibility >= 5:
		score += 4
	case visibility >= 2:
		score += 3
	case visibility >= 1:
		score += 2
	default:
		score++
	}
	return math.Min(subScoreCap, score)
}

var inventoryPoints = map[string]float64{
	metrics.HealthHealthy:  7,
	metrics.HealthLowStock: 3,
	metrics.HealthExcess:   2,
	metrics.HealthAging:    1,
}

// EfficiencyScore rates conversion rate (1-10), buy box ownership (1-8) and
// the inventory health label (1-7, unknown labels score 4).
func EfficiencyScore(conversionRate, buyBoxPct float64, inventoryHealth string) float64 {
	score := 0.0
	switch {
	case conversionRate >= 20:
		score += 10
	case conversionRate >= 15:
		score += 8
	case conversionRate >= 10:
		score += 6
	case conversionRate >= 5:
		score += 4
	case conversionRate >= 2:
		score += 2
	default:
		score++
	}

	switch {
	case buyBoxPct >= 95:
		score += 8
	case buyBoxPct >= 90:
		score += 7
	case buyBoxPct >= 80:
		score += 5
	case buyBoxPct >= 70:
		score += 3
	default:
		score++
	}

	if p, ok := inventoryPoints[inventoryHealth]; ok {
		score += p
	} else {
		score += 4
	}
	return math.Min(subScoreCap, score)
}

// Rule is one row of the classification table.
type Rule struct {
	Name      string
	Match     func(total, growth, profitability float64) bool
	Action    Action
	Rationale string
}

// Rules is evaluated top-down; the first match wins and the last rule
// always matches.
var Rules = []Rule{
	{
		Name:      "top-performer",
		Match:     func(total, _, _ float64) bool { return total >= 80 },
		Action:    ActionInvest,
		Rationale: "Top performer - maximize investment",
	},
	{
		Name:      "strong-growth",
		Match:     func(total, growth, _ float64) bool { return total >= 65 && growth >= 18 },
		Action:    ActionInvest,
		Rationale: "Strong growth trajectory - increase investment",
	},
	{
		Name:      "solid",
		Match:     func(total, _, _ float64) bool { return total >= 65 },
		Action:    ActionMaintain,
		Rationale: "Solid performer - maintain current strategy",
	},
	{
		Name:      "cash-cow",
		Match:     func(total, _, prof float64) bool { return total >= 50 && prof >= 18 },
		Action:    ActionHarvest,
		Rationale: "Profitable but limited growth - optimize for cash",
	},
	{
		Name:      "growth-potential",
		Match:     func(total, growth, _ float64) bool { return total >= 50 && growth >= 15 },
		Action:    ActionOptimize,
		Rationale: "Growth potential but needs optimization",
	},
	{
		Name:      "needs-improvement",
		Match:     func(total, _, _ float64) bool { return total >= 50 },
		Action:    ActionOptimize,
		Rationale: "Needs improvement across metrics",
	},
	{
		Name:      "marginal",
		Match:     func(total, _, prof float64) bool { return total >= 35 && prof >= 12 },
		Action:    ActionHarvest,
		Rationale: "Marginally profitable - reduce investment, harvest",
	},
	{
		Name:      "underperforming",
		Match:     func(total, _, _ float64) bool { return total >= 35 },
		Action:    ActionExit,
		Rationale: "Underperforming - consider discontinuation",
	},
	{
		Name:      "poor",
		Match:     func(_, _, _ float64) bool { return true },
		Action:    ActionExit,
		Rationale: "Poor performance - recommend exit",
	},
}

// Classify returns the action and rationale of the first matching rule.
func Classify(total, growth, profitability float64) (Action, string) {
	for _, r := range Rules {
		if r.Match(total, growth, profitability) {
			return r.Action, r.Rationale
		}
	}
	last := Rules[len(Rules)-1]
	return last.Action, last.Rationale
}
