// Package metrics holds the pure business formulas shared by the analyzers.
// Every function is total: division by zero yields 0 (or +Inf for days of
// supply with no sales velocity) instead of an error.
package metrics

import "math"

// GrossMargin is price minus cost of goods and Amazon fees, per unit.
func GrossMargin(price, cogs, fbaFee, referralFee float64) float64 {
	return price - cogs - fbaFee - referralFee
}

// GrossMarginPct is GrossMargin as a percentage of price.
func GrossMarginPct(price, cogs, fbaFee, referralFee float64) float64 {
	if price == 0 {
		return 0
	}
	return GrossMargin(price, cogs, fbaFee, referralFee) / price * 100
}

// BreakevenACoS is the ACoS at which gross margin is fully spent on ads.
// It is numerically identical to GrossMarginPct.
func BreakevenACoS(price, cogs, fbaFee, referralFee float64) float64 {
	return GrossMarginPct(price, cogs, fbaFee, referralFee)
}

// ContributionMargin is gross margin per unit after per-unit ad spend.
func ContributionMargin(price, cogs, fbaFee, referralFee, adSpend, unitsSold float64) float64 {
	if unitsSold == 0 {
		return 0
	}
	return GrossMargin(price, cogs, fbaFee, referralFee) - adSpend/unitsSold
}

// ContributionMarginPct expresses a per-unit contribution margin against price.
func ContributionMarginPct(contribution, price float64) float64 {
	if price == 0 {
		return 0
	}
	return contribution / price * 100
}

// TrueACoS is ad spend over ad-attributed sales, as a percentage.
func TrueACoS(adSpend, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return adSpend / sales * 100
}

// TACoS is ad spend over total sales, as a percentage.
func TACoS(adSpend, totalSales float64) float64 {
	if totalSales == 0 {
		return 0
	}
	return adSpend / totalSales * 100
}

// ROAS is sales returned per unit of ad spend.
func ROAS(adSpend, sales float64) float64 {
	if adSpend == 0 {
		return 0
	}
	return sales / adSpend
}

// DaysOfSupply is available stock over daily sales velocity from the last
// 30 days. Zero velocity means the stock never runs out: +Inf.
func DaysOfSupply(available, unitsSold30d float64) float64 {
	if unitsSold30d == 0 {
		return math.Inf(1)
	}
	return available / (unitsSold30d / 30)
}

// SellThrough is sold units over sold plus available, as a percentage.
func SellThrough(sold, available float64) float64 {
	total := sold + available
	if total == 0 {
		return 0
	}
	return sold / total * 100
}
