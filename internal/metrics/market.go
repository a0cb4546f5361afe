package metrics

// BrandGrowth is the period-over-period change in percent. Growth from
// nothing to something counts as 100%.
func BrandGrowth(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// MarketGrowth is the period-over-period change of market totals in percent.
func MarketGrowth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// BrandShareChange is the absolute change in share, in percentage points.
func BrandShareChange(current, previous float64) float64 {
	return current - previous
}

// Quadrant is a growth-share matrix position.
type Quadrant string

const (
	QuadrantStar         Quadrant = "Star"
	QuadrantQuestionMark Quadrant = "Question Mark"
	QuadrantCashCow      Quadrant = "Cash Cow"
	QuadrantDog          Quadrant = "Dog"
)

const (
	highShareThreshold  = 10.0
	highGrowthThreshold = 20.0
)

// MarketPosition places a brand on the growth-share matrix: a share of at
// least 10% is high, market growth of at least 20% is high.
func MarketPosition(share, marketGrowth float64) Quadrant {
	highShare := share >= highShareThreshold
	highGrowth := marketGrowth >= highGrowthThreshold
	switch {
	case highShare && highGrowth:
		return QuadrantStar
	case highGrowth:
		return QuadrantQuestionMark
	case highShare:
		return QuadrantCashCow
	}
	return QuadrantDog
}
