package scoring

import "github.com/shopspring/decimal"

// Status labels, ordered from best to worst.
const (
	StatusExcellent   = "Excellent"
	StatusGood        = "Good"
	StatusRegular     = "Regular"
	StatusAttention   = "Attention"
	StatusCritical    = "Critical"
	StatusNotAssessed = "Not Assessed"
)

var (
	bandExcellent = decimal.RequireFromString("1.2")
	bandGood      = decimal.RequireFromString("0.9")
	bandRegular   = decimal.RequireFromString("0.7")
	bandAttention = decimal.RequireFromString("0.5")
)

// StatusFromGoal classifies an average relative to the goal. Bands are
// fractions of the goal; the first (highest) matching band wins.
func StatusFromGoal(average, goal decimal.Decimal) string {
	switch {
	case average.GreaterThanOrEqual(goal.Mul(bandExcellent)):
		return StatusExcellent
	case average.GreaterThanOrEqual(goal.Mul(bandGood)):
		return StatusGood
	case average.GreaterThanOrEqual(goal.Mul(bandRegular)):
		return StatusRegular
	case average.GreaterThanOrEqual(goal.Mul(bandAttention)):
		return StatusAttention
	default:
		return StatusCritical
	}
}
