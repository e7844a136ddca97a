package matchup

import "github.com/shopspring/decimal"

// Moneyline converts a win probability into American moneyline odds.
// Probabilities at or above 50% produce a negative (favorite) line,
// below 50% a positive (underdog) line. The input is clamped the same
// way win probabilities are, so the line is always finite.
func Moneyline(prob float64) int64 {
	p := decimal.NewFromFloat(clampProbability(prob))
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	if p.GreaterThanOrEqual(decimal.NewFromFloat(0.5)) {
		return -p.Div(one.Sub(p)).Mul(hundred).Round(0).IntPart()
	}
	return one.Sub(p).Div(p).Mul(hundred).Round(0).IntPart()
}

// DecimalOdds returns the implied decimal odds (1/p) for a win
// probability, rounded to 2 places.
func DecimalOdds(prob float64) decimal.Decimal {
	p := decimal.NewFromFloat(clampProbability(prob))
	return decimal.NewFromInt(1).Div(p).Round(2)
}

// MoneylinePair holds the display lines for both sides of a result.
type MoneylinePair struct {
	Away int64 `json:"away"`
	Home int64 `json:"home"`
}

// Moneylines derives the American lines implied by a result's
// win-probability pair.
func Moneylines(r Result) MoneylinePair {
	return MoneylinePair{
		Away: Moneyline(r.AwayWinProbability),
		Home: Moneyline(r.HomeWinProbability),
	}
}
