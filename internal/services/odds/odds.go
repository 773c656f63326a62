// Package odds prices two-outcome pari-mutuel markets.
package odds

import (
	"github.com/shopspring/decimal"
)

var (
	MinOdds     = decimal.RequireFromString("1.10")
	MaxOdds     = decimal.RequireFromString("10.00")
	DefaultOdds = decimal.RequireFromString("2.00")
	HouseEdge   = decimal.RequireFromString("0.10")
)

const Places = 2

type Odds struct {
	Team1 decimal.Decimal `json:"team1"`
	Team2 decimal.Decimal `json:"team2"`
}

// Of returns the price of selection 1 or 2.
func (o Odds) Of(selection int) decimal.Decimal {
	if selection == 2 {
		return o.Team2
	}

	return o.Team1
}

// Compute prices both sides from their cumulative stakes. An empty market
// quotes DefaultOdds on both sides. A side nobody backed has an infinite raw
// price and is quoted at MaxOdds.
func Compute(s1, s2 int64) Odds {
	if s1 <= 0 && s2 <= 0 {
		return Odds{Team1: DefaultOdds, Team2: DefaultOdds}
	}

	total := decimal.NewFromInt(max(s1, 0) + max(s2, 0))

	return Odds{
		Team1: price(s1, total),
		Team2: price(s2, total),
	}
}

func price(side int64, total decimal.Decimal) decimal.Decimal {
	if side <= 0 {
		return MaxOdds
	}

	// 1/p = total/side
	raw := total.Div(decimal.NewFromInt(side))
	withEdge := raw.Mul(decimal.NewFromInt(1).Add(HouseEdge))

	return clamp(withEdge).Round(Places)
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(MinOdds) {
		return MinOdds
	}
	if d.GreaterThan(MaxOdds) {
		return MaxOdds
	}

	return d
}

// Payout is floor(stake × odds × (1 − fee)), the credit for a winning
// two-outcome wager at its locked price.
func Payout(stake int64, lockedOdds, fee decimal.Decimal) int64 {
	gross := decimal.NewFromInt(stake).Mul(lockedOdds)

	return gross.Mul(decimal.NewFromInt(1).Sub(fee)).Floor().IntPart()
}

// Gross is floor(stake × odds), the payout before the house fee.
func Gross(stake int64, lockedOdds decimal.Decimal) int64 {
	return decimal.NewFromInt(stake).Mul(lockedOdds).Floor().IntPart()
}
