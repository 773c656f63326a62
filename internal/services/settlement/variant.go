package settlement

import (
	"slices"

	"github.com/fastprodman/wagerledger/internal/games"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/services/odds"
	"github.com/shopspring/decimal"
)

// Credit is one payout movement of a settled wager.
type Credit struct {
	Currency model.Currency
	Amount   int64
	Tier     string
}

// Classification is the verdict on one pending wager.
type Classification struct {
	Status  model.WagerStatus
	Tier    string
	Credits []Credit
	// Fee is the nominal house fee withheld from the payout.
	Fee int64
}

// Payout is the sum of the credits in the wager's payout currency. Credits
// in any other currency are reported per currency on the round summary.
func (c Classification) Payout() int64 {
	var total int64
	for _, cr := range c.Credits {
		if cr.Currency == c.Currency() {
			total += cr.Amount
		}
	}

	return total
}

// Currency is the currency of the highest tier credit.
func (c Classification) Currency() model.Currency {
	if len(c.Credits) == 0 {
		return ""
	}

	return c.Credits[0].Currency
}

func lost() Classification {
	return Classification{Status: model.WagerLost}
}

// Variant resolves the wagers of one family of games. Check runs once per
// round before any wager is classified and rejects outcomes that cannot be
// applied to the pending wagers.
type Variant interface {
	Check(rnd model.Round, o model.Outcome, pending []model.Wager) error
	Classify(rnd model.Round, o model.Outcome, w model.Wager) (Classification, error)
}

var variants = map[model.GameType]Variant{
	model.GameVersus:    TwoOutcomeMarket{},
	model.GameLucky2:    TieredNumberMatch{},
	model.GameHorseRace: TieredNumberMatch{},
	model.GameBingo:     PatternMatch{},
	model.GameRPS:       SymmetricDuel{},
}

func variantFor(g model.GameType) (Variant, error) {
	v, ok := variants[g]
	if !ok {
		return nil, model.Invalid("gameType", "unknown game type %q", g)
	}

	return v, nil
}

// TwoOutcomeMarket pays the winning side at its locked odds less the house
// fee.
type TwoOutcomeMarket struct{}

func (TwoOutcomeMarket) Check(model.Round, model.Outcome, []model.Wager) error { return nil }

func (TwoOutcomeMarket) Classify(rnd model.Round, o model.Outcome, w model.Wager) (Classification, error) {
	if w.Selection.Team != o.WinningTeam {
		return lost(), nil
	}
	if !w.LockedOdds.Valid {
		return Classification{}, model.Invalid("lockedOdds", "wager %s has no locked odds", w.ID)
	}

	gross := odds.Gross(w.Stake, w.LockedOdds.Decimal)
	net := odds.Payout(w.Stake, w.LockedOdds.Decimal, rnd.Settings.HouseFee)

	return Classification{
		Status:  model.WagerWon,
		Tier:    games.TierWin,
		Credits: []Credit{{Currency: w.Currency, Amount: net, Tier: games.TierWin}},
		Fee:     gross - net,
	}, nil
}

// TieredNumberMatch pays by how well the picked numbers match the drawn
// ones: Lucky2 by match count, Horse Race by placing.
type TieredNumberMatch struct{}

func (TieredNumberMatch) Check(model.Round, model.Outcome, []model.Wager) error { return nil }

func (TieredNumberMatch) Classify(rnd model.Round, o model.Outcome, w model.Wager) (Classification, error) {
	if rnd.GameType == model.GameHorseRace {
		return classifyPlacings(rnd.Settings, o.Placings, w), nil
	}

	drawn := make(map[int]struct{}, len(o.Numbers))
	for _, n := range o.Numbers {
		drawn[n] = struct{}{}
	}

	matches := 0
	for _, n := range w.Selection.Numbers {
		if _, ok := drawn[n]; ok {
			matches++
		}
	}

	s := rnd.Settings

	switch matches {
	case 2:
		c := Classification{Status: model.WagerWon, Tier: games.TierJackpot}
		if s.Jackpot > 0 {
			c.Credits = []Credit{{Currency: jackpotCurrency(s), Amount: s.Jackpot, Tier: games.TierJackpot}}
		}

		return c, nil
	case 1:
		prize := decimal.NewFromInt(w.Stake).Mul(s.PrizeMultiplier).Floor().IntPart()

		return Classification{
			Status:  model.WagerWon,
			Tier:    games.TierMatch,
			Credits: []Credit{{Currency: w.Currency, Amount: prize, Tier: games.TierMatch}},
		}, nil
	default:
		return lost(), nil
	}
}

type placing struct {
	tier       string
	numbers    []int
	multiplier decimal.Decimal
	currency   model.Currency
}

// classifyPlacings pays every pick of a ticket at the highest placing its
// number appears in. The ticket tier is the best tier any pick reached.
func classifyPlacings(s model.Settings, p *model.Placings, w model.Wager) Classification {
	rewards := games.DefaultRewards()
	if s.Rewards != nil {
		rewards = *s.Rewards
	}

	tiers := []placing{
		{games.TierGrand, p.Grand, rewards.Grand, model.CurrencyCash},
		{games.TierFirstRunnerUp, p.FirstRunnerUp, rewards.FirstRunnerUp, model.CurrencyCash},
		{games.TierSecondRunnerUp, p.SecondRunnerUp, rewards.SecondRunnerUp, model.CurrencyCash},
		{games.TierConsolation, p.Consolation, rewards.Consolation, model.CurrencyPoints},
	}

	best := len(tiers)
	var credits []Credit

	for _, pick := range w.Selection.Picks {
		for i, t := range tiers {
			if !slices.Contains(t.numbers, pick.Number) {
				continue
			}

			amount := decimal.NewFromInt(pick.Amount).Mul(t.multiplier).Floor().IntPart()
			credits = append(credits, Credit{Currency: t.currency, Amount: amount, Tier: t.tier})
			best = min(best, i)

			break
		}
	}

	if len(credits) == 0 {
		return lost()
	}

	// highest tier first so the wager reports its currency
	slices.SortStableFunc(credits, func(a, b Credit) int {
		return tierRank(tiers, a.Tier) - tierRank(tiers, b.Tier)
	})

	return Classification{Status: model.WagerWon, Tier: tiers[best].tier, Credits: credits}
}

func tierRank(tiers []placing, tier string) int {
	for i, t := range tiers {
		if t.tier == tier {
			return i
		}
	}

	return len(tiers)
}

// PatternMatch pays the claimed bingo card when the called numbers complete
// a line on it. Every other card loses.
type PatternMatch struct{}

func (PatternMatch) Check(_ model.Round, o model.Outcome, pending []model.Wager) error {
	for _, w := range pending {
		if w.ID != *o.ClaimWagerID {
			continue
		}
		if !games.HasBingo(w.Selection.Card, o.Called) {
			return model.Invalid("claimWagerId", "card %s has no complete line after %d calls", w.ID, len(o.Called))
		}

		return nil
	}

	return model.Invalid("claimWagerId", "no pending card %s in this round", *o.ClaimWagerID)
}

func (PatternMatch) Classify(rnd model.Round, o model.Outcome, w model.Wager) (Classification, error) {
	if w.ID != *o.ClaimWagerID {
		return lost(), nil
	}

	// an unset jackpot pays the whole pool
	prize, currency := rnd.Settings.Jackpot, jackpotCurrency(rnd.Settings)
	if prize == 0 {
		prize, currency = rnd.StakesTotal, rnd.Settings.StakeCurrency
	}

	c := Classification{Status: model.WagerWon, Tier: games.TierBingo}
	if prize > 0 {
		c.Credits = []Credit{{Currency: currency, Amount: prize, Tier: games.TierBingo}}
	}

	return c, nil
}

// SymmetricDuel settles a two-seat rock-paper-scissors room. A draw refunds
// both seats; otherwise the winner takes both stakes less the house fee.
type SymmetricDuel struct{}

func (SymmetricDuel) Check(_ model.Round, o model.Outcome, pending []model.Wager) error {
	if len(pending) != 2 {
		return model.Invalid("roundId", "a duel needs two seated players, have %d", len(pending))
	}

	for _, w := range pending {
		if _, ok := o.Moves[w.UserID]; !ok {
			return model.Invalid("moves", "player %d has not moved", w.UserID)
		}
	}

	return nil
}

func (SymmetricDuel) Classify(rnd model.Round, o model.Outcome, w model.Wager) (Classification, error) {
	mine := o.Moves[w.UserID]

	var theirs model.Move
	for user, m := range o.Moves {
		if user != w.UserID {
			theirs = m
		}
	}

	switch games.Duel(mine, theirs) {
	case 0:
		return Classification{
			Status:  model.WagerRefunded,
			Tier:    games.TierDraw,
			Credits: []Credit{{Currency: w.Currency, Amount: w.Stake, Tier: games.TierDraw}},
		}, nil
	case 1:
		pot := 2 * w.Stake
		fee := decimal.NewFromInt(pot).Mul(rnd.Settings.HouseFee).Floor().IntPart()

		return Classification{
			Status:  model.WagerWon,
			Tier:    games.TierWin,
			Credits: []Credit{{Currency: w.Currency, Amount: pot - fee, Tier: games.TierWin}},
			Fee:     fee,
		}, nil
	default:
		return lost(), nil
	}
}

func jackpotCurrency(s model.Settings) model.Currency {
	if s.JackpotCurrency != "" {
		return s.JackpotCurrency
	}

	return s.StakeCurrency
}
