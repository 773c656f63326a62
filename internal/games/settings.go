package games

import (
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/shopspring/decimal"
)

const (
	VersusMinBet = 10
	VersusMaxBet = 100_000

	Lucky2MinBet          = 10
	Lucky2MaxBet          = 50
	Lucky2PrizeMultiplier = 25

	HorseRaceMinBet     = 10
	HorseRaceMaxBet     = 1_000
	HorseRaceMaxNumbers = 10

	BingoBuyIn    = 100
	BingoMaxCards = 3

	DuelMinStake = 10
)

var (
	VersusHouseFee = decimal.RequireFromString("0.10")
	DuelHouseFee   = decimal.RequireFromString("0.05")
)

// DefaultRewards are the horse race multipliers per placing.
func DefaultRewards() model.TierRewards {
	return model.TierRewards{
		Grand:          decimal.NewFromInt(100),
		FirstRunnerUp:  decimal.NewFromInt(50),
		SecondRunnerUp: decimal.NewFromInt(25),
		Consolation:    decimal.NewFromInt(10),
	}
}

// Defaults returns the settings a round of g opens with when the admin
// supplies none.
func Defaults(g model.GameType) model.Settings {
	s := model.Settings{StakeCurrency: model.CurrencyPoints}

	switch g {
	case model.GameVersus:
		s.MinBet, s.MaxBet = VersusMinBet, VersusMaxBet
		s.TicketCap = 1
		s.HouseFee = VersusHouseFee
		s.Teams = []string{"Team 1", "Team 2"}
	case model.GameLucky2:
		s.MinBet, s.MaxBet = Lucky2MinBet, Lucky2MaxBet
		s.TicketCap = 1
		s.PrizeMultiplier = decimal.NewFromInt(Lucky2PrizeMultiplier)
		s.JackpotCurrency = model.CurrencyCash
	case model.GameHorseRace:
		s.MinBet, s.MaxBet = HorseRaceMinBet, HorseRaceMaxBet
		s.MaxNumbers = HorseRaceMaxNumbers
		r := DefaultRewards()
		s.Rewards = &r
	case model.GameBingo:
		s.FixedStake = BingoBuyIn
		s.TicketCap = BingoMaxCards
		s.JackpotCurrency = model.CurrencyPoints
	case model.GameRPS:
		s.MinBet = DuelMinStake
		s.TicketCap = 1
		s.PlayerCap = 2
		s.HouseFee = DuelHouseFee
	}

	return s
}

// Normalize overlays the admin supplied settings on the defaults of g and
// validates the result.
//
//nolint:gocognit,cyclop
func Normalize(g model.GameType, in model.Settings) (model.Settings, error) {
	if !g.Valid() {
		return model.Settings{}, model.Invalid("gameType", "unknown game type %q", g)
	}

	s := Defaults(g)

	if in.MinBet != 0 {
		s.MinBet = in.MinBet
	}
	if in.MaxBet != 0 {
		s.MaxBet = in.MaxBet
	}
	if in.TicketCap != 0 {
		s.TicketCap = in.TicketCap
	}
	if in.StakeCurrency != "" {
		s.StakeCurrency = in.StakeCurrency
	}
	if !in.HouseFee.IsZero() {
		s.HouseFee = in.HouseFee
	}
	if in.ClosesAt != nil {
		t := *in.ClosesAt
		s.ClosesAt = &t
	}
	if len(in.Teams) != 0 {
		s.Teams = append([]string(nil), in.Teams...)
	}
	if !in.PrizeMultiplier.IsZero() {
		s.PrizeMultiplier = in.PrizeMultiplier
	}
	if in.Jackpot != 0 {
		s.Jackpot = in.Jackpot
	}
	if in.JackpotCurrency != "" {
		s.JackpotCurrency = in.JackpotCurrency
	}
	if in.MaxNumbers != 0 {
		s.MaxNumbers = in.MaxNumbers
	}
	if in.Rewards != nil {
		r := *in.Rewards
		s.Rewards = &r
	}
	if in.FixedStake != 0 {
		s.FixedStake = in.FixedStake
	}

	err := validateSettings(g, s)
	if err != nil {
		return model.Settings{}, err
	}

	return s, nil
}

//nolint:cyclop
func validateSettings(g model.GameType, s model.Settings) error {
	if !s.StakeCurrency.Valid() {
		return model.Invalid("stakeCurrency", "unknown currency %q", s.StakeCurrency)
	}
	if s.HouseFee.IsNegative() || s.HouseFee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return model.Invalid("houseFee", "must be in [0, 1)")
	}
	if s.TicketCap < 0 {
		return model.Invalid("ticketCap", "must not be negative")
	}
	if s.Jackpot < 0 {
		return model.Invalid("jackpot", "must not be negative")
	}
	if s.JackpotCurrency != "" && !s.JackpotCurrency.Valid() {
		return model.Invalid("jackpotCurrency", "unknown currency %q", s.JackpotCurrency)
	}

	switch g {
	case model.GameBingo:
		if s.FixedStake <= 0 {
			return model.Invalid("fixedStake", "buy-in must be positive")
		}
	case model.GameRPS:
		if s.FixedStake < DuelMinStake {
			return model.Invalid("fixedStake", "stake must be at least %d", DuelMinStake)
		}
	default:
		if s.MinBet <= 0 || s.MaxBet < s.MinBet {
			return model.Invalid("minBet", "bet range [%d, %d] is invalid", s.MinBet, s.MaxBet)
		}
	}

	switch g {
	case model.GameVersus:
		if len(s.Teams) != 2 {
			return model.Invalid("teams", "exactly two teams required")
		}
	case model.GameLucky2:
		if !s.PrizeMultiplier.IsPositive() {
			return model.Invalid("prizeMultiplier", "must be positive")
		}
	case model.GameHorseRace:
		if s.MaxNumbers <= 0 {
			return model.Invalid("maxNumbers", "must be positive")
		}
		if s.Rewards == nil {
			return model.Invalid("rewards", "required")
		}
	}

	return nil
}
