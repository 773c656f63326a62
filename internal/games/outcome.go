package games

import (
	"github.com/fastprodman/wagerledger/internal/model"
)

// Horse race placing sizes.
const (
	GrandNumbers          = 1
	FirstRunnerUpNumbers  = 2
	SecondRunnerUpNumbers = 5
	ConsolationNumbers    = 25
)

// ValidateOutcome checks the admin declared part of an outcome. Bingo calls
// and duel moves come from the store and are checked where they are recorded.
func ValidateOutcome(g model.GameType, o model.Outcome) error {
	switch g {
	case model.GameVersus:
		if o.WinningTeam != 1 && o.WinningTeam != 2 {
			return model.Invalid("winningTeam", "must be 1 or 2")
		}
	case model.GameLucky2:
		if len(o.Numbers) != 2 {
			return model.Invalid("numbers", "exactly two winning numbers required")
		}

		return distinctInRange("numbers", o.Numbers, 1, Lucky2MaxNumber)
	case model.GameHorseRace:
		return validatePlacings(o.Placings)
	case model.GameBingo:
		if o.ClaimWagerID == nil {
			return model.Invalid("claimWagerId", "a bingo claim names the winning card")
		}
	case model.GameRPS:
	default:
		return model.Invalid("gameType", "unknown game type %q", g)
	}

	return nil
}

func validatePlacings(p *model.Placings) error {
	if p == nil {
		return model.Invalid("placings", "required")
	}

	sizes := []struct {
		field string
		nums  []int
		want  int
	}{
		{"placings.grand", p.Grand, GrandNumbers},
		{"placings.firstRunnerUp", p.FirstRunnerUp, FirstRunnerUpNumbers},
		{"placings.secondRunnerUp", p.SecondRunnerUp, SecondRunnerUpNumbers},
		{"placings.consolation", p.Consolation, ConsolationNumbers},
	}

	all := make([]int, 0, GrandNumbers+FirstRunnerUpNumbers+SecondRunnerUpNumbers+ConsolationNumbers)

	for _, sz := range sizes {
		if len(sz.nums) != sz.want {
			return model.Invalid(sz.field, "exactly %d numbers required", sz.want)
		}

		all = append(all, sz.nums...)
	}

	return distinctInRange("placings", all, 1, HorseRaceMaxNumber)
}
