package games

import (
	"github.com/fastprodman/wagerledger/internal/model"
)

const (
	Lucky2MaxNumber    = 60
	HorseRaceMaxNumber = 100
)

// ValidateSelection checks sel against the round settings and returns the
// stake actually debited. Horse race tickets stake the sum of their picks,
// bingo cards and duel seats cost the fixed stake.
//
//nolint:cyclop
func ValidateSelection(g model.GameType, s model.Settings, sel model.Selection, stake int64) (int64, error) {
	switch g {
	case model.GameVersus:
		if sel.Team != 1 && sel.Team != 2 {
			return 0, model.Invalid("selection.team", "must be 1 or 2")
		}

		return stake, checkRange(stake, s)

	case model.GameLucky2:
		if len(sel.Numbers) != 2 {
			return 0, model.Invalid("selection.numbers", "exactly two numbers required")
		}

		err := distinctInRange("selection.numbers", sel.Numbers, 1, Lucky2MaxNumber)
		if err != nil {
			return 0, err
		}

		return stake, checkRange(stake, s)

	case model.GameHorseRace:
		return validatePicks(s, sel.Picks, stake)

	case model.GameBingo:
		if len(sel.Card) != 0 {
			return 0, model.Invalid("selection.card", "cards are dealt by the house")
		}

		return fixedStake(s, stake)

	case model.GameRPS:
		if sel.Role != model.RoleHost && sel.Role != model.RoleGuest {
			return 0, model.Invalid("selection.role", "must be host or guest")
		}

		return fixedStake(s, stake)

	default:
		return 0, model.Invalid("gameType", "unknown game type %q", g)
	}
}

func validatePicks(s model.Settings, picks []model.NumberPick, stake int64) (int64, error) {
	if len(picks) == 0 {
		return 0, model.Invalid("selection.picks", "at least one number required")
	}
	if len(picks) > s.MaxNumbers {
		return 0, model.Invalid("selection.picks", "at most %d numbers allowed", s.MaxNumbers)
	}

	numbers := make([]int, 0, len(picks))
	var total int64

	for _, p := range picks {
		err := checkRange(p.Amount, s)
		if err != nil {
			return 0, err
		}

		numbers = append(numbers, p.Number)
		total += p.Amount
	}

	err := distinctInRange("selection.picks", numbers, 1, HorseRaceMaxNumber)
	if err != nil {
		return 0, err
	}

	if stake != 0 && stake != total {
		return 0, model.Invalid("stake", "must equal the sum of picks (%d)", total)
	}

	return total, nil
}

func fixedStake(s model.Settings, stake int64) (int64, error) {
	if stake != 0 && stake != s.FixedStake {
		return 0, model.Invalid("stake", "must be %d", s.FixedStake)
	}

	return s.FixedStake, nil
}

func checkRange(stake int64, s model.Settings) error {
	if stake < s.MinBet || stake > s.MaxBet {
		return model.Invalid("stake", "must be between %d and %d", s.MinBet, s.MaxBet)
	}

	return nil
}

func distinctInRange(field string, nums []int, lo, hi int) error {
	seen := make(map[int]struct{}, len(nums))

	for _, n := range nums {
		if n < lo || n > hi {
			return model.Invalid(field, "%d is outside %d..%d", n, lo, hi)
		}
		if _, dup := seen[n]; dup {
			return model.Invalid(field, "%d appears twice", n)
		}

		seen[n] = struct{}{}
	}

	return nil
}
