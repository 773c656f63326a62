// Package games holds the pure rules of each game type: default settings,
// selection and outcome validation, bingo cards and duel hands.
package games

import (
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
)

// Rules are the fixed traits of a game type.
type Rules struct {
	// SingleTicket allows at most one wager per user and round.
	SingleTicket bool
	// DirectSettle lets settlement close the round itself.
	DirectSettle bool
	// TwoOutcome markets keep per-side totals and reprice on every bet.
	TwoOutcome bool
	BetType    string
	WinType    string
	// JackpotType is the credit type of the top tier when it differs from WinType.
	JackpotType string
}

var rules = map[model.GameType]Rules{
	model.GameVersus: {
		SingleTicket: true,
		TwoOutcome:   true,
		BetType:      model.TxVersusBet,
		WinType:      model.TxVersusWin,
	},
	model.GameLucky2: {
		SingleTicket: true,
		DirectSettle: true,
		BetType:      model.TxLucky2Bet,
		WinType:      model.TxLucky2Win,
		JackpotType:  model.TxLucky2Jackpot,
	},
	model.GameHorseRace: {
		DirectSettle: true,
		BetType:      model.TxHorseRaceBet,
		WinType:      model.TxHorseRaceWin,
	},
	model.GameBingo: {
		DirectSettle: true,
		BetType:      model.TxBingoBuyIn,
		WinType:      model.TxBingoWin,
	},
	model.GameRPS: {
		SingleTicket: true,
		BetType:      model.TxRPSStake,
		WinType:      model.TxRPSWin,
	},
}

func For(g model.GameType) (Rules, error) {
	r, ok := rules[g]
	if !ok {
		return Rules{}, model.Invalid("gameType", "unknown game type %q", g)
	}

	return r, nil
}

// BetType is the debit transaction type for a stake on rnd.
func BetType(rnd model.Round) string {
	if rnd.GameType == model.GameRPS && rnd.ParentID.Valid {
		return model.TxRPSRematchStake
	}

	return rules[rnd.GameType].BetType
}

// CreditType is the transaction type written for a payout in tier.
func CreditType(g model.GameType, tier string) string {
	r := rules[g]
	switch {
	case tier == TierDraw:
		return model.TxRPSDraw
	case tier == TierJackpot && r.JackpotType != "":
		return r.JackpotType
	default:
		return r.WinType
	}
}

// Settlement tiers.
const (
	TierWin            = "win"
	TierJackpot        = "jackpot"
	TierMatch          = "match"
	TierGrand          = "grand"
	TierFirstRunnerUp  = "first_runner_up"
	TierSecondRunnerUp = "second_runner_up"
	TierConsolation    = "consolation"
	TierBingo          = "bingo"
	TierDraw           = "draw"
)

func describe(g model.GameType) string {
	switch g {
	case model.GameHorseRace:
		return "Horse Race"
	case model.GameRPS:
		return "RPS"
	case model.GameLucky2:
		return "Lucky2"
	case model.GameBingo:
		return "Bingo"
	default:
		return "Versus"
	}
}

// Describe renders a human readable transaction description.
func Describe(g model.GameType, action string, args ...any) string {
	return describe(g) + " " + fmt.Sprintf(action, args...)
}
