package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the per-round configuration captured when the round opens.
// Fields irrelevant to a game type stay zero.
type Settings struct {
	MinBet        int64           `json:"minBet"`
	MaxBet        int64           `json:"maxBet"`
	TicketCap     int             `json:"ticketCap"`
	PlayerCap     int             `json:"playerCap,omitempty"`
	StakeCurrency Currency        `json:"stakeCurrency"`
	HouseFee      decimal.Decimal `json:"houseFee"`
	ClosesAt      *time.Time      `json:"closesAt,omitempty"`

	// versus
	Teams []string `json:"teams,omitempty"`

	// lucky2 and bingo
	PrizeMultiplier decimal.Decimal `json:"prizeMultiplier"`
	Jackpot         int64           `json:"jackpot,omitempty"`
	JackpotCurrency Currency        `json:"jackpotCurrency,omitempty"`

	// horse race
	MaxNumbers int          `json:"maxNumbers,omitempty"`
	Rewards    *TierRewards `json:"rewards,omitempty"`

	// bingo buy-in, rps stake
	FixedStake int64 `json:"fixedStake,omitempty"`
}

// TierRewards are the horse race payout multipliers per placing.
type TierRewards struct {
	Grand          decimal.Decimal `json:"grand"`
	FirstRunnerUp  decimal.Decimal `json:"firstRunnerUp"`
	SecondRunnerUp decimal.Decimal `json:"secondRunnerUp"`
	Consolation    decimal.Decimal `json:"consolation"`
}
