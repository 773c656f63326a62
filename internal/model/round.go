package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Round struct {
	ID          uuid.UUID          `json:"id"`
	GameType    GameType           `json:"gameType"`
	Status      RoundStatus        `json:"status"`
	StakesTotal int64              `json:"stakesTotal"`
	Settings    Settings           `json:"settings"`
	Outcome     *Outcome           `json:"outcome,omitempty"`
	Summary     *SettlementSummary `json:"summary,omitempty"`
	ParentID    uuid.NullUUID      `json:"parentId"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// SelectionTotal is the cumulative stake and current price of one side of
// a two-outcome market.
type SelectionTotal struct {
	Selection  int             `json:"selection"`
	StakeTotal int64           `json:"stakeTotal"`
	Odds       decimal.Decimal `json:"odds"`
}

// MarketOdds is the published price of a two-outcome market.
type MarketOdds struct {
	RoundID   uuid.UUID       `json:"roundId"`
	Team1     decimal.Decimal `json:"team1"`
	Team2     decimal.Decimal `json:"team2"`
	Total1    int64           `json:"total1"`
	Total2    int64           `json:"total2"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Outcome is the declared result of a round. Which fields are set depends on
// the game type. Called and Moves are loaded from the store at settlement
// time and are never taken from the caller.
type Outcome struct {
	WinningTeam  int             `json:"winningTeam,omitempty"`
	Numbers      []int           `json:"numbers,omitempty"`
	Placings     *Placings       `json:"placings,omitempty"`
	ClaimWagerID *uuid.UUID      `json:"claimWagerId,omitempty"`
	Called       []int           `json:"called,omitempty"`
	Moves        map[uint64]Move `json:"moves,omitempty"`
}

// Placings are the horse race winning number sets.
type Placings struct {
	Grand          []int `json:"grand"`
	FirstRunnerUp  []int `json:"firstRunnerUp"`
	SecondRunnerUp []int `json:"secondRunnerUp"`
	Consolation    []int `json:"consolation"`
}
