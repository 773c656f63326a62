package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wager struct {
	ID             uuid.UUID           `json:"id"`
	RoundID        uuid.UUID           `json:"roundId"`
	UserID         uint64              `json:"userId"`
	GameType       GameType            `json:"gameType"`
	Stake          int64               `json:"stake"`
	Currency       Currency            `json:"currency"`
	Selection      Selection           `json:"selection"`
	SingleTicket   bool                `json:"-"`
	LockedOdds     decimal.NullDecimal `json:"lockedOdds"`
	Status         WagerStatus         `json:"status"`
	Payout         int64               `json:"payout"`
	PayoutCurrency Currency            `json:"payoutCurrency,omitempty"`
	Tier           string              `json:"tier,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	SettledAt      *time.Time          `json:"settledAt,omitempty"`
}

// Selection is the outcome a wager backs.
type Selection struct {
	Team    int          `json:"team,omitempty"`
	Numbers []int        `json:"numbers,omitempty"`
	Picks   []NumberPick `json:"picks,omitempty"`
	Card    []int        `json:"card,omitempty"`
	Role    string       `json:"role,omitempty"`
}

// NumberPick is one staked number on a horse race ticket.
type NumberPick struct {
	Number int   `json:"number"`
	Amount int64 `json:"amount"`
}

// Duel roles.
const (
	RoleHost  = "host"
	RoleGuest = "guest"
)
