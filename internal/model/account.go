package model

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	ReferralCode string    `json:"referralCode,omitempty"`
	ReferredBy   string    `json:"referredBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Balances struct {
	UserID uint64 `json:"userId"`
	Points int64  `json:"points"`
	Cash   int64  `json:"cash"`
}

// Of returns the balance held in c.
func (b Balances) Of(c Currency) int64 {
	if c == CurrencyCash {
		return b.Cash
	}

	return b.Points
}

// Transaction is one append-only audit record. A nil UserID marks a house
// entry.
type Transaction struct {
	ID           int64         `json:"id"`
	UserID       *uint64       `json:"userId,omitempty"`
	RoundID      uuid.NullUUID `json:"roundId"`
	WagerID      uuid.NullUUID `json:"wagerId"`
	Currency     Currency      `json:"currency"`
	Amount       int64         `json:"amount"`
	Type         string        `json:"type"`
	Description  string        `json:"description"`
	BalanceAfter *int64        `json:"balanceAfter,omitempty"`
	GameType     GameType      `json:"gameType,omitempty"`
	Reference    string        `json:"reference,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}
