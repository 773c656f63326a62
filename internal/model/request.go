package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestKind string

const (
	// RequestWithdrawal pays cash out of the platform. The amount is held
	// from the balance when the request is made.
	RequestWithdrawal RequestKind = "withdrawal"
	// RequestLoan asks for points. Nothing moves until it is approved.
	RequestLoan RequestKind = "loan"
)

// Currency is the currency a request of this kind moves.
func (k RequestKind) Currency() Currency {
	if k == RequestWithdrawal {
		return CurrencyCash
	}

	return CurrencyPoints
}

func (k RequestKind) Valid() bool {
	return k == RequestWithdrawal || k == RequestLoan
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// Request is a player's withdrawal or loan awaiting an administrator.
type Request struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uint64        `json:"userId"`
	Kind        RequestKind   `json:"kind"`
	Currency    Currency      `json:"currency"`
	Amount      int64         `json:"amount"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ProcessedAt *time.Time    `json:"processedAt,omitempty"`
}

// ProfitTotals sums the house entries of one currency.
type ProfitTotals struct {
	Total  int64              `json:"total"`
	Today  int64              `json:"today"`
	Week   int64              `json:"week"`
	Month  int64              `json:"month"`
	ByGame map[GameType]int64 `json:"byGame"`
}

// ProfitReport is the house result per currency. Periods start at midnight
// UTC, weeks on Sunday.
type ProfitReport struct {
	AsOf       time.Time                 `json:"asOf"`
	Currencies map[Currency]ProfitTotals `json:"currencies"`
}
