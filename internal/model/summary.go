package model

import (
	"time"

	"github.com/google/uuid"
)

// SettlementSummary is persisted on the round when it completes and is
// returned unchanged by later settle calls. Stakes and Refunds are in the
// round's stake currency. Payouts and HouseNet are kept per currency since
// some prizes are paid in a different currency than the stakes.
type SettlementSummary struct {
	RoundID     uuid.UUID          `json:"roundId"`
	GameType    GameType           `json:"gameType"`
	Currency    Currency           `json:"currency"`
	Wagers      int                `json:"wagers"`
	Winners     int                `json:"winners"`
	Losers      int                `json:"losers"`
	Refunded    int                `json:"refunded"`
	Stakes      int64              `json:"stakes"`
	Payouts     map[Currency]int64 `json:"payouts"`
	Refunds     int64              `json:"refunds"`
	HouseNet    map[Currency]int64 `json:"houseNet"`
	FeeWithheld int64              `json:"feeWithheld"`
	SettledAt   time.Time          `json:"settledAt"`
}

// Conserved reports whether every unit staked is accounted for as a payout,
// a refund or house net, per currency.
func (s SettlementSummary) Conserved() bool {
	for _, c := range []Currency{CurrencyPoints, CurrencyCash} {
		in := int64(0)
		if c == s.Currency {
			in = s.Stakes - s.Refunds
		}

		if in != s.Payouts[c]+s.HouseNet[c] {
			return false
		}
	}

	return true
}

// ResetSummary describes the refunds made when a round is reset.
type ResetSummary struct {
	RoundID  uuid.UUID `json:"roundId"`
	Refunded int       `json:"refunded"`
	Refunds  int64     `json:"refunds"`
}
