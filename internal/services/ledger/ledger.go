// Package ledger is the only writer of account balances. Every balance move
// is a delta applied inside the caller's transaction together with its audit
// record, so a balance and its log can never disagree.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/wagerledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
	pgrequests "github.com/fastprodman/wagerledger/internal/repos/requests/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/wagerledger/internal/repos/transactions/postgres"
	"github.com/google/uuid"
)

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	txns     transactions.Transactions
	requests requests.Requests
	retry    pgutils.RetryPolicy
	now      func() time.Time
}

func New(dbx *sql.DB, retry pgutils.RetryPolicy) *Service {
	return &Service{
		db:       dbx,
		accounts: pgaccounts.New(dbx),
		txns:     pgtransactions.New(dbx),
		requests: pgrequests.New(dbx),
		retry:    retry,
		now:      time.Now,
	}
}

// Entry is one balance move of a user. Amount is always positive; the
// direction comes from Debit or Credit.
type Entry struct {
	UserID      uint64
	Currency    model.Currency
	Amount      int64
	Type        string
	Description string
	RoundID     uuid.NullUUID
	WagerID     uuid.NullUUID
	GameType    model.GameType
	Reference   string
}

func (e Entry) validate() error {
	if e.UserID == 0 {
		return model.Invalid("userId", "required")
	}
	if !e.Currency.Valid() {
		return model.Invalid("currency", "unknown currency %q", e.Currency)
	}
	if e.Amount <= 0 {
		return model.Invalid("amount", "must be positive")
	}
	if e.Type == "" {
		return model.Invalid("type", "required")
	}

	return nil
}

// Debit locks the account, takes Amount from it and appends the audit
// record with the resulting balance.
func (s *Service) Debit(tx *sql.Tx, e Entry) (model.Transaction, error) {
	err := e.validate()
	if err != nil {
		return model.Transaction{}, err
	}

	balances, err := s.accounts.LockAndGetBalances(tx, e.UserID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("lock account: %w", err)
	}

	if balances.Of(e.Currency) < e.Amount {
		return model.Transaction{}, fmt.Errorf("pre-check debit of %d %s: %w", e.Amount, e.Currency, accounts.ErrInsufficientFunds)
	}

	after, err := s.accounts.Decrease(tx, e.UserID, e.Currency, e.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("decrease balance: %w", err)
	}

	return s.append(tx, e, -e.Amount, after)
}

// Credit adds Amount to the account and appends the audit record.
func (s *Service) Credit(tx *sql.Tx, e Entry) (model.Transaction, error) {
	err := e.validate()
	if err != nil {
		return model.Transaction{}, err
	}

	after, err := s.accounts.Increase(tx, e.UserID, e.Currency, e.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("increase balance: %w", err)
	}

	return s.append(tx, e, e.Amount, after)
}

func (s *Service) append(tx *sql.Tx, e Entry, signed, after int64) (model.Transaction, error) {
	userID := e.UserID

	rec, err := s.txns.Insert(tx, model.Transaction{
		UserID:       &userID,
		RoundID:      e.RoundID,
		WagerID:      e.WagerID,
		Currency:     e.Currency,
		Amount:       signed,
		Type:         e.Type,
		Description:  e.Description,
		BalanceAfter: &after,
		GameType:     e.GameType,
		Reference:    e.Reference,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return rec, nil
}

// HouseEntry is the aggregate house result of one settled round. Amount is
// signed: negative when the house funded more than it took in.
type HouseEntry struct {
	RoundID     uuid.UUID
	GameType    model.GameType
	Currency    model.Currency
	Amount      int64
	Description string
}

// RecordHouse appends the admin_profit record of a round in one currency. A
// second record for the same round and currency fails with
// transactions.ErrDuplicateHouseEntry.
func (s *Service) RecordHouse(tx *sql.Tx, h HouseEntry) (model.Transaction, error) {
	if !h.Currency.Valid() {
		return model.Transaction{}, model.Invalid("currency", "unknown currency %q", h.Currency)
	}

	rec, err := s.txns.Insert(tx, model.Transaction{
		RoundID:     uuid.NullUUID{UUID: h.RoundID, Valid: true},
		Currency:    h.Currency,
		Amount:      h.Amount,
		Type:        model.TxAdminProfit,
		Description: h.Description,
		GameType:    h.GameType,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("insert house entry: %w", err)
	}

	return rec, nil
}

// Exists reports a missing account as accounts.ErrAccountNotFound.
func (s *Service) Exists(tx *sql.Tx, userID uint64) error {
	return s.accounts.Exists(tx, userID)
}

// LockBalances locks the account row for the rest of tx.
func (s *Service) LockBalances(tx *sql.Tx, userID uint64) (model.Balances, error) {
	return s.accounts.LockAndGetBalances(tx, userID)
}
