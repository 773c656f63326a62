package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

func (s *Service) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.ID == 0 {
		return model.Account{}, model.Invalid("id", "required")
	}

	a.Username = strings.TrimSpace(a.Username)
	if a.Username == "" {
		return model.Account{}, model.Invalid("username", "required")
	}

	created, err := s.accounts.Create(ctx, a)
	if err != nil {
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

// Adjustment is an administrative balance change. A positive Amount credits,
// a negative one debits. Reference makes the call idempotent: a reused
// reference is rejected with transactions.ErrDuplicateTransaction and moves
// nothing.
type Adjustment struct {
	UserID      uint64
	Currency    model.Currency
	Amount      int64
	Reference   string
	Description string
}

func (s *Service) Adjust(ctx context.Context, adj Adjustment) (model.Transaction, error) {
	if adj.Amount == 0 {
		return model.Transaction{}, model.Invalid("amount", "must not be zero")
	}
	if !adj.Currency.Valid() {
		return model.Transaction{}, model.Invalid("currency", "unknown currency %q", adj.Currency)
	}

	if adj.Reference == "" {
		adj.Reference = "adjust:" + uuid.NewString()
	}

	entry := Entry{
		UserID:      adj.UserID,
		Currency:    adj.Currency,
		Amount:      adj.Amount,
		Type:        model.TxAdminPointsAdjust,
		Description: adj.Description,
		Reference:   adj.Reference,
	}
	if adj.Currency == model.CurrencyCash {
		entry.Type = model.TxAdminCashAdjust
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("Admin %s adjustment", adj.Currency)
	}

	var rec model.Transaction

	err := pgutils.Retry(ctx, s.retry, "adjust_balance", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			err := s.accounts.Exists(tx, adj.UserID)
			if err != nil {
				return fmt.Errorf("check account: %w", err)
			}

			if entry.Amount > 0 {
				rec, err = s.Credit(tx, entry)
				return err
			}

			debit := entry
			debit.Amount = -entry.Amount
			rec, err = s.Debit(tx, debit)

			return err
		})
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("adjust balance: %w", err)
	}

	return rec, nil
}

func (s *Service) Balances(ctx context.Context, userID uint64) (model.Balances, error) {
	b, err := s.accounts.GetBalances(ctx, userID)
	if err != nil {
		return model.Balances{}, fmt.Errorf("get balances: %w", err)
	}

	return b, nil
}

func (s *Service) History(ctx context.Context, userID uint64, limit int, beforeID int64) ([]model.Transaction, error) {
	_, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	list, err := s.txns.ListByUser(ctx, userID, limit, beforeID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return list, nil
}

// AuditReport compares an account's balances with the sum of its log.
type AuditReport struct {
	UserID     uint64                   `json:"userId"`
	Balances   model.Balances           `json:"balances"`
	LogTotals  map[model.Currency]int64 `json:"logTotals"`
	Consistent bool                     `json:"consistent"`
}

func (s *Service) Audit(ctx context.Context, userID uint64) (AuditReport, error) {
	var report AuditReport

	// Every log write of a user also writes the account row, so holding the
	// row lock freezes both while the log is summed.
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := s.accounts.LockAndGetBalances(tx, userID)
		if err != nil {
			return fmt.Errorf("get balances: %w", err)
		}

		sums, err := s.txns.SumByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum log: %w", err)
		}

		report = AuditReport{
			UserID:     userID,
			Balances:   b,
			LogTotals:  sums,
			Consistent: sums[model.CurrencyPoints] == b.Points && sums[model.CurrencyCash] == b.Cash,
		}

		return nil
	})
	if err != nil {
		return AuditReport{}, fmt.Errorf("audit account: %w", err)
	}

	return report, nil
}
