package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
	"github.com/google/uuid"
)

// MaxLoan is the largest loan a player may ask for, in points.
const MaxLoan = 1_000

// RequestWithdrawal holds amount of cash from the user's balance until an
// administrator resolves the request. Declining returns the cash.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint64, amount int64) (model.Request, error) {
	return s.openRequest(ctx, userID, model.RequestWithdrawal, amount)
}

// RequestLoan records a points loan request. Nothing moves until approval.
func (s *Service) RequestLoan(ctx context.Context, userID uint64, amount int64) (model.Request, error) {
	return s.openRequest(ctx, userID, model.RequestLoan, amount)
}

func (s *Service) openRequest(ctx context.Context, userID uint64, kind model.RequestKind, amount int64) (model.Request, error) {
	if amount <= 0 {
		return model.Request{}, model.Invalid("amount", "must be positive")
	}
	if kind == model.RequestLoan && amount > MaxLoan {
		return model.Request{}, model.Invalid("amount", "loans are capped at %d", MaxLoan)
	}

	req := model.Request{
		ID:       uuid.New(),
		UserID:   userID,
		Kind:     kind,
		Currency: kind.Currency(),
		Amount:   amount,
		Status:   model.RequestPending,
	}

	var out model.Request

	err := pgutils.Retry(ctx, s.retry, "open_request", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			err := s.accounts.Exists(tx, userID)
			if err != nil {
				return fmt.Errorf("check account: %w", err)
			}

			out, err = s.requests.Insert(tx, req)
			if err != nil {
				return err
			}

			if kind != model.RequestWithdrawal {
				return nil
			}

			_, err = s.Debit(tx, Entry{
				UserID:      userID,
				Currency:    req.Currency,
				Amount:      amount,
				Type:        model.TxWithdrawal,
				Description: "Cash withdrawal request",
				Reference:   "request:" + req.ID.String() + ":hold",
			})

			return err
		})
	})
	if err != nil {
		return model.Request{}, fmt.Errorf("open %s request: %w", kind, err)
	}

	slog.InfoContext(ctx, "request opened", "request_id", out.ID, "user_id", userID, "kind", kind, "amount", amount)

	return out, nil
}

// ApproveRequest resolves a pending request. An approved loan credits its
// points. An approved withdrawal keeps the cash already held.
func (s *Service) ApproveRequest(ctx context.Context, id uuid.UUID) (model.Request, error) {
	return s.resolveRequest(ctx, id, model.RequestApproved)
}

// DeclineRequest resolves a pending request. A declined withdrawal returns
// the held cash.
func (s *Service) DeclineRequest(ctx context.Context, id uuid.UUID) (model.Request, error) {
	return s.resolveRequest(ctx, id, model.RequestDeclined)
}

func (s *Service) resolveRequest(ctx context.Context, id uuid.UUID, to model.RequestStatus) (model.Request, error) {
	var out model.Request

	err := pgutils.Retry(ctx, s.retry, "resolve_request", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			req, err := s.requests.LockForUpdate(tx, id)
			if err != nil {
				return err
			}
			if req.Status != model.RequestPending {
				return fmt.Errorf("request is %s: %w", req.Status, model.ErrInvalidTransition)
			}

			entry := Entry{
				UserID:    req.UserID,
				Currency:  req.Currency,
				Amount:    req.Amount,
				Reference: "request:" + req.ID.String(),
			}

			switch {
			case req.Kind == model.RequestLoan && to == model.RequestApproved:
				entry.Type, entry.Description = model.TxLoanApproved, "Loan approved"
			case req.Kind == model.RequestWithdrawal && to == model.RequestDeclined:
				entry.Type, entry.Description = model.TxWithdrawalDecline, "Cash withdrawal declined, amount returned"
			}

			if entry.Type != "" {
				_, err = s.Credit(tx, entry)
				if err != nil {
					return err
				}
			}

			out, err = s.requests.Resolve(tx, id, to)

			return err
		})
	})
	if err != nil {
		return model.Request{}, fmt.Errorf("resolve request: %w", err)
	}

	slog.InfoContext(ctx, "request resolved", "request_id", id, "kind", out.Kind, "status", out.Status)

	return out, nil
}

func (s *Service) Requests(ctx context.Context, f requests.ListFilter) ([]model.Request, error) {
	list, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return list, nil
}
