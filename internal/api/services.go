package api

import (
	"context"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	"github.com/fastprodman/wagerledger/internal/services/betting"
	"github.com/fastprodman/wagerledger/internal/services/duel"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/lifecycle"
	"github.com/google/uuid"
)

type AccountService interface {
	CreateAccount(ctx context.Context, a model.Account) (model.Account, error)
	Adjust(ctx context.Context, adj ledger.Adjustment) (model.Transaction, error)
	Balances(ctx context.Context, userID uint64) (model.Balances, error)
	History(ctx context.Context, userID uint64, limit int, beforeID int64) ([]model.Transaction, error)
	Audit(ctx context.Context, userID uint64) (ledger.AuditReport, error)
	RequestWithdrawal(ctx context.Context, userID uint64, amount int64) (model.Request, error)
	RequestLoan(ctx context.Context, userID uint64, amount int64) (model.Request, error)
	ApproveRequest(ctx context.Context, id uuid.UUID) (model.Request, error)
	DeclineRequest(ctx context.Context, id uuid.UUID) (model.Request, error)
	Requests(ctx context.Context, f requests.ListFilter) ([]model.Request, error)
	Profit(ctx context.Context) (model.ProfitReport, error)
}

type RoundService interface {
	Open(ctx context.Context, g model.GameType, in model.Settings) (model.Round, error)
	Close(ctx context.Context, id uuid.UUID) (model.Round, error)
	Reset(ctx context.Context, id uuid.UUID) (model.ResetSummary, error)
	Get(ctx context.Context, id uuid.UUID) (lifecycle.RoundView, error)
	List(ctx context.Context, f rounds.ListFilter) ([]model.Round, error)
	Odds(ctx context.Context, id uuid.UUID) (model.MarketOdds, error)
	Wagers(ctx context.Context, id uuid.UUID) ([]model.Wager, error)
	CallNumber(ctx context.Context, id uuid.UUID, n int) ([]int, error)
}

type BettingService interface {
	PlaceBet(ctx context.Context, userID uint64, roundID uuid.UUID, sel model.Selection, stake int64) (betting.WagerReceipt, error)
}

type SettlementService interface {
	Settle(ctx context.Context, roundID uuid.UUID, outcome model.Outcome) (model.SettlementSummary, error)
}

type DuelService interface {
	CreateRoom(ctx context.Context, hostID uint64, stake int64) (duel.Seat, error)
	JoinRoom(ctx context.Context, roomID uuid.UUID, guestID uint64) (duel.Seat, error)
	SubmitMove(ctx context.Context, roomID uuid.UUID, userID uint64, move model.Move) (duel.MoveResult, error)
	Rematch(ctx context.Context, parentID uuid.UUID, userID uint64) (duel.Seat, error)
	DeclineRematch(ctx context.Context, parentID uuid.UUID, userID uint64) (model.ResetSummary, error)
}

// Services are the domain operations the API exposes.
type Services struct {
	Accounts   AccountService
	Rounds     RoundService
	Betting    BettingService
	Settlement SettlementService
	Duels      DuelService
}
