package wagers

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
)

const singleTicketKey = "wagers_single_ticket_key"

func (r *wagersRepo) Insert(tx *sql.Tx, w model.Wager) (model.Wager, error) {
	selection, err := json.Marshal(w.Selection)
	if err != nil {
		return model.Wager{}, fmt.Errorf("encode selection: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO wagers (
			id, round_id, user_id, game_type, stake, currency, selection,
			single_ticket, locked_odds, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, w.ID, w.RoundID, w.UserID, w.GameType, w.Stake, w.Currency, selection,
		w.SingleTicket, w.LockedOdds, w.Status,
	).Scan(&w.CreatedAt)
	if err != nil {
		if constraint, dup := pgutils.UniqueViolation(err); dup && constraint == singleTicketKey {
			return model.Wager{}, wagers.ErrDuplicateWager
		}

		return model.Wager{}, fmt.Errorf("insert wager: %w", err)
	}

	return w, nil
}
