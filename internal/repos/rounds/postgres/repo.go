package rounds

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
)

var _ rounds.Rounds = (*roundsRepo)(nil)

type roundsRepo struct{ db *sql.DB }

func New(db *sql.DB) *roundsRepo {
	return &roundsRepo{db: db}
}

const selectColumns = `
	id, game_type, status, stakes_total, settings, outcome, summary,
	parent_round_id, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (model.Round, error) {
	var rnd model.Round
	var settings, outcome, summary []byte

	err := row.Scan(
		&rnd.ID, &rnd.GameType, &rnd.Status, &rnd.StakesTotal, &settings, &outcome, &summary,
		&rnd.ParentID, &rnd.CreatedAt, &rnd.UpdatedAt,
	)
	if err != nil {
		return model.Round{}, err
	}

	err = json.Unmarshal(settings, &rnd.Settings)
	if err != nil {
		return model.Round{}, fmt.Errorf("decode settings: %w", err)
	}

	if outcome != nil {
		rnd.Outcome = new(model.Outcome)

		err = json.Unmarshal(outcome, rnd.Outcome)
		if err != nil {
			return model.Round{}, fmt.Errorf("decode outcome: %w", err)
		}
	}

	if summary != nil {
		rnd.Summary = new(model.SettlementSummary)

		err = json.Unmarshal(summary, rnd.Summary)
		if err != nil {
			return model.Round{}, fmt.Errorf("decode summary: %w", err)
		}
	}

	return rnd, nil
}

// nullJSON encodes v, mapping a nil pointer to SQL NULL.
func nullJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return b, nil
}
