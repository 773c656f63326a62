package odds

import (
	"time"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

// Market assembles the published view of a market from its stored sides.
func Market(roundID uuid.UUID, sides []model.SelectionTotal) model.MarketOdds {
	m := model.MarketOdds{
		RoundID:   roundID,
		Team1:     DefaultOdds,
		Team2:     DefaultOdds,
		UpdatedAt: time.Now().UTC(),
	}

	for _, s := range sides {
		switch s.Selection {
		case 1:
			m.Team1, m.Total1 = s.Odds, s.StakeTotal
		case 2:
			m.Team2, m.Total2 = s.Odds, s.StakeTotal
		}
	}

	return m
}
