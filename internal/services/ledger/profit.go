package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/transactions"
)

// Profit sums the house entries per currency, overall, per game and since
// the start of the current day, week and month.
func (s *Service) Profit(ctx context.Context) (model.ProfitReport, error) {
	now := s.now().UTC()

	rows, err := s.txns.HouseProfit(ctx, periodsAt(now))
	if err != nil {
		return model.ProfitReport{}, fmt.Errorf("house profit: %w", err)
	}

	report := model.ProfitReport{AsOf: now, Currencies: make(map[model.Currency]model.ProfitTotals)}
	for _, c := range []model.Currency{model.CurrencyPoints, model.CurrencyCash} {
		report.Currencies[c] = model.ProfitTotals{ByGame: make(map[model.GameType]int64)}
	}

	for _, row := range rows {
		t := report.Currencies[row.Currency]
		if t.ByGame == nil {
			t.ByGame = make(map[model.GameType]int64)
		}

		t.Total += row.Total
		t.Today += row.Today
		t.Week += row.Week
		t.Month += row.Month
		t.ByGame[row.GameType] += row.Total

		report.Currencies[row.Currency] = t
	}

	return report, nil
}

// periodsAt returns the starts of the UTC day, the week beginning Sunday and
// the month containing now.
func periodsAt(now time.Time) transactions.Periods {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return transactions.Periods{
		Day:   day,
		Week:  day.AddDate(0, 0, -int(day.Weekday())),
		Month: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
	}
}
