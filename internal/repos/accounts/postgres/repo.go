package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

// balanceColumn maps a currency to its column. Only these two names are ever
// interpolated into SQL.
func balanceColumn(c model.Currency) (string, error) {
	switch c {
	case model.CurrencyPoints:
		return "points", nil
	case model.CurrencyCash:
		return "cash", nil
	default:
		return "", fmt.Errorf("%w: %q", accounts.ErrUnknownCurrency, c)
	}
}
