package accounts

import (
	"database/sql"
	"testing"
)

func seedAccount(t *testing.T, db *sql.DB, id uint64, points, cash int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, username, points, cash) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET points = EXCLUDED.points, cash = EXCLUDED.cash
	`, id, "user", points, cash)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}
