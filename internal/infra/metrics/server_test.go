package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		health     HealthFunc
		wantStatus int
	}{
		{name: "no_check", health: nil, wantStatus: http.StatusOK},
		{name: "healthy", health: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "unhealthy", health: func(context.Context) error { return errors.New("db down") }, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := NewServer(0, tt.health)
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: want %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_MetricsExposeCollectors(t *testing.T) {
	t.Parallel()

	RecordBet(ResultSuccess, "versus", time.Now())
	IncRetry("place_bet")

	srv := NewServer(0, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"wagerledger_bets_total", "wagerledger_tx_retries_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output misses %s", name)
		}
	}
}
