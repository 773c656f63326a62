package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	"github.com/fastprodman/wagerledger/internal/repos/transactions"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, model.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, model.ErrDuplicateWager):
		writeError(w, http.StatusConflict, "duplicate wager")
	case errors.Is(err, model.ErrMarketClosed):
		writeError(w, http.StatusConflict, "market closed")
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, transactions.ErrDuplicateTransaction):
		writeError(w, http.StatusConflict, "duplicate transaction")
	case errors.Is(err, accounts.ErrAccountExists):
		writeError(w, http.StatusConflict, "account already exists")
	case errors.Is(err, rounds.ErrRematchExists):
		writeError(w, http.StatusConflict, "rematch already exists")
	case errors.Is(err, model.ErrBetFailed),
		errors.Is(err, model.ErrSettlementFailed),
		errors.Is(err, model.ErrConcurrentModification):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		return "account not found"
	case errors.Is(err, rounds.ErrRoundNotFound):
		return "round not found"
	case errors.Is(err, requests.ErrRequestNotFound):
		return "request not found"
	default:
		return "not found"
	}
}

// decodeJSON reads a size-capped body that must not carry unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// parseUserIDFromPath reads `{userId}` from routes like
//
//	GET /accounts/{userId}/balance
func parseUserIDFromPath(r *http.Request) (uint64, error) {
	return parseUserID(chi.URLParam(r, "userId"))
}

func parseUserID(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("missing userId")
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, errors.New("invalid userId: must be positive")
	}

	return id, nil
}

func parseRequestIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "requestId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid requestId: %w", err)
	}

	return id, nil
}

func parseRoundIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "roundId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid roundId: %w", err)
	}

	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}

	return n, nil
}
