package api

import (
	"errors"
	"net/http"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
)

type openRoundRequest struct {
	GameType model.GameType `json:"gameType"`
	Settings model.Settings `json:"settings"`
}

// OpenRoundHandler handles POST /rounds
func (h *HandlerProvider) OpenRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req openRoundRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rnd, err := h.svc.Rounds.Open(r.Context(), req.GameType, req.Settings)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rnd)
}

// ListRoundsHandler handles GET /rounds
func (h *HandlerProvider) ListRoundsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()

	list, err := h.svc.Rounds.List(r.Context(), rounds.ListFilter{
		GameType: model.GameType(q.Get("gameType")),
		Status:   model.RoundStatus(q.Get("status")),
		Limit:    int(limit),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rounds": list})
}

// GetRoundHandler handles GET /rounds/{roundId}
func (h *HandlerProvider) GetRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	view, err := h.svc.Rounds.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// GetOddsHandler handles GET /rounds/{roundId}/odds
func (h *HandlerProvider) GetOddsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	m, err := h.svc.Rounds.Odds(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// ListWagersHandler handles GET /rounds/{roundId}/wagers
func (h *HandlerProvider) ListWagersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	list, err := h.svc.Rounds.Wagers(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wagers": list})
}

// CloseRoundHandler handles POST /rounds/{roundId}/close
func (h *HandlerProvider) CloseRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	rnd, err := h.svc.Rounds.Close(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rnd)
}

type settleRequest struct {
	Outcome model.Outcome `json:"outcome"`
}

// SettleRoundHandler handles POST /rounds/{roundId}/settle. Settling a
// settled round answers 200 with the stored summary and a warning.
func (h *HandlerProvider) SettleRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	var req settleRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := h.svc.Settlement.Settle(r.Context(), id, req.Outcome)
	if err != nil {
		if errors.Is(err, model.ErrAlreadySettled) {
			writeJSON(w, http.StatusOK, map[string]any{"summary": sum, "warning": "round already settled"})
			return
		}

		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"summary": sum})
}

// ResetRoundHandler handles POST /rounds/{roundId}/reset
func (h *HandlerProvider) ResetRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	sum, err := h.svc.Rounds.Reset(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

type callRequest struct {
	Number int `json:"number"`
}

// CallNumberHandler handles POST /rounds/{roundId}/calls
func (h *HandlerProvider) CallNumberHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	var req callRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	called, err := h.svc.Rounds.CallNumber(r.Context(), id, req.Number)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"calls": called})
}

type placeBetRequest struct {
	Selection model.Selection `json:"selection"`
	Stake     int64           `json:"stake"`
}

// PlaceBetHandler handles POST /rounds/{roundId}/wagers
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	var req placeBetRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.svc.Betting.PlaceBet(r.Context(), identityFrom(r.Context()).UserID, id, req.Selection, req.Stake)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}
