package api

import (
	"net/http"

	"github.com/fastprodman/wagerledger/internal/model"
)

type createRoomRequest struct {
	Stake int64 `json:"stake"`
}

// CreateRoomHandler handles POST /duels
func (h *HandlerProvider) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seat, err := h.svc.Duels.CreateRoom(r.Context(), identityFrom(r.Context()).UserID, req.Stake)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, seat)
}

// JoinRoomHandler handles POST /duels/{roundId}/join
func (h *HandlerProvider) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	seat, err := h.svc.Duels.JoinRoom(r.Context(), id, identityFrom(r.Context()).UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, seat)
}

type moveRequest struct {
	Move model.Move `json:"move"`
}

// SubmitMoveHandler handles POST /duels/{roundId}/moves
func (h *HandlerProvider) SubmitMoveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	var req moveRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Duels.SubmitMove(r.Context(), id, identityFrom(r.Context()).UserID, req.Move)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// RematchHandler handles POST /duels/{roundId}/rematch
func (h *HandlerProvider) RematchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	seat, err := h.svc.Duels.Rematch(r.Context(), id, identityFrom(r.Context()).UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, seat)
}

// DeclineRematchHandler handles POST /duels/{roundId}/rematch/decline
func (h *HandlerProvider) DeclineRematchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRoundIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roundId in path")
		return
	}

	sum, err := h.svc.Duels.DeclineRematch(r.Context(), id, identityFrom(r.Context()).UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sum)
}
