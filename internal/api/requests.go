package api

import (
	"net/http"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
)

type openRequestRequest struct {
	Kind   model.RequestKind `json:"kind"`
	Amount int64             `json:"amount"`
}

// OpenRequestHandler handles POST /accounts/{userId}/requests
func (h *HandlerProvider) OpenRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req openRequestRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var out model.Request

	switch req.Kind {
	case model.RequestWithdrawal:
		out, err = h.svc.Accounts.RequestWithdrawal(r.Context(), userID, req.Amount)
	case model.RequestLoan:
		out, err = h.svc.Accounts.RequestLoan(r.Context(), userID, req.Amount)
	default:
		writeError(w, http.StatusBadRequest, "kind must be withdrawal or loan")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// ListUserRequestsHandler handles GET /accounts/{userId}/requests
func (h *HandlerProvider) ListUserRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	h.listRequests(w, r, requests.ListFilter{UserID: userID})
}

// ListRequestsHandler handles GET /requests?status=pending
func (h *HandlerProvider) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, requests.ListFilter{})
}

func (h *HandlerProvider) listRequests(w http.ResponseWriter, r *http.Request, f requests.ListFilter) {
	f.Status = model.RequestStatus(r.URL.Query().Get("status"))

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Limit = int(limit)

	list, err := h.svc.Accounts.Requests(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": list})
}

// ApproveRequestHandler handles POST /requests/{requestId}/approve
func (h *HandlerProvider) ApproveRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRequestIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Accounts.ApproveRequest(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// DeclineRequestHandler handles POST /requests/{requestId}/decline
func (h *HandlerProvider) DeclineRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseRequestIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Accounts.DeclineRequest(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// ProfitHandler handles GET /reports/profit
func (h *HandlerProvider) ProfitHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Accounts.Profit(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
