package api

import (
	"net/http"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
)

const defaultHistoryLimit = 50

type createAccountRequest struct {
	ID           uint64 `json:"id"`
	Username     string `json:"username"`
	ReferralCode string `json:"referralCode"`
	ReferredBy   string `json:"referredBy"`
}

// CreateAccountHandler handles POST /accounts
func (h *HandlerProvider) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.svc.Accounts.CreateAccount(r.Context(), model.Account{
		ID:           req.ID,
		Username:     req.Username,
		ReferralCode: req.ReferralCode,
		ReferredBy:   req.ReferredBy,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, acc)
}

// GetBalanceHandler handles GET /accounts/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bal, err := h.svc.Accounts.Balances(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bal)
}

// ListTransactionsHandler handles GET /accounts/{userId}/transactions
func (h *HandlerProvider) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	before, err := queryInt(r, "before")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.svc.Accounts.History(r.Context(), userID, int(limit), before)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": list})
}

type depositRequest struct {
	Currency    model.Currency `json:"currency"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	Description string         `json:"description"`
}

// DepositHandler handles POST /accounts/{userId}/deposits. A negative
// amount withdraws.
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req depositRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.svc.Accounts.Adjust(r.Context(), ledger.Adjustment{
		UserID:      userID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Reference:   req.Reference,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// AuditHandler handles GET /accounts/{userId}/audit
func (h *HandlerProvider) AuditHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	report, err := h.svc.Accounts.Audit(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
