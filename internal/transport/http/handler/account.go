package handler

import (
	"net/http"

	"github.com/go-confirm-api/internal/application/account"
	"github.com/go-confirm-api/internal/domain"
)

// AccountHandler serves the token-gated balance and profile endpoints.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	creds, ok := credentials(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Balance(r.Context(), creds)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, BalanceData{Balance: b})
}

func (h *AccountHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	creds, ok := credentials(w, r)
	if !ok {
		return
	}
	var req domain.AdjustBalanceRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.svc.AdjustBalance(r.Context(), creds, *req.Sum)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, BalanceData{Balance: b})
}

func (h *AccountHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	creds, ok := credentials(w, r)
	if !ok {
		return
	}
	var req domain.UpdateNameRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateName(r.Context(), creds, req.Name)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, u)
}
