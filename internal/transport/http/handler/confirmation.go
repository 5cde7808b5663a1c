package handler

import (
	"fmt"
	"net/http"

	"github.com/go-confirm-api/internal/application/confirmation"
	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/transport/http/middleware"
)

const (
	msgAlreadyPending = "Code is already generated. Check your email."
	msgCodeSent       = "Code sent. Check your email."
	msgCodeEchoFormat = "The newly generated code is '%s'."
	msgLoggedIn       = "Successful logged in"
)

// ConfirmationHandler exposes the email confirmation workflow.
type ConfirmationHandler struct {
	svc confirmation.Service
	// echoCode puts freshly generated codes in the response body. Development only.
	echoCode bool
}

func NewConfirmationHandler(svc confirmation.Service, echoCode bool) *ConfirmationHandler {
	return &ConfirmationHandler{svc: svc, echoCode: echoCode}
}

func (h *ConfirmationHandler) InitEmailConfirm(w http.ResponseWriter, r *http.Request) {
	var req domain.InitEmailConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.RequestConfirmation(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	switch {
	case res.AlreadyPending:
		writeOK(w, http.StatusOK, msgAlreadyPending)
	case h.echoCode:
		writeOK(w, http.StatusOK, fmt.Sprintf(msgCodeEchoFormat, res.Code))
	default:
		writeOK(w, http.StatusOK, msgCodeSent)
	}
}

func (h *ConfirmationHandler) ConfirmByCode(w http.ResponseWriter, r *http.Request) {
	var req domain.ConfirmByCodeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ConfirmByCode(r.Context(), req.Email, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, ConfirmData{Token: res.Session.Token, User: res.User})
}

func (h *ConfirmationHandler) LoginByToken(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginByTokenRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.svc.Authorize(r.Context(), req.Email, req.Token) {
		writeError(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return
	}
	writeOK(w, http.StatusOK, msgLoggedIn)
}
