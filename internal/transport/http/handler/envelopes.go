package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-confirm-api/internal/application/account"
	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/pkg/validate"
	"github.com/go-confirm-api/internal/transport/http/middleware"
)

// Messages for failures whose details stay in the server log.
const (
	msgUnavailable = "Service temporarily unavailable."
	msgInternal    = "Internal server error."
)

// Meta reports the outcome of a request.
type Meta struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// BalanceData is returned by the balance endpoints.
type BalanceData struct {
	Balance int64 `json:"balance"`
}

// ConfirmData is returned by a successful code verification.
type ConfirmData struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// ReviewsData wraps a page of reviews.
type ReviewsData struct {
	Reviews []domain.Review `json:"reviews"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Meta: Meta{Success: true}, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Meta: Meta{Error: msg}})
}

// httpError maps a domain error to its status code and client-facing message.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNoPendingConfirmation):
		writeError(w, http.StatusNotFound, "No pending confirmation for this email.")
	case errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, "Code is not right.")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "Недостаточно средств")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDependency):
		slog.Error("dependency failure", "err", err)
		writeError(w, http.StatusBadGateway, msgUnavailable)
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decode reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httpError(w, err)
		return false
	}
	return true
}

// credentials returns the caller set by middleware.Credentials.
func credentials(w http.ResponseWriter, r *http.Request) (creds account.Credentials, ok bool) {
	creds, ok = middleware.CredentialsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
	}
	return creds, ok
}
