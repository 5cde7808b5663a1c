package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-confirm-api/internal/application/account"
)

type contextKey string

const CredentialsKey contextKey = "credentials"

// EmailHeader carries the email the bearer token was issued for.
const EmailHeader = "X-User-Email"

// UnauthorizedMessage is the error text of every rejected credential check.
const UnauthorizedMessage = "Token expired or undefined"

// Credentials reads the Bearer token and the X-User-Email header into the request context.
// Requests missing either are rejected; the token itself is checked by the services.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
			return
		}
		creds := account.Credentials{
			Email: strings.TrimSpace(r.Header.Get(EmailHeader)),
			Token: strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")),
		}
		if creds.Email == "" || creds.Token == "" {
			writeJSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
			return
		}
		ctx := context.WithValue(r.Context(), CredentialsKey, creds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CredentialsFromContext extracts the caller credentials stored by Credentials.
func CredentialsFromContext(ctx context.Context) (account.Credentials, bool) {
	c, ok := ctx.Value(CredentialsKey).(account.Credentials)
	return c, ok
}
