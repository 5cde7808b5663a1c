package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-confirm-api/internal/application/account"
	"github.com/go-confirm-api/internal/application/confirmation"
	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockConfirmationSvc struct{ mock.Mock }

func (m *mockConfirmationSvc) RequestConfirmation(ctx context.Context, email string) (*confirmation.IssueResult, error) {
	args := m.Called(ctx, email)
	res, _ := args.Get(0).(*confirmation.IssueResult)
	return res, args.Error(1)
}
func (m *mockConfirmationSvc) ConfirmByCode(ctx context.Context, email, code string) (*confirmation.ConfirmResult, error) {
	args := m.Called(ctx, email, code)
	res, _ := args.Get(0).(*confirmation.ConfirmResult)
	return res, args.Error(1)
}
func (m *mockConfirmationSvc) Authorize(ctx context.Context, email, token string) bool {
	return m.Called(ctx, email, token).Bool(0)
}

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Balance(ctx context.Context, creds account.Credentials) (int64, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockAccountSvc) AdjustBalance(ctx context.Context, creds account.Credentials, sum int64) (int64, error) {
	args := m.Called(ctx, creds, sum)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockAccountSvc) UpdateName(ctx context.Context, creds account.Credentials, name string) (*domain.User, error) {
	args := m.Called(ctx, creds, name)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockReviewSvc struct{ mock.Mock }

func (m *mockReviewSvc) Create(ctx context.Context, creds account.Credentials, productID string, req domain.CreateReviewRequest) (*domain.Review, error) {
	args := m.Called(ctx, creds, productID, req)
	rv, _ := args.Get(0).(*domain.Review)
	return rv, args.Error(1)
}
func (m *mockReviewSvc) List(ctx context.Context, productID string, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, productID, limit)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

// --- helpers ---

var testCreds = account.Credentials{Email: "a@x.com", Token: "T1"}

// testRouter mirrors the production routes that the handlers under test serve.
func testRouter(conf *ConfirmationHandler, acc *AccountHandler, rev *ReviewHandler) http.Handler {
	r := chi.NewRouter()
	health := NewHealthHandler()
	r.Get("/", health.Welcome)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", health.Ping)
		if conf != nil {
			r.Post("/init-email-confirm", conf.InitEmailConfirm)
			r.Post("/confirm-email-by-code", conf.ConfirmByCode)
			r.Post("/login-by-token", conf.LoginByToken)
		}
		if rev != nil {
			r.Get("/products/{productID}/reviews", rev.List)
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.Credentials)
			if acc != nil {
				r.Get("/balance", acc.Balance)
				r.Post("/balance/adjust", acc.AdjustBalance)
				r.Put("/user/name", acc.UpdateName)
			}
			if rev != nil {
				r.Post("/products/{productID}/reviews", rev.Create)
			}
		})
	})
	return r
}

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func withCreds(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer "+testCreds.Token)
	r.Header.Set(middleware.EmailHeader, testCreds.Email)
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

// envelope decodes the response body; data is left raw for per-test decoding.
type envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func dataString(t *testing.T, env envelope) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}
