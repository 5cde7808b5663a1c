package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-confirm-api/internal/application/account"
	"github.com/go-confirm-api/internal/application/confirmation"
	"github.com/go-confirm-api/internal/application/review"
	"github.com/go-confirm-api/internal/config"
	"github.com/go-confirm-api/internal/infrastructure/memory"
	"github.com/go-confirm-api/internal/pkg/keylock"
	"github.com/go-confirm-api/internal/pkg/token"
	"github.com/go-confirm-api/internal/transport/http/handler"
	appmiddleware "github.com/go-confirm-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo   UserRepository
	ReviewRepo ReviewRepository
	Mailer     Mailer
	// Pending and Sessions default to fresh in-memory registries when nil.
	Pending  *memory.PendingRegistry
	Sessions *memory.SessionRegistry
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appmiddleware.EmailHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	pending := deps.Pending
	if pending == nil {
		pending = memory.NewPendingRegistry()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = memory.NewSessionRegistry()
	}
	locks := keylock.New()

	confirmSvc := confirmation.NewService(confirmation.ServiceDeps{
		Pending:        pending,
		Sessions:       sessions,
		Users:          deps.UserRepo,
		Mailer:         deps.Mailer,
		Locks:          locks,
		NewCode:        func() (string, error) { return token.NewConfirmationCode(cfg.ConfirmationCodeDigits) },
		NewToken:       func() (string, error) { return token.NewSessionToken(cfg.SessionTokenBytes) },
		InitialBalance: cfg.InitialBalance,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		Gate:  confirmSvc,
		Users: deps.UserRepo,
		Locks: locks,
	})
	reviewSvc := review.NewService(review.ServiceDeps{
		Gate:       confirmSvc,
		ReviewRepo: deps.ReviewRepo,
	})

	healthH := handler.NewHealthHandler()
	confirmH := handler.NewConfirmationHandler(confirmSvc, cfg.DebugEchoCode)
	accountH := handler.NewAccountHandler(accountSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)

	r.Get("/", healthH.Welcome)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Post("/init-email-confirm", confirmH.InitEmailConfirm)
		r.Post("/confirm-email-by-code", confirmH.ConfirmByCode)
		r.Post("/login-by-token", confirmH.LoginByToken)
		r.Get("/products/{productID}/reviews", reviewH.List)

		// ── Token-gated routes ───────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Credentials)

			r.Get("/balance", accountH.Balance)
			r.Post("/balance/adjust", accountH.AdjustBalance)
			r.Put("/user/name", accountH.UpdateName)
			r.Post("/products/{productID}/reviews", reviewH.Create)
		})
	})

	return r
}
