package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/pkg/id"
	"github.com/go-confirm-api/internal/pkg/keylock"
)

// Credentials identify the caller of an account operation.
type Credentials struct {
	Email string
	Token string
}

// Gate reports whether token is the current session token of email.
type Gate interface {
	Authorize(ctx context.Context, email, token string) bool
}

type Service interface {
	Balance(ctx context.Context, creds Credentials) (int64, error)
	AdjustBalance(ctx context.Context, creds Credentials, sum int64) (int64, error)
	UpdateName(ctx context.Context, creds Credentials, name string) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateBalance(ctx context.Context, email string, expected, next int64) error
	UpdateName(ctx context.Context, email, name string) (*domain.User, error)
}

type service struct {
	gate  Gate
	users userStore
	locks *keylock.Locker
}

type ServiceDeps struct {
	Gate  Gate
	Users userStore
	Locks *keylock.Locker
}

func NewService(deps ServiceDeps) Service {
	locks := deps.Locks
	if locks == nil {
		locks = keylock.New()
	}
	return &service{gate: deps.Gate, users: deps.Users, locks: locks}
}

func (s *service) authorize(ctx context.Context, creds Credentials) error {
	if !s.gate.Authorize(ctx, creds.Email, creds.Token) {
		return domain.ErrUnauthorized
	}
	return nil
}

// Balance returns 0 for an email without a stored record.
func (s *service) Balance(ctx context.Context, creds Credentials) (int64, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return 0, err
	}
	u, err := s.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load user: %v: %w", err, domain.ErrDependency)
	}
	return u.Balance, nil
}

// AdjustBalance adds sum (which may be negative) to the balance and returns the result.
// The balance never drops below zero.
func (s *service) AdjustBalance(ctx context.Context, creds Credentials, sum int64) (int64, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(creds.Email)
	defer unlock()

	next, err := s.applySum(ctx, creds.Email, sum)
	if errors.Is(err, domain.ErrConflict) {
		// The record was created or changed by another writer after the read. Retry once.
		next, err = s.applySum(ctx, creds.Email, sum)
	}
	if err != nil {
		return 0, err
	}

	slog.Info("balance adjusted", "email", creds.Email, "sum", sum, "balance", next)
	return next, nil
}

// applySum reads the balance, checks the result and writes it back.
// A record is created for an email that has none.
func (s *service) applySum(ctx context.Context, email string, sum int64) (int64, error) {
	var current int64
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = nil
	case err != nil:
		return 0, fmt.Errorf("load user: %v: %w", err, domain.ErrDependency)
	default:
		current = u.Balance
	}

	if sum > 0 && current > math.MaxInt64-sum {
		return 0, fmt.Errorf("balance %d, requested %d: balance overflow: %w", current, sum, domain.ErrBadRequest)
	}
	next := current + sum
	if next < 0 {
		return 0, fmt.Errorf("balance %d, requested %d: %w", current, sum, domain.ErrInsufficientFunds)
	}

	if u == nil {
		now := time.Now().UTC()
		err = s.users.Create(ctx, &domain.User{
			UserID:    id.NewAt(now),
			Email:     email,
			Balance:   next,
			CreatedAt: now,
			UpdatedAt: now,
		})
	} else {
		err = s.users.UpdateBalance(ctx, email, current, next)
	}
	if errors.Is(err, domain.ErrConflict) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("store balance: %v: %w", err, domain.ErrDependency)
	}
	return next, nil
}

func (s *service) UpdateName(ctx context.Context, creds Credentials, name string) (*domain.User, error) {
	if err := s.authorize(ctx, creds); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateName(ctx, creds.Email, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update name: %v: %w", err, domain.ErrDependency)
	}
	return u, nil
}
