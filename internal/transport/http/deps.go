package http

import (
	"context"

	"github.com/go-confirm-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateBalance writes next only while the stored balance still equals expected.
	UpdateBalance(ctx context.Context, email string, expected, next int64) error
	UpdateName(ctx context.Context, email, name string) (*domain.User, error)
}

// ReviewRepository is the minimal interface the router requires from a review store.
type ReviewRepository interface {
	Put(ctx context.Context, rv *domain.Review) error
	ListByProduct(ctx context.Context, productID string, limit int32) ([]domain.Review, error)
}

// Mailer delivers confirmation codes.
type Mailer interface {
	SendEmail(to, subject, body string) error
}
