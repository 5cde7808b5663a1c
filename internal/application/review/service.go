package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-confirm-api/internal/application/account"
	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/pkg/id"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service interface {
	Create(ctx context.Context, creds account.Credentials, productID string, req domain.CreateReviewRequest) (*domain.Review, error)
	List(ctx context.Context, productID string, limit int) ([]domain.Review, error)
}

type reviewStore interface {
	Put(ctx context.Context, rv *domain.Review) error
	ListByProduct(ctx context.Context, productID string, limit int32) ([]domain.Review, error)
}

type service struct {
	gate account.Gate
	repo reviewStore
}

type ServiceDeps struct {
	Gate       account.Gate
	ReviewRepo reviewStore
}

func NewService(deps ServiceDeps) Service {
	return &service{gate: deps.Gate, repo: deps.ReviewRepo}
}

func (s *service) Create(ctx context.Context, creds account.Credentials, productID string, req domain.CreateReviewRequest) (*domain.Review, error) {
	if !s.gate.Authorize(ctx, creds.Email, creds.Token) {
		return nil, domain.ErrUnauthorized
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id is required: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	rv := &domain.Review{
		ReviewID:    id.NewAt(now),
		ProductID:   productID,
		AuthorEmail: creds.Email,
		Text:        req.Text,
		Rating:      req.Rating,
		CreatedAt:   now,
	}
	if err := s.repo.Put(ctx, rv); err != nil {
		return nil, fmt.Errorf("store review: %v: %w", err, domain.ErrDependency)
	}
	return rv, nil
}

// List returns the newest reviews of productID. limit is clamped to [1, 100], 0 means 20.
func (s *service) List(ctx context.Context, productID string, limit int) ([]domain.Review, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id is required: %w", domain.ErrBadRequest)
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	reviews, err := s.repo.ListByProduct(ctx, productID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %v: %w", err, domain.ErrDependency)
	}
	return reviews, nil
}
