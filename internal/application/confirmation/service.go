package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/pkg/id"
	"github.com/go-confirm-api/internal/pkg/keylock"
)

const (
	mailSubject    = "Email confirm"
	mailBodyFormat = "Your code is %s"
)

// Service runs the email confirmation workflow: NONE -> PENDING -> CONFIRMED.
type Service interface {
	RequestConfirmation(ctx context.Context, email string) (*IssueResult, error)
	ConfirmByCode(ctx context.Context, email, code string) (*ConfirmResult, error)
	Authorize(ctx context.Context, email, token string) bool
}

// IssueResult describes the outcome of RequestConfirmation.
// Code is empty when AlreadyPending is set.
type IssueResult struct {
	Code           string
	AlreadyPending bool
}

// ConfirmResult carries the session minted by a successful verification.
type ConfirmResult struct {
	Session domain.Session
	User    *domain.User
}

type pendingStore interface {
	HasPending(email string) bool
	Issue(email, code string) error
	Peek(email string) (string, bool)
	Consume(email string)
	ConsumeIf(email, code string) bool
}

type sessionStore interface {
	Issue(email, token string)
	Verify(email, token string) bool
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	pending        pendingStore
	sessions       sessionStore
	users          userStore
	mailer         mailer
	locks          *keylock.Locker
	newCode        func() (string, error)
	newToken       func() (string, error)
	initialBalance int64
}

type ServiceDeps struct {
	Pending  pendingStore
	Sessions sessionStore
	Users    userStore
	Mailer   mailer
	// Locks serializes the workflow per email. A private locker is used when nil.
	Locks          *keylock.Locker
	NewCode        func() (string, error)
	NewToken       func() (string, error)
	InitialBalance int64
}

func NewService(deps ServiceDeps) Service {
	locks := deps.Locks
	if locks == nil {
		locks = keylock.New()
	}
	return &service{
		pending:        deps.Pending,
		sessions:       deps.Sessions,
		users:          deps.Users,
		mailer:         deps.Mailer,
		locks:          locks,
		newCode:        deps.NewCode,
		newToken:       deps.NewToken,
		initialBalance: deps.InitialBalance,
	}
}

func (s *service) RequestConfirmation(ctx context.Context, email string) (*IssueResult, error) {
	unlock := s.locks.Lock(email)
	defer unlock()

	if s.pending.HasPending(email) {
		return &IssueResult{AlreadyPending: true}, nil
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}
	if err := s.pending.Issue(email, code); err != nil {
		// Issue only fails when an entry already exists.
		return &IssueResult{AlreadyPending: true}, nil
	}

	if err := s.mailer.SendEmail(email, mailSubject, fmt.Sprintf(mailBodyFormat, code)); err != nil {
		// Release the reservation so the caller can ask again.
		if !s.pending.ConsumeIf(email, code) {
			slog.Warn("pending confirmation changed before rollback", "email", email)
		}
		return nil, fmt.Errorf("send confirmation code: %v: %w", err, domain.ErrDependency)
	}

	slog.Info("confirmation code issued", "email", email)
	return &IssueResult{Code: code}, nil
}

func (s *service) ConfirmByCode(ctx context.Context, email, code string) (*ConfirmResult, error) {
	unlock := s.locks.Lock(email)
	defer unlock()

	expected, ok := s.pending.Peek(email)
	if !ok {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrNoPendingConfirmation)
	}
	if expected != code {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrCodeMismatch)
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	u, err := s.ensureUser(ctx, email)
	if err != nil {
		return nil, err
	}

	s.sessions.Issue(email, token)
	s.pending.Consume(email)

	slog.Info("email confirmed", "email", email, "user_id", u.UserID)
	return &ConfirmResult{Session: domain.Session{Email: email, Token: token}, User: u}, nil
}

func (s *service) Authorize(_ context.Context, email, token string) bool {
	if email == "" || token == "" {
		return false
	}
	return s.sessions.Verify(email, token)
}

// ensureUser returns the stored record for email, creating it on first confirmation.
func (s *service) ensureUser(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load user: %v: %w", err, domain.ErrDependency)
	}

	now := time.Now().UTC()
	u = &domain.User{
		UserID:    id.NewAt(now),
		Email:     email,
		Balance:   s.initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.users.Create(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		// Created by another process between the read and the write.
		existing, gerr := s.users.GetByEmail(ctx, email)
		if gerr != nil {
			return nil, fmt.Errorf("load user: %v: %w", gerr, domain.ErrDependency)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %v: %w", err, domain.ErrDependency)
	}
	return u, nil
}
