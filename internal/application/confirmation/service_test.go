package confirmation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-confirm-api/internal/domain"
	"github.com/go-confirm-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// sequence returns a generator yielding prefix1, prefix2, ...
func sequence(prefix string) func() (string, error) {
	var n int64
	return func() (string, error) {
		return fmt.Sprintf("%s%d", prefix, atomic.AddInt64(&n, 1)), nil
	}
}

type fixture struct {
	svc      Service
	pending  *memory.PendingRegistry
	sessions *memory.SessionRegistry
	users    *mockUserStore
	mailer   *mockMailer
}

func newFixture() *fixture {
	f := &fixture{
		pending:  memory.NewPendingRegistry(),
		sessions: memory.NewSessionRegistry(),
		users:    &mockUserStore{},
		mailer:   &mockMailer{},
	}
	f.svc = NewService(ServiceDeps{
		Pending:        f.pending,
		Sessions:       f.sessions,
		Users:          f.users,
		Mailer:         f.mailer,
		NewCode:        sequence("C"),
		NewToken:       sequence("T"),
		InitialBalance: 50,
	})
	return f
}

// --- RequestConfirmation ---

func TestRequestConfirmation_NewEmail(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", "Email confirm", "Your code is C1").Return(nil).Once()

	res, err := f.svc.RequestConfirmation(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "C1", res.Code)
	assert.False(t, res.AlreadyPending)

	code, ok := f.pending.Peek("a@x.com")
	assert.True(t, ok)
	assert.Equal(t, "C1", code)
	assert.Equal(t, 1, f.pending.Len())
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestRequestConfirmation_AlreadyPending(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.RequestConfirmation(context.Background(), "a@x.com")
	require.NoError(t, err)

	res, err := f.svc.RequestConfirmation(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, res.AlreadyPending)
	assert.Empty(t, res.Code)

	code, _ := f.pending.Peek("a@x.com")
	assert.Equal(t, "C1", code)
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestRequestConfirmation_MailFailureReleasesReservation(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	f.mailer.On("SendEmail", "a@x.com", mock.Anything, "Your code is C2").Return(nil).Once()

	_, err := f.svc.RequestConfirmation(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.False(t, f.pending.HasPending("a@x.com"))

	res, err := f.svc.RequestConfirmation(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "C2", res.Code)
}

func TestRequestConfirmation_CodeGeneratorFailure(t *testing.T) {
	f := newFixture()
	svc := NewService(ServiceDeps{
		Pending:  f.pending,
		Sessions: f.sessions,
		Users:    f.users,
		Mailer:   f.mailer,
		NewCode:  func() (string, error) { return "", errors.New("entropy exhausted") },
		NewToken: sequence("T"),
	})

	_, err := svc.RequestConfirmation(context.Background(), "a@x.com")
	assert.Error(t, err)
	assert.Equal(t, 0, f.pending.Len())
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestConfirmation_ConcurrentSendsOneMail(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.RequestConfirmation(context.Background(), "a@x.com")
		}()
	}
	wg.Wait()

	f.mailer.AssertNumberOfCalls(t, "SendEmail", 1)
	assert.Equal(t, 1, f.pending.Len())
}

// --- ConfirmByCode ---

func TestConfirmByCode_NoPending(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	assert.ErrorIs(t, err, domain.ErrNoPendingConfirmation)
	assert.NotErrorIs(t, err, domain.ErrCodeMismatch)
}

func TestConfirmByCode_WrongCode(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))

	_, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)

	code, ok := f.pending.Peek("a@x.com")
	assert.True(t, ok)
	assert.Equal(t, "C1", code)
	assert.Equal(t, 0, f.sessions.Len())
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestConfirmByCode_CreatesUser(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@x.com" && u.Balance == 50 && u.UserID != ""
	})).Return(nil).Once()

	res, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Session.Token)
	assert.Equal(t, "a@x.com", res.Session.Email)
	assert.Equal(t, int64(50), res.User.Balance)

	assert.False(t, f.pending.HasPending("a@x.com"))
	assert.Equal(t, 1, f.sessions.Len())
	assert.True(t, f.svc.Authorize(context.Background(), "a@x.com", "T1"))
	f.users.AssertExpectations(t)
}

func TestConfirmByCode_ExistingUser(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com", Balance: 7}, nil)

	res, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.Balance)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmByCode_CreateRaceReadsWinner(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
	f.users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "winner", Email: "a@x.com"}, nil).Once()

	res, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	require.NoError(t, err)
	assert.Equal(t, "winner", res.User.UserID)
}

func TestConfirmByCode_StoreFailureKeepsPending(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("throttled"))

	_, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.True(t, f.pending.HasPending("a@x.com"))
	assert.Equal(t, 0, f.sessions.Len())
}

func TestConfirmByCode_OnlyOnce(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.pending.Issue("a@x.com", "C1"))
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com"}, nil)

	_, err := f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	require.NoError(t, err)

	_, err = f.svc.ConfirmByCode(context.Background(), "a@x.com", "C1")
	assert.ErrorIs(t, err, domain.ErrNoPendingConfirmation)
	assert.Equal(t, 1, f.sessions.Len())
}

// --- Authorize ---

func TestAuthorize_LatestTokenOnly(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com"}, nil)
	ctx := context.Background()

	issue, err := f.svc.RequestConfirmation(ctx, "a@x.com")
	require.NoError(t, err)
	first, err := f.svc.ConfirmByCode(ctx, "a@x.com", issue.Code)
	require.NoError(t, err)

	issue, err = f.svc.RequestConfirmation(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := f.svc.ConfirmByCode(ctx, "a@x.com", issue.Code)
	require.NoError(t, err)

	assert.False(t, f.svc.Authorize(ctx, "a@x.com", first.Session.Token))
	assert.True(t, f.svc.Authorize(ctx, "a@x.com", second.Session.Token))
}

func TestAuthorize_Rejects(t *testing.T) {
	f := newFixture()
	f.sessions.Issue("a@x.com", "T1")
	ctx := context.Background()

	assert.True(t, f.svc.Authorize(ctx, "a@x.com", "T1"))
	assert.False(t, f.svc.Authorize(ctx, "a@x.com", "garbage"))
	assert.False(t, f.svc.Authorize(ctx, "b@x.com", "T1"))
	assert.False(t, f.svc.Authorize(ctx, "a@x.com", ""))
	assert.False(t, f.svc.Authorize(ctx, "", ""))
}

// Walks the documented example end to end.
func TestWorkflow_Example(t *testing.T) {
	f := newFixture()
	f.mailer.On("SendEmail", "a@x.com", "Email confirm", "Your code is C1").Return(nil).Once()
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com", Balance: 50}, nil)
	ctx := context.Background()

	_, err := f.svc.RequestConfirmation(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = f.svc.ConfirmByCode(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
	code, _ := f.pending.Peek("a@x.com")
	assert.Equal(t, "C1", code)

	res, err := f.svc.ConfirmByCode(ctx, "a@x.com", "C1")
	require.NoError(t, err)
	assert.False(t, f.pending.HasPending("a@x.com"))

	assert.True(t, f.svc.Authorize(ctx, "a@x.com", res.Session.Token))
	assert.False(t, f.svc.Authorize(ctx, "a@x.com", "garbage"))
}
