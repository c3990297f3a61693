package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/pkg/jwt"
	"ticketdesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Mock Refresh Token Repository
type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) FindActiveByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) RevokeByHash(ctx context.Context, hash string) (int64, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(int64), args.Error(1)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newUser(t *testing.T, id int64, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	return &domain.User{ID: id, Email: email, PasswordHash: &h}
}

func setupService(t *testing.T) (*Service, *mockUserRepo, *mockRefreshTokenRepo, *clock) {
	t.Helper()
	users := new(mockUserRepo)
	refresh := new(mockRefreshTokenRepo)
	clk := &clock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	tokens := jwt.New("session-secret", "renewal-secret", jwt.WithClock(clk.Now))
	return NewService(users, refresh, tokens), users, refresh, clk
}

func TestService_Register_Success(t *testing.T) {
	svc, users, _, _ := setupService(t)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "agent@x.com" && u.PasswordHash != nil && *u.PasswordHash != "password123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 11
	}).Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{Email: "agent@x.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), user.ID)
	assert.Nil(t, user.PasswordHash)
	users.AssertExpectations(t)
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, users, _, _ := setupService(t)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "agent@x.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Login_Success(t *testing.T) {
	svc, users, refresh, clk := setupService(t)
	users.On("GetByEmail", mock.Anything, "agent@x.com").Return(newUser(t, 5, "agent@x.com", "secret-pass"), nil)

	var stored *domain.RefreshToken
	refresh.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.RefreshToken)
	}).Return(nil)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "agent@x.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	assert.NotEmpty(t, result.RenewalCredential)

	require.NotNil(t, stored)
	assert.Equal(t, int64(5), stored.UserID)
	assert.Equal(t, jwt.HashToken(result.RenewalCredential), stored.TokenHash)
	assert.NotEqual(t, result.RenewalCredential, stored.TokenHash, "plaintext must never be stored")
	assert.Equal(t, clk.now.Add(24*time.Hour), stored.ExpiresAt)
}

func TestService_Login_RememberMeExtendsExpiry(t *testing.T) {
	svc, users, refresh, clk := setupService(t)
	users.On("GetByEmail", mock.Anything, "agent@x.com").Return(newUser(t, 5, "agent@x.com", "secret-pass"), nil)

	var stored *domain.RefreshToken
	refresh.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.RefreshToken)
	}).Return(nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "agent@x.com", Password: "secret-pass", RememberMe: true})
	require.NoError(t, err)
	assert.Equal(t, clk.now.Add(30*24*time.Hour), stored.ExpiresAt)
}

func TestService_Login_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		user  func(t *testing.T) *domain.User
		err   error
		input string
	}{
		{"unknown email", nil, repository.ErrNotFound, "whatever"},
		{"wrong password", func(t *testing.T) *domain.User { return newUser(t, 1, "a@x.com", "right-pass") }, nil, "wrong-pass"},
		{"guest account", func(t *testing.T) *domain.User { return &domain.User{ID: 2, Email: "a@x.com"} }, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, refresh, _ := setupService(t)
			if tt.user != nil {
				users.On("GetByEmail", mock.Anything, "a@x.com").Return(tt.user(t), nil)
			} else {
				users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, tt.err)
			}

			_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: tt.input})
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			refresh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Login_StoreFailure(t *testing.T) {
	svc, users, refresh, _ := setupService(t)
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(newUser(t, 1, "a@x.com", "pass-word"), nil)
	refresh.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "pass-word"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func loginFor(t *testing.T, svc *Service, users *mockUserRepo, refresh *mockRefreshTokenRepo, rememberMe bool) string {
	t.Helper()
	users.On("GetByEmail", mock.Anything, "agent@x.com").Return(newUser(t, 9, "agent@x.com", "secret-pass"), nil)
	refresh.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "agent@x.com", Password: "secret-pass", RememberMe: rememberMe})
	require.NoError(t, err)
	return result.RenewalCredential
}

func TestService_Renew_NoRotation(t *testing.T) {
	svc, users, refresh, _ := setupService(t)
	renewal := loginFor(t, svc, users, refresh, false)

	refresh.On("FindActiveByHash", mock.Anything, jwt.HashToken(renewal)).
		Return(&domain.RefreshToken{UserID: 9, TokenHash: jwt.HashToken(renewal)}, nil)

	for i := 0; i < 3; i++ {
		token, err := svc.Renew(context.Background(), renewal)
		require.NoError(t, err)

		claims, err := svc.tokens.(*jwt.Service).VerifySessionToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(9), claims.UserID)
	}
	refresh.AssertNumberOfCalls(t, "FindActiveByHash", 3)
}

func TestService_Renew_ExpiresAfterOneDay(t *testing.T) {
	svc, users, refresh, clk := setupService(t)
	start := clk.now
	renewal := loginFor(t, svc, users, refresh, false)

	refresh.On("FindActiveByHash", mock.Anything, jwt.HashToken(renewal)).
		Return(&domain.RefreshToken{UserID: 9}, nil)

	clk.now = start.Add(23 * time.Hour)
	_, err := svc.Renew(context.Background(), renewal)
	require.NoError(t, err)

	clk.now = start.Add(24*time.Hour + time.Second)
	_, err = svc.Renew(context.Background(), renewal)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	refresh.AssertNumberOfCalls(t, "FindActiveByHash", 1)
}

func TestService_Renew_RevokedIsDenied(t *testing.T) {
	svc, users, refresh, _ := setupService(t)
	renewal := loginFor(t, svc, users, refresh, true)
	hash := jwt.HashToken(renewal)

	refresh.On("RevokeByHash", mock.Anything, hash).Return(int64(1), nil)
	refresh.On("FindActiveByHash", mock.Anything, hash).Return(nil, repository.ErrNotFound)

	require.NoError(t, svc.Logout(context.Background(), renewal))

	_, err := svc.Renew(context.Background(), renewal)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestService_Renew_InvalidSkipsStore(t *testing.T) {
	svc, _, refresh, _ := setupService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Renew(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
	refresh.AssertNotCalled(t, "FindActiveByHash", mock.Anything, mock.Anything)
}

func TestService_Renew_SessionTokenIsNotARenewalCredential(t *testing.T) {
	svc, _, refresh, _ := setupService(t)
	session, err := svc.tokens.IssueSessionToken(9)
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), session)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	refresh.AssertNotCalled(t, "FindActiveByHash", mock.Anything, mock.Anything)
}

func TestService_Logout_Idempotent(t *testing.T) {
	svc, _, refresh, _ := setupService(t)
	refresh.On("RevokeByHash", mock.Anything, jwt.HashToken("unknown")).Return(int64(0), nil)

	assert.NoError(t, svc.Logout(context.Background(), "unknown"))
	assert.NoError(t, svc.Logout(context.Background(), "unknown"))
	assert.NoError(t, svc.Logout(context.Background(), ""))
	refresh.AssertNumberOfCalls(t, "RevokeByHash", 2)
}
