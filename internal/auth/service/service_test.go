package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/repository"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCodes struct {
	email string
	code  string
}

func (s stubCodes) Verify(_ context.Context, email, code string) bool {
	return email == s.email && code == s.code
}

func newService(t *testing.T, codes domain.CodeVerifier) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	if codes == nil {
		codes = stubCodes{}
	}
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	repo, sessions := repository.New()
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repo,
		SessionRepo: sessions,
		Codes:       codes,
	})
	return svc, clk
}

func register(t *testing.T, svc domain.Service, username, email string) *domain.LoginResult {
	t.Helper()
	res, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	res := register(t, svc, "alice", "Alice@Example.com")
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.RawToken)

	byName, err := svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, res.RawToken, byName.RawToken)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t, nil)
	register(t, svc, "alice", "alice@example.com")

	cases := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{"missing", domain.RegisterRequest{Username: "bob"}, domain.ErrMissingFields},
		{"mismatch", domain.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1", ConfirmPassword: "secret2"}, domain.ErrPasswordMismatch},
		{"short", domain.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "abc", ConfirmPassword: "abc"}, domain.ErrPasswordTooShort},
		{"bad email", domain.RegisterRequest{Username: "bob", Email: "bob", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrInvalidEmail},
		{"taken username", domain.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrUserExists},
		{"taken email", domain.RegisterRequest{Username: "carol", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1"}, domain.ErrUserExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	svc, clk := newService(t, nil)
	ctx := context.Background()
	res := register(t, svc, "alice", "alice@example.com")

	principal, err := svc.Authenticate(ctx, res.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, domain.RoleUser, principal.Role)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	require.NoError(t, svc.Logout(ctx, res.RawToken))
	_, err = svc.Authenticate(ctx, res.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)

	other, err := svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	clk.Advance(sessionTTL + time.Minute)
	_, err = svc.Authenticate(ctx, other.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestChangeOwnPassword(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	res := register(t, svc, "alice", "alice@example.com")
	principal, err := svc.Authenticate(ctx, res.RawToken)
	require.NoError(t, err)

	err = svc.ChangeOwnPassword(ctx, domain.ChangeOwnPasswordRequest{
		UserID: principal.UserID, CurrentPassword: "wrong", NewPassword: "newsecret",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, svc.ChangeOwnPassword(ctx, domain.ChangeOwnPasswordRequest{
		UserID: principal.UserID, CurrentPassword: "secret1", NewPassword: "newsecret",
	}))

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "newsecret"})
	require.NoError(t, err)
}

func TestCreateUser_RequiresCodeForNewEmail(t *testing.T) {
	svc, _ := newService(t, stubCodes{email: "bob@example.com", code: "123456"})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret1", VerificationCode: "000000",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVerificationCode)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret1", Role: "root", VerificationCode: "123456",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret1", Role: domain.RoleAdmin, VerificationCode: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestChangePassword_VerifiesTargetEmail(t *testing.T) {
	svc, _ := newService(t, stubCodes{email: "alice@example.com", code: "654321"})
	ctx := context.Background()
	res := register(t, svc, "alice", "alice@example.com")

	err := svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		UserID: res.User.ID, NewPassword: "changed1", VerificationCode: "111111",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVerificationCode)

	err = svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		UserID: "999", NewPassword: "changed1", VerificationCode: "654321",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		UserID: res.User.ID, NewPassword: "changed1", VerificationCode: "654321",
	}))
	_, err = svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "changed1"})
	require.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "bootstrap1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin2", "admin2@example.com", "bootstrap1")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := svc.Login(ctx, domain.LoginRequest{Username: "admin", Password: "bootstrap1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
}
