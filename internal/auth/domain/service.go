package domain

import (
	"context"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	Me(ctx context.Context, userID int64) (*UserResponse, error)
	ChangeOwnPassword(ctx context.Context, req ChangeOwnPasswordRequest) error

	ListUsers(ctx context.Context) ([]UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	// EnsureAdmin creates the bootstrap admin when no admin exists.
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

// CodeVerifier checks admin verification codes issued for an email.
type CodeVerifier interface {
	Verify(ctx context.Context, email, code string) bool
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	UserAgent       string `json:"-"`
	IPAddress       string `json:"-"`
}

// LoginRequest accepts a username or an email as Username.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type LoginResult struct {
	User      UserResponse
	RawToken  string
	ExpiresAt time.Time
}

type ChangeOwnPasswordRequest struct {
	UserID          int64  `json:"-"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CreateUserRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	VerificationCode string `json:"verificationCode"`
}

type ChangePasswordRequest struct {
	UserID           string `json:"userId"`
	NewPassword      string `json:"newPassword"`
	VerificationCode string `json:"verificationCode"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID    int64
	Username  string
	Role      string
	SessionID int64
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
