package domain

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid_credentials")
	ErrMissingFields           = errors.New("missing_fields")
	ErrPasswordMismatch        = errors.New("password_mismatch")
	ErrPasswordTooShort        = errors.New("password_too_short")
	ErrInvalidEmail            = errors.New("invalid_email")
	ErrInvalidRole             = errors.New("invalid_role")
	ErrInvalidVerificationCode = errors.New("invalid_verification_code")
	ErrUserNotFound            = errors.New("user_not_found")
	ErrUserExists              = errors.New("user_exists")
	ErrSessionNotFound         = errors.New("session_not_found")
	ErrSessionExpired          = errors.New("session_expired")
	ErrSessionRevoked          = errors.New("session_revoked")
	ErrInvalidSession          = errors.New("invalid_session")
)
