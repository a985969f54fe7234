package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	// FindByIdentifier matches either the username or the email.
	FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*User, error)
	// ExistsUsernameOrEmail reports whether either value is already taken.
	ExistsUsernameOrEmail(ctx context.Context, db *gorm.DB, username, email string) (bool, error)
	List(ctx context.Context, db *gorm.DB) ([]User, error)
	CountByRole(ctx context.Context, db *gorm.DB, role string) (int64, error)
	UpdatePassword(ctx context.Context, db *gorm.DB, id int64, hash string, at time.Time) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	GetSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, db *gorm.DB, sessionID int64, lastSeen time.Time) error
	RevokeSession(ctx context.Context, db *gorm.DB, sessionID int64, revokedAt time.Time) error
}
