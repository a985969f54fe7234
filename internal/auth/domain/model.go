// Package domain contains core types for the auth service.
package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User represents a system user account.
type User struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement:false"`
	Username            string     `gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	Email               string     `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash        string     `gorm:"type:text;not null"`
	Role                string     `gorm:"type:varchar(16);not null;index:ix_users_role"`
	LastPasswordChanged *time.Time `gorm:"column:last_password_changed"`
	CreatedAt           time.Time  `gorm:"not null"`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               int64      `gorm:"primaryKey;autoIncrement:false"`
	UserID           int64      `gorm:"column:user_id;not null;index"`
	SessionTokenHash string     `gorm:"column:session_token_hash;type:varchar(64);not null;uniqueIndex"`
	UserAgent        string     `gorm:"column:user_agent;type:text"`
	IPAddress        string     `gorm:"column:ip_address;type:varchar(64)"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time  `gorm:"column:last_seen_at;not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
