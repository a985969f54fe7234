package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, r *Recipient) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Recipient, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Recipient, error)
	List(ctx context.Context, db *gorm.DB) ([]Recipient, error)
	// ListActive returns active recipients in a stable order.
	ListActive(ctx context.Context, db *gorm.DB) ([]Recipient, error)
	SetActive(ctx context.Context, db *gorm.DB, id int64, active bool, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}
