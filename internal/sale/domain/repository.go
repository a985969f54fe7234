package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, s *Sale) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Sale, error)
	// Summarize aggregates sales with sale_time in [from, to).
	Summarize(ctx context.Context, db *gorm.DB, from, to *time.Time) (Summary, error)
}

type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Platform string
	SaleType string
	Search   string
}

type Summary struct {
	Count   int64
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}
