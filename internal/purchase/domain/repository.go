package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, p *Purchase) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Purchase, error)
	FindByPurchaseNo(ctx context.Context, db *gorm.DB, purchaseNo string) (*Purchase, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Purchase, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string, received bool) error
	// Summarize aggregates purchases with purchase_time in [from, to).
	Summarize(ctx context.Context, db *gorm.DB, from, to *time.Time) (Summary, error)
}

type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Supplier string
	Search   string
}

type Summary struct {
	Count     int64
	TotalCost decimal.Decimal
}
