package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, inv *Inventory) error
	Upsert(ctx context.Context, db *gorm.DB, inv *Inventory) error
	FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*Inventory, error)
	FindByProductIDs(ctx context.Context, db *gorm.DB, productIDs []int64) ([]Inventory, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Inventory, error)
	ListAtOrBelow(ctx context.Context, db *gorm.DB, threshold int) ([]Inventory, error)
	// Decrement subtracts qty only when enough stock is on hand.
	// It reports false when the row is missing or stock is insufficient.
	Decrement(ctx context.Context, db *gorm.DB, productID int64, qty int, at time.Time) (bool, error)
	// AddStock adds qty to the current quantity in place and stores avgCost.
	AddStock(ctx context.Context, db *gorm.DB, productID int64, qty int, avgCost decimal.Decimal, at time.Time) error
	SumQuantity(ctx context.Context, db *gorm.DB) (int64, error)
}

// ListFilter narrows inventory listings. MinQty and MaxQty are inclusive.
type ListFilter struct {
	Search     string
	SeriesSlug string
	MinQty     *int
	MaxQty     *int
}
