package domain

import (
	"context"

	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	recipientdomain "github.com/smallbiznis/stockroom/internal/recipient/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// FindTodayLog returns any row for productID with an email in emails on dayKey.
	FindTodayLog(ctx context.Context, db *gorm.DB, productID int64, emails []string, dayKey string) (*AlertLog, error)
	// Claim inserts the row unless (product, email, day) already exists.
	Claim(ctx context.Context, db *gorm.DB, log *AlertLog) (bool, error)
	SetSuccess(ctx context.Context, db *gorm.DB, id int64, success bool) error
	ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]AlertLog, error)
}

type ProductLookup interface {
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*productdomain.Product, error)
}

type RecipientSource interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]recipientdomain.Recipient, error)
}

type InventorySource interface {
	ListAtOrBelow(ctx context.Context, db *gorm.DB, threshold int) ([]inventorydomain.Inventory, error)
}
