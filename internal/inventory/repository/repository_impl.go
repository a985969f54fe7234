package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, inv *domain.Inventory) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, inv *domain.Inventory) error {
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "avg_cost", "last_updated"}),
		}).
		Create(inv).Error
}

func (r *repo) FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := db.WithContext(ctx).
		Preload("Product").
		Where("product_id = ?", productID).
		Limit(1).
		Find(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) FindByProductIDs(ctx context.Context, db *gorm.DB, productIDs []int64) ([]domain.Inventory, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var items []domain.Inventory
	err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Inventory, error) {
	stmt := db.WithContext(ctx).Model(&domain.Inventory{}).Preload("Product")

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(series) LIKE ?)",
			like, like, like,
		)
	}
	if filter.SeriesSlug != "" {
		stmt = stmt.Where("product_id IN (SELECT id FROM products WHERE series_slug = ?)", filter.SeriesSlug)
	}
	if filter.MinQty != nil {
		stmt = stmt.Where("quantity >= ?", *filter.MinQty)
	}
	if filter.MaxQty != nil {
		stmt = stmt.Where("quantity <= ?", *filter.MaxQty)
	}

	var items []domain.Inventory
	if err := stmt.Order("last_updated DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAtOrBelow(ctx context.Context, db *gorm.DB, threshold int) ([]domain.Inventory, error) {
	var items []domain.Inventory
	err := db.WithContext(ctx).
		Preload("Product").
		Where("quantity <= ?", threshold).
		Order("quantity ASC").
		Order("product_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, productID int64, qty int, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Inventory{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity - ?", qty),
			"last_updated": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) AddStock(ctx context.Context, db *gorm.DB, productID int64, qty int, avgCost decimal.Decimal, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", qty),
			"avg_cost":     avgCost,
			"last_updated": at,
		}).Error
}

func (r *repo) SumQuantity(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Inventory{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
