package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/purchase/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, p *domain.Purchase) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByPurchaseNo(ctx context.Context, db *gorm.DB, purchaseNo string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).
		Where("purchase_no = ?", purchaseNo).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Purchase, error) {
	stmt := db.WithContext(ctx).Model(&domain.Purchase{}).Preload("Product")

	if filter.From != nil {
		stmt = stmt.Where("purchase_time >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("purchase_time <= ?", *filter.To)
	}
	if supplier := strings.ToLower(strings.TrimSpace(filter.Supplier)); supplier != "" {
		stmt = stmt.Where("LOWER(supplier) LIKE ?", "%"+supplier+"%")
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"LOWER(purchase_no) LIKE ? OR product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? OR LOWER(code) LIKE ?)",
			like, like, like,
		)
	}

	var items []domain.Purchase
	if err := stmt.Order("purchase_time DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string, received bool) error {
	return db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   status,
			"received": received,
		}).Error
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, from, to *time.Time) (domain.Summary, error) {
	stmt := db.WithContext(ctx).Model(&domain.Purchase{})
	if from != nil {
		stmt = stmt.Where("purchase_time >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("purchase_time < ?", *to)
	}

	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := stmt.Select("COUNT(*) AS count, COALESCE(SUM(total_cost), 0) AS total").Scan(&row).Error
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{Count: row.Count, TotalCost: row.Total}, nil
}
