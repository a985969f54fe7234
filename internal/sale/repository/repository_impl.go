package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/sale/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, s *domain.Sale) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Sale, error) {
	var s domain.Sale
	err := db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		Limit(1).
		Find(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Sale, error) {
	stmt := db.WithContext(ctx).Model(&domain.Sale{}).Preload("Product")

	if filter.From != nil {
		stmt = stmt.Where("sale_time >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("sale_time <= ?", *filter.To)
	}
	if platform := strings.ToLower(strings.TrimSpace(filter.Platform)); platform != "" {
		stmt = stmt.Where("LOWER(platform) LIKE ?", "%"+platform+"%")
	}
	if saleType := strings.TrimSpace(filter.SaleType); saleType != "" {
		stmt = stmt.Where("sale_type = ?", saleType)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"LOWER(COALESCE(customer_name, '')) LIKE ? OR product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? OR LOWER(code) LIKE ?)",
			like, like, like,
		)
	}

	var items []domain.Sale
	if err := stmt.Order("sale_time DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, from, to *time.Time) (domain.Summary, error) {
	stmt := db.WithContext(ctx).Model(&domain.Sale{})
	if from != nil {
		stmt = stmt.Where("sale_time >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("sale_time < ?", *to)
	}

	var row struct {
		Count   int64
		Revenue decimal.Decimal
		Profit  decimal.Decimal
	}
	err := stmt.Select(
		"COUNT(*) AS count, COALESCE(SUM(sale_price * quantity), 0) AS revenue, COALESCE(SUM(profit), 0) AS profit",
	).Scan(&row).Error
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{Count: row.Count, Revenue: row.Revenue, Profit: row.Profit}, nil
}
