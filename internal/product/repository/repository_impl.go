package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/stockroom/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
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

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("code = ?", code).
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

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(series) LIKE ?", like, like, like)
	}
	if filter.SeriesSlug != "" {
		stmt = stmt.Where("series_slug = ?", filter.SeriesSlug)
	}

	var items []domain.Product
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":           product.Name,
			"series":         product.Series,
			"series_slug":    product.SeriesSlug,
			"size":           product.Size,
			"style":          product.Style,
			"hidden_ratio":   product.HiddenRatio,
			"version":        product.Version,
			"image":          product.Image,
			"boxes_per_case": product.BoxesPerCase,
			"boxes_per_set":  product.BoxesPerSet,
			"metadata":       product.Metadata,
			"updated_at":     product.UpdatedAt,
		}).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
