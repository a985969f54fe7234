package repository

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, ret *domain.Return) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(ret).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Return, error) {
	var ret domain.Return
	err := db.WithContext(ctx).
		Preload("Sale.Product").
		Where("id = ?", id).
		Limit(1).
		Find(&ret).Error
	if err != nil {
		return nil, err
	}
	if ret.ID == 0 {
		return nil, nil
	}
	return &ret, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Return, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Return{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Return
	err := stmt.
		Preload("Sale.Product").
		Order("return_time DESC").
		Scopes(page.Scope()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Return{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Return{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
