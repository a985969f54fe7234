package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/stockroom/internal/recipient/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, rec *domain.Recipient) error {
	return db.WithContext(ctx).Create(rec).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Recipient, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Recipient, error) {
	return r.findOne(ctx, db, "email = ?", email)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Recipient, error) {
	var rec domain.Recipient
	if err := db.WithContext(ctx).Where(query, arg).Limit(1).Find(&rec).Error; err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Recipient, error) {
	var items []domain.Recipient
	err := db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Recipient, error) {
	var items []domain.Recipient
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id int64, active bool, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Recipient{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": at}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Recipient{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
