package repository

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/alert/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindTodayLog(ctx context.Context, db *gorm.DB, productID int64, emails []string, dayKey string) (*domain.AlertLog, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var log domain.AlertLog
	err := db.WithContext(ctx).
		Where("product_id = ? AND day_key = ? AND email IN ?", productID, dayKey, emails).
		Limit(1).
		Find(&log).Error
	if err != nil {
		return nil, err
	}
	if log.ID == 0 {
		return nil, nil
	}
	return &log, nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, log *domain.AlertLog) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "email"}, {Name: "day_key"}},
			DoNothing: true,
		}).
		Create(log)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SetSuccess(ctx context.Context, db *gorm.DB, id int64, success bool) error {
	return db.WithContext(ctx).
		Model(&domain.AlertLog{}).
		Where("id = ?", id).
		Update("success", success).Error
}

func (r *repo) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]domain.AlertLog, error) {
	var items []domain.AlertLog
	err := db.WithContext(ctx).
		Order("sent_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
