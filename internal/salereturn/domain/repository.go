package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, r *Return) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Return, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Return, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}

type ListFilter struct {
	Status string
}
