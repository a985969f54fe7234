package domain

import (
	"time"

	"github.com/smallbiznis/stockroom/internal/unit"
	"gorm.io/datatypes"
)

type Product struct {
	ID           int64             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Code         string            `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_products_code"`
	Name         string            `json:"name" gorm:"type:varchar(255);not null"`
	Series       string            `json:"series" gorm:"type:varchar(128);not null;default:''"`
	SeriesSlug   string            `json:"series_slug" gorm:"type:varchar(128);not null;default:'';index:ix_products_series_slug"`
	Size         *string           `json:"size,omitempty" gorm:"type:varchar(64)"`
	Style        *string           `json:"style,omitempty" gorm:"type:varchar(64)"`
	HiddenRatio  *float64          `json:"hidden_ratio,omitempty"`
	Version      *string           `json:"version,omitempty" gorm:"type:varchar(64)"`
	Image        *string           `json:"image,omitempty" gorm:"type:text"`
	BoxesPerCase *int              `json:"boxes_per_case,omitempty"`
	BoxesPerSet  *int              `json:"boxes_per_set,omitempty"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Specs returns the normalized packaging factors.
func (p Product) Specs() unit.Specs {
	return unit.NewSpecs(p.BoxesPerCase, p.BoxesPerSet)
}
