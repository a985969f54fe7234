package domain

import (
	"time"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
)

// Inventory is the current stock snapshot of one product, counted in boxes.
type Inventory struct {
	ID          int64                  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID   int64                  `json:"product_id" gorm:"not null;uniqueIndex:ux_inventories_product"`
	Quantity    int                    `json:"quantity" gorm:"not null;default:0"`
	AvgCost     decimal.Decimal        `json:"avg_cost" gorm:"type:numeric(14,4);not null;default:0"`
	LastUpdated time.Time              `json:"last_updated" gorm:"not null;index:ix_inventories_last_updated"`
	Product     *productdomain.Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Inventory) TableName() string { return "inventories" }
