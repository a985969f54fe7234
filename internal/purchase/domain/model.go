package domain

import (
	"time"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
)

const (
	StatusPending   = "pending"
	StatusInTransit = "in_transit"
	StatusArrived   = "arrived"
	StatusListed    = "listed"
)

// Purchase is an inbound goods order. Quantity is always stored in boxes.
type Purchase struct {
	ID           int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PurchaseNo   string          `json:"purchase_no" gorm:"type:varchar(64);not null;uniqueIndex:ux_purchases_purchase_no"`
	Supplier     string          `json:"supplier" gorm:"type:varchar(255);not null;default:''"`
	Manager      string          `json:"manager" gorm:"type:varchar(128);not null;default:''"`
	PurchaseTime time.Time       `json:"purchase_time" gorm:"not null;index:ix_purchases_purchase_time"`
	PurchaseType string          `json:"purchase_type" gorm:"type:varchar(64);not null;default:''"`
	ProductID    int64           `json:"product_id" gorm:"not null;index:ix_purchases_product"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	UnitCost     decimal.Decimal `json:"unit_cost" gorm:"type:numeric(14,4);not null"`
	TotalCost    decimal.Decimal `json:"total_cost" gorm:"type:numeric(14,2);not null"`
	BatchNo      *string         `json:"batch_no,omitempty" gorm:"type:varchar(64)"`
	Status       string          `json:"status" gorm:"type:varchar(32);not null"`
	// Received is set once the purchase has been added to inventory.
	Received  bool                   `json:"received" gorm:"not null;default:false"`
	Notes     *string                `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time              `json:"created_at" gorm:"not null"`
	Product   *productdomain.Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID"`
}

func (Purchase) TableName() string { return "purchases" }

// IsReceivedStatus reports whether goods in this status are on hand.
func IsReceivedStatus(status string) bool {
	return status == StatusArrived || status == StatusListed
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInTransit, StatusArrived, StatusListed:
		return true
	}
	return false
}
