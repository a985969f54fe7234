package domain

import (
	"time"

	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Return records goods sent back against a sale. Returns never touch stock.
type Return struct {
	ID            int64            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ReturnNo      string           `json:"return_no" gorm:"type:varchar(32);not null;uniqueIndex:ux_returns_return_no"`
	SaleID        int64            `json:"sale_id" gorm:"not null;index:ix_returns_sale"`
	Quantity      int              `json:"quantity" gorm:"not null"`
	ReturnPrice   decimal.Decimal  `json:"return_price" gorm:"type:numeric(14,4);not null"`
	TotalAmount   decimal.Decimal  `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	PackageIntact bool             `json:"package_intact" gorm:"not null"`
	Resalable     bool             `json:"resalable" gorm:"not null"`
	Reason        *string          `json:"reason,omitempty" gorm:"type:text"`
	Notes         *string          `json:"notes,omitempty" gorm:"type:text"`
	Status        string           `json:"status" gorm:"type:varchar(16);not null;default:'pending';index:ix_returns_status"`
	UserID        int64            `json:"user_id" gorm:"not null"`
	ReturnTime    time.Time        `json:"return_time" gorm:"not null;index:ix_returns_return_time"`
	Sale          *saledomain.Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID;references:ID"`
}

func (Return) TableName() string { return "returns" }
