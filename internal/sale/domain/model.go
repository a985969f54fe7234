package domain

import (
	"time"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
)

// Sale is an outbound order. Quantity is in boxes and SalePrice is per box.
type Sale struct {
	ID             int64                  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SaleTime       time.Time              `json:"sale_time" gorm:"not null;index:ix_sales_sale_time"`
	Sender         string                 `json:"sender" gorm:"type:varchar(128);not null;default:''"`
	Platform       string                 `json:"platform" gorm:"type:varchar(64);not null;default:''"`
	SaleType       string                 `json:"sale_type" gorm:"type:varchar(64);not null;default:''"`
	ProductID      int64                  `json:"product_id" gorm:"not null;index:ix_sales_product"`
	Quantity       int                    `json:"quantity" gorm:"not null"`
	SalePrice      decimal.Decimal        `json:"sale_price" gorm:"type:numeric(14,4);not null"`
	ShippingFee    decimal.Decimal        `json:"shipping_fee" gorm:"type:numeric(14,2);not null;default:0"`
	Profit         decimal.Decimal        `json:"profit" gorm:"type:numeric(14,2);not null"`
	CustomerName   *string                `json:"customer_name,omitempty" gorm:"type:varchar(128)"`
	ReceiveMethod  *string                `json:"receive_method,omitempty" gorm:"type:varchar(64)"`
	ExpressCompany *string                `json:"express_company,omitempty" gorm:"type:varchar(64)"`
	TrackingNo     *string                `json:"tracking_no,omitempty" gorm:"type:varchar(64)"`
	Notes          *string                `json:"notes,omitempty" gorm:"type:text"`
	UserID         int64                  `json:"user_id" gorm:"not null;index:ix_sales_user"`
	CreatedAt      time.Time              `json:"created_at" gorm:"not null"`
	Product        *productdomain.Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID"`
}

func (Sale) TableName() string { return "sales" }
