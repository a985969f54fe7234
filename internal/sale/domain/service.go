package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type ListRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Platform  string
	SaleType  string
}

// CreateRequest carries a sale. Quantity and SalePrice are expressed in Unit
// (default box).
type CreateRequest struct {
	UserID         int64            `json:"-"`
	SaleTime       *time.Time       `json:"saleTime"`
	Sender         string           `json:"sender"`
	Platform       string           `json:"platform"`
	SaleType       string           `json:"saleType"`
	ProductID      string           `json:"productId"`
	Quantity       int              `json:"quantity"`
	Unit           string           `json:"unit"`
	SalePrice      decimal.Decimal  `json:"salePrice"`
	ShippingFee    *decimal.Decimal `json:"shippingFee"`
	CustomerName   *string          `json:"customerName"`
	ReceiveMethod  *string          `json:"receiveMethod"`
	ExpressCompany *string          `json:"expressCompany"`
	TrackingNo     *string          `json:"trackingNo"`
	Notes          *string          `json:"notes"`
}

type Response struct {
	ID             string                      `json:"id"`
	SaleTime       time.Time                   `json:"saleTime"`
	Sender         string                      `json:"sender"`
	Platform       string                      `json:"platform"`
	SaleType       string                      `json:"saleType"`
	ProductID      string                      `json:"productId"`
	Quantity       int                         `json:"quantity"`
	Display        string                      `json:"display"`
	SalePrice      decimal.Decimal             `json:"salePrice"`
	ShippingFee    decimal.Decimal             `json:"shippingFee"`
	Profit         decimal.Decimal             `json:"profit"`
	CustomerName   *string                     `json:"customerName,omitempty"`
	ReceiveMethod  *string                     `json:"receiveMethod,omitempty"`
	ExpressCompany *string                     `json:"expressCompany,omitempty"`
	TrackingNo     *string                     `json:"trackingNo,omitempty"`
	Notes          *string                     `json:"notes,omitempty"`
	UserID         string                      `json:"userId"`
	RemainingStock *int                        `json:"remainingStock,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	Product        *inventorydomain.ProductRef `json:"product,omitempty"`
}

var (
	ErrMissingUser       = errors.New("missing_user")
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidSalePrice  = errors.New("invalid_sale_price")
	ErrInvalidShipping   = errors.New("invalid_shipping_fee")
	ErrInvalidUnit       = errors.New("invalid_unit")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
