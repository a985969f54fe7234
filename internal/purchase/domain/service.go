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
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
}

type ListRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Supplier  string
}

// CreateRequest carries a purchase. Quantity and UnitCost are expressed in
// Unit (default box) and are stored per box.
type CreateRequest struct {
	PurchaseNo   string           `json:"purchaseNo"`
	Supplier     string           `json:"supplier"`
	Manager      string           `json:"manager"`
	PurchaseTime *time.Time       `json:"purchaseTime"`
	PurchaseType string           `json:"purchaseType"`
	ProductID    string           `json:"productId"`
	Quantity     int              `json:"quantity"`
	Unit         string           `json:"unit"`
	UnitCost     decimal.Decimal  `json:"unitCost"`
	TotalCost    *decimal.Decimal `json:"totalCost"`
	BatchNo      *string          `json:"batchNo"`
	Status       string           `json:"status"`
	Notes        *string          `json:"notes"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type Response struct {
	ID           string                      `json:"id"`
	PurchaseNo   string                      `json:"purchaseNo"`
	Supplier     string                      `json:"supplier"`
	Manager      string                      `json:"manager"`
	PurchaseTime time.Time                   `json:"purchaseTime"`
	PurchaseType string                      `json:"purchaseType"`
	ProductID    string                      `json:"productId"`
	Quantity     int                         `json:"quantity"`
	Display      string                      `json:"display"`
	UnitCost     decimal.Decimal             `json:"unitCost"`
	TotalCost    decimal.Decimal             `json:"totalCost"`
	BatchNo      *string                     `json:"batchNo,omitempty"`
	Status       string                      `json:"status"`
	Received     bool                        `json:"received"`
	Notes        *string                     `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
	Product      *inventorydomain.ProductRef `json:"product,omitempty"`
}

var (
	ErrPurchaseNoExists = errors.New("purchase_no_exists")
	ErrInvalidProduct   = errors.New("invalid_product")
	ErrProductNotFound  = errors.New("product_not_found")
	ErrInventoryMissing = errors.New("inventory_missing")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitCost  = errors.New("invalid_unit_cost")
	ErrInvalidTotalCost = errors.New("invalid_total_cost")
	ErrInvalidUnit      = errors.New("invalid_unit")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
