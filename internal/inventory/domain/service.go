package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/unit"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Upsert(ctx context.Context, req UpsertRequest) (*Response, error)
	ListAtOrBelow(ctx context.Context, threshold int) ([]Inventory, error)
}

const (
	StatusAll        = "all"
	StatusInStock    = "in_stock"
	StatusOutOfStock = "out_of_stock"
	StatusLowStock   = "low_stock"
)

type ListRequest struct {
	Search string
	Series string
	Status string
}

type UpsertRequest struct {
	ProductID string          `json:"productId"`
	Quantity  *int            `json:"quantity"`
	Unit      string          `json:"unit"`
	AvgCost   decimal.Decimal `json:"avgCost"`
}

type ProductRef struct {
	ID     string              `json:"id"`
	Code   string              `json:"code"`
	Name   string              `json:"name"`
	Series string              `json:"series"`
	Specs  productdomain.Specs `json:"specs"`
}

type Response struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Quantity    int             `json:"quantity"`
	Breakdown   unit.Breakdown  `json:"breakdown"`
	Display     string          `json:"display"`
	AvgCost     decimal.Decimal `json:"avgCost"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Product     *ProductRef     `json:"product,omitempty"`
}

var (
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrProductNotFound = errors.New("product_not_found")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidAvgCost  = errors.New("invalid_avg_cost")
	ErrInvalidUnit     = errors.New("invalid_unit")
	ErrInvalidStatus   = errors.New("invalid_status")
)
