package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	UserID        int64           `json:"-"`
	SaleID        string          `json:"saleId"`
	Quantity      int             `json:"quantity"`
	ReturnPrice   decimal.Decimal `json:"returnPrice"`
	PackageIntact *bool           `json:"packageIntact"`
	Resalable     *bool           `json:"resalable"`
	Reason        *string         `json:"reason"`
	Notes         *string         `json:"notes"`
}

// ListRequest pages returns. Status "all" or empty disables the filter.
type ListRequest struct {
	pagination.Pagination
	Status string `form:"status"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type SaleRef struct {
	ID           string          `json:"id"`
	SaleTime     time.Time       `json:"saleTime"`
	Platform     string          `json:"platform"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName,omitempty"`
	ProductCode  string          `json:"productCode,omitempty"`
	Quantity     int             `json:"quantity"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	CustomerName *string         `json:"customerName,omitempty"`
}

type Response struct {
	ID            string          `json:"id"`
	ReturnNo      string          `json:"returnNo"`
	SaleID        string          `json:"saleId"`
	Quantity      int             `json:"quantity"`
	ReturnPrice   decimal.Decimal `json:"returnPrice"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PackageIntact bool            `json:"packageIntact"`
	Resalable     bool            `json:"resalable"`
	Reason        *string         `json:"reason,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Status        string          `json:"status"`
	UserID        string          `json:"userId"`
	ReturnTime    time.Time       `json:"returnTime"`
	Sale          *SaleRef        `json:"sale,omitempty"`
}

type ListResponse struct {
	Data       []Response          `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrMissingUser       = errors.New("missing_user")
	ErrInvalidSale       = errors.New("invalid_sale")
	ErrSaleNotFound      = errors.New("sale_not_found")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidPrice      = errors.New("invalid_return_price")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("return_not_found")
	ErrReturnNoExhausted = errors.New("return_no_exhausted")
)
