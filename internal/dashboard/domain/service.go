package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RecordTypePurchase = "purchase"
	RecordTypeSale     = "sale"
)

type Service interface {
	// Stats summarizes stock and the activity of one business day.
	Stats(ctx context.Context, day *time.Time) (*Stats, error)
	// Records merges purchases and sales, newest first.
	Records(ctx context.Context, req RecordsRequest) ([]Record, error)
}

type Stats struct {
	Date              string          `json:"date"`
	TotalProducts     int64           `json:"totalProducts"`
	TotalInventory    int64           `json:"totalInventory"`
	TodayPurchases    int64           `json:"todayPurchases"`
	TodaySales        int64           `json:"todaySales"`
	TodayPurchaseCost decimal.Decimal `json:"todayPurchaseCost"`
	TodayRevenue      decimal.Decimal `json:"todayRevenue"`
	TodayProfit       decimal.Decimal `json:"todayProfit"`
}

type RecordsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Type      string
}

type Record struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	ProductName  string          `json:"productName"`
	ProductCode  string          `json:"productCode"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Date         time.Time       `json:"date"`
	Operator     string          `json:"operator"`
	Platform     string          `json:"platform,omitempty"`
	CustomerName *string         `json:"customerName,omitempty"`
}

var ErrInvalidRecordType = errors.New("invalid_record_type")
