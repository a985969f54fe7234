package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockroom/internal/unit"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type ListRequest struct {
	Search string
	Series string
}

type CreateRequest struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Series       string         `json:"series"`
	Size         *string        `json:"size"`
	Style        *string        `json:"style"`
	HiddenRatio  *float64       `json:"hiddenRatio"`
	Version      *string        `json:"version"`
	Image        *string        `json:"image"`
	BoxesPerCase *int           `json:"boxesPerCase"`
	BoxesPerSet  *int           `json:"boxesPerSet"`
	Metadata     map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID           string         `json:"-"`
	Name         *string        `json:"name"`
	Series       *string        `json:"series"`
	Size         *string        `json:"size"`
	Style        *string        `json:"style"`
	HiddenRatio  *float64       `json:"hiddenRatio"`
	Version      *string        `json:"version"`
	Image        *string        `json:"image"`
	BoxesPerCase *int           `json:"boxesPerCase"`
	BoxesPerSet  *int           `json:"boxesPerSet"`
	Metadata     map[string]any `json:"metadata"`
}

type Specs struct {
	BoxesPerCase int `json:"boxesPerCase"`
	BoxesPerSet  int `json:"boxesPerSet"`
}

func SpecsFrom(s unit.Specs) Specs {
	return Specs{BoxesPerCase: s.BoxesPerCase(), BoxesPerSet: s.BoxesPerSet()}
}

type InventorySummary struct {
	Quantity    int       `json:"quantity"`
	AvgCost     string    `json:"avgCost"`
	Display     string    `json:"display"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Response struct {
	ID          string            `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Series      string            `json:"series"`
	Size        *string           `json:"size,omitempty"`
	Style       *string           `json:"style,omitempty"`
	HiddenRatio *float64          `json:"hiddenRatio,omitempty"`
	Version     *string           `json:"version,omitempty"`
	Image       *string           `json:"image,omitempty"`
	Specs       Specs             `json:"specs"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Inventory   *InventorySummary `json:"inventory,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

var (
	ErrInvalidCode  = errors.New("invalid_code")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidRatio = errors.New("invalid_hidden_ratio")
	ErrCodeExists   = errors.New("code_exists")
	ErrNotFound     = errors.New("not_found")
	ErrInvalidID    = errors.New("invalid_id")
)
