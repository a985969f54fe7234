package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	SetActive(ctx context.Context, req SetActiveRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Email string `json:"email"`
}

type SetActiveRequest struct {
	ID       string `json:"id"`
	IsActive *bool  `json:"isActive"`
}

type Response struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrEmailExists   = errors.New("email_exists")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidActive = errors.New("invalid_is_active")
	ErrNotFound      = errors.New("recipient_not_found")
)
