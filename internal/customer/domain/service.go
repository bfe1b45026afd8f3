package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/robobooks/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Email       string
	GSTIN       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Name        string
	Email       string
	GSTIN       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	GSTIN         string         `json:"gstin"`
	BillingState  string         `json:"billingState"`
	ShippingState string         `json:"shippingState"`
	Currency      string         `json:"currency"`
	Metadata      map[string]any `json:"metadata"`
}

// UpdateCustomerRequest changes only the non-nil fields.
type UpdateCustomerRequest struct {
	ID            string         `json:"-"`
	Name          *string        `json:"name,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	GSTIN         *string        `json:"gstin,omitempty"`
	BillingState  *string        `json:"billingState,omitempty"`
	ShippingState *string        `json:"shippingState,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidGSTIN        = errors.New("invalid_gstin")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
