package domain

import "errors"

var (
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidID               = errors.New("invalid_id")
	ErrNotFound                = errors.New("not_found")
	ErrInvalidCustomer         = errors.New("invalid_customer")
	ErrInvalidItems            = errors.New("invalid_items")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidRate             = errors.New("invalid_rate")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidTaxMode          = errors.New("invalid_tax_mode")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrInvalidDiscount         = errors.New("invalid_discount")
	ErrInvalidDiscountType     = errors.New("invalid_discount_type")
	ErrInvalidAdditionalTax    = errors.New("invalid_additional_tax")
	ErrInvalidExpiryDate       = errors.New("invalid_expiry_date")
	ErrInvalidCompanyState     = errors.New("invalid_company_state")
	ErrInvalidTotals           = errors.New("invalid_totals")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrConflict                = errors.New("conflict")
)
