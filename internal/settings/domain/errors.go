package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidState        = errors.New("invalid_state")
	ErrInvalidGSTIN        = errors.New("invalid_gstin")
	ErrInvalidTaxRate      = errors.New("invalid_tax_rate")
)
