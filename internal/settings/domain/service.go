package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// UpsertRequest replaces the tax profile. A nil DefaultTaxRate keeps the
// configured default. An empty State is taken from the GSTIN.
type UpsertRequest struct {
	LegalName      string           `json:"legalName"`
	GSTIN          string           `json:"gstin"`
	State          string           `json:"state"`
	DefaultTaxRate *decimal.Decimal `json:"defaultTaxRate"`
}

type Service interface {
	Get(ctx context.Context) (CompanySettings, error)
	Upsert(ctx context.Context, req UpsertRequest) (CompanySettings, error)
}
