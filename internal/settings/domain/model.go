package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CompanySettings is the seller tax profile of an organization. The State is
// the companyState every quote of the organization is computed against.
type CompanySettings struct {
	OrgID snowflake.ID `gorm:"column:org_id;primaryKey;autoIncrement:false" json:"organizationId"`

	LegalName      string          `gorm:"column:legal_name;type:text" json:"legalName,omitempty"`
	GSTIN          string          `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	State          string          `gorm:"column:state;type:text;not null" json:"state"`
	DefaultTaxRate decimal.Decimal `gorm:"column:default_tax_rate;type:numeric;not null" json:"defaultTaxRate"`

	// Stored is false for settings synthesized from the tax config defaults.
	Stored bool `gorm:"-" json:"stored"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (CompanySettings) TableName() string { return "company_settings" }
