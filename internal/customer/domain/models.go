package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"gorm.io/datatypes"
)

type Customer struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"not null;index" json:"organizationId"`
	Name          string            `gorm:"not null" json:"name"`
	Email         string            `gorm:"not null" json:"email"`
	Phone         string            `gorm:"column:phone" json:"phone,omitempty"`
	GSTIN         string            `gorm:"column:gstin" json:"gstin,omitempty"`
	BillingState  string            `gorm:"column:billing_state" json:"billingState,omitempty"`
	ShippingState string            `gorm:"column:shipping_state" json:"shippingState,omitempty"`
	Currency      string            `gorm:"column:currency" json:"currency,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }

// PlaceOfSupply is the buyer state used for GST: shipping state first, then
// billing state, then the state the GSTIN is registered in.
func (c Customer) PlaceOfSupply() string {
	if c.ShippingState != "" {
		return c.ShippingState
	}
	if c.BillingState != "" {
		return c.BillingState
	}
	state, _ := quotetax.StateFromGSTIN(c.GSTIN)
	return state
}
