package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusExpired  Status = "EXPIRED"
	StatusInvoiced Status = "INVOICED"
)

var statusTransitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusExpired},
	StatusSent:     {StatusAccepted, StatusDeclined, StatusExpired},
	StatusAccepted: {StatusInvoiced},
}

func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusExpired, StatusInvoiced:
		return status, true
	default:
		return "", false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether items and amounts may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusSent
}

type Quote struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organizationId"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customerId"`

	QuoteNumber     string    `gorm:"type:text;not null" json:"quoteNumber"`
	ReferenceNumber string    `gorm:"type:text" json:"referenceNumber,omitempty"`
	QuoteDate       time.Time `gorm:"not null" json:"quoteDate"`
	ExpiryDate      time.Time `gorm:"not null" json:"expiryDate"`
	Status          Status    `gorm:"type:text;not null" json:"status"`

	Subject            string `gorm:"type:text" json:"subject,omitempty"`
	Salesperson        string `gorm:"type:text" json:"salesperson,omitempty"`
	CustomerNotes      string `gorm:"type:text" json:"customerNotes,omitempty"`
	TermsAndConditions string `gorm:"type:text" json:"termsAndConditions,omitempty"`

	CompanyState       string `gorm:"type:text;not null" json:"companyState"`
	PlaceOfSupplyState string `gorm:"type:text;not null" json:"placeOfSupplyState"`
	IsIntraState       bool   `gorm:"not null" json:"isIntraState"`

	Discount          decimal.Decimal `gorm:"type:numeric;not null" json:"discount"`
	DiscountType      string          `gorm:"type:text;not null" json:"discountType"`
	AdditionalTaxType string          `gorm:"type:text" json:"additionalTaxType,omitempty"`
	AdditionalTaxRate decimal.Decimal `gorm:"type:numeric;not null" json:"additionalTaxRate"`
	Adjustment        decimal.Decimal `gorm:"type:numeric;not null" json:"adjustment"`

	SubTotal            decimal.Decimal `gorm:"type:numeric;not null" json:"subTotal"`
	DiscountAmount      decimal.Decimal `gorm:"type:numeric;not null" json:"discountAmount"`
	CGSTTotal           decimal.Decimal `gorm:"column:cgst_total;type:numeric;not null" json:"cgstTotal"`
	SGSTTotal           decimal.Decimal `gorm:"column:sgst_total;type:numeric;not null" json:"sgstTotal"`
	IGSTTotal           decimal.Decimal `gorm:"column:igst_total;type:numeric;not null" json:"igstTotal"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric;not null" json:"taxAmount"`
	AdditionalTaxAmount decimal.Decimal `gorm:"type:numeric;not null" json:"additionalTaxAmount"`
	Total               decimal.Decimal `gorm:"type:numeric;not null" json:"total"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	Version  int64             `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Items []QuoteItem `gorm:"-" json:"items"`
}

func (Quote) TableName() string { return "quotes" }

// QuoteItem is a persisted line with its derived tax split.
type QuoteItem struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID    snowflake.ID `gorm:"not null" json:"-"`
	QuoteID  snowflake.ID `gorm:"not null;index" json:"quoteId"`
	Position int          `gorm:"not null" json:"position"`

	Name        string `gorm:"type:text" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	HSNCode     string `gorm:"column:hsn_code;type:text" json:"hsnCode,omitempty"`

	Quantity         decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Rate             decimal.Decimal `gorm:"type:numeric;not null" json:"rate"`
	Amount           decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	AmountOverridden bool            `gorm:"not null" json:"amountOverridden"`

	TaxMode string          `gorm:"type:text;not null" json:"taxMode"`
	TaxRate decimal.Decimal `gorm:"type:numeric;not null" json:"taxRate"`

	DiscountShare decimal.Decimal `gorm:"type:numeric;not null" json:"discountShare"`
	TaxableAmount decimal.Decimal `gorm:"type:numeric;not null" json:"taxableAmount"`
	CGST          decimal.Decimal `gorm:"column:cgst;type:numeric;not null" json:"cgst"`
	SGST          decimal.Decimal `gorm:"column:sgst;type:numeric;not null" json:"sgst"`
	IGST          decimal.Decimal `gorm:"column:igst;type:numeric;not null" json:"igst"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"taxAmount"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (QuoteItem) TableName() string { return "quote_items" }

// QuoteCounter holds the last quote number issued by an organization.
type QuoteCounter struct {
	OrgID      snowflake.ID `gorm:"column:org_id;primaryKey;autoIncrement:false"`
	LastNumber int64        `gorm:"not null"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (QuoteCounter) TableName() string { return "quote_counters" }

// EngineInput rebuilds the tax engine input from a stored quote.
func (q Quote) EngineInput() quotetax.Input {
	items := make([]quotetax.LineItem, 0, len(q.Items))
	for _, item := range q.Items {
		rate := item.TaxRate
		items = append(items, quotetax.LineItem{
			Name:             item.Name,
			Description:      item.Description,
			HSNCode:          item.HSNCode,
			Quantity:         item.Quantity,
			Rate:             item.Rate,
			Amount:           item.Amount,
			AmountOverridden: item.AmountOverridden,
			TaxMode:          quotetax.TaxMode(item.TaxMode),
			TaxRate:          &rate,
		})
	}
	return quotetax.Input{
		Items:        items,
		Discount:     q.Discount,
		DiscountType: quotetax.DiscountType(q.DiscountType),
		AdditionalTax: quotetax.AdditionalTax{
			Type: quotetax.AdditionalTaxType(q.AdditionalTaxType),
			Rate: q.AdditionalTaxRate,
		},
		Adjustment:         q.Adjustment,
		CompanyState:       q.CompanyState,
		PlaceOfSupplyState: q.PlaceOfSupplyState,
	}
}

// ApplyResult copies the derived totals and lines onto the quote. Line IDs
// are assigned by the caller.
func (q *Quote) ApplyResult(result quotetax.Result) {
	q.PlaceOfSupplyState = result.PlaceOfSupplyState
	q.IsIntraState = result.IsIntraState
	q.SubTotal = result.SubTotal
	q.DiscountAmount = result.DiscountAmount
	q.CGSTTotal = result.CGSTTotal
	q.SGSTTotal = result.SGSTTotal
	q.IGSTTotal = result.IGSTTotal
	q.TaxAmount = result.TaxAmount
	q.AdditionalTaxAmount = result.AdditionalTaxAmount
	q.Total = result.Total

	q.Items = make([]QuoteItem, 0, len(result.Items))
	for i, line := range result.Items {
		rate := decimal.Zero
		if line.TaxRate != nil {
			rate = *line.TaxRate
		}
		q.Items = append(q.Items, QuoteItem{
			OrgID:            q.OrgID,
			QuoteID:          q.ID,
			Position:         i,
			Name:             line.Name,
			Description:      line.Description,
			HSNCode:          line.HSNCode,
			Quantity:         line.Quantity,
			Rate:             line.Rate,
			Amount:           line.Amount,
			AmountOverridden: line.AmountOverridden,
			TaxMode:          string(line.TaxMode),
			TaxRate:          rate,
			DiscountShare:    line.DiscountShare,
			TaxableAmount:    line.TaxableAmount,
			CGST:             line.CGST,
			SGST:             line.SGST,
			IGST:             line.IGST,
			TaxAmount:        line.TaxAmount,
		})
	}
}

// Totals returns the stored totals block.
func (q Quote) Totals() quotetax.Totals {
	return quotetax.Totals{
		SubTotal:            q.SubTotal,
		DiscountAmount:      q.DiscountAmount,
		CGSTTotal:           q.CGSTTotal,
		SGSTTotal:           q.SGSTTotal,
		IGSTTotal:           q.IGSTTotal,
		TaxAmount:           q.TaxAmount,
		AdditionalTaxAmount: q.AdditionalTaxAmount,
		Total:               q.Total,
	}
}
