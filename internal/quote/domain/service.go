package domain

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"github.com/smallbiznis/robobooks/pkg/db/pagination"
)

// ItemInput is one editor line. A non-nil Amount overrides Quantity × Rate.
// A nil TaxRate on a GST or IGST line takes the organization default.
type ItemInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	HSNCode     string           `json:"hsnCode"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	TaxMode     string           `json:"taxMode"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty"`
}

// QuoteInput is the editable part of a quote shared by preview, create and
// update.
type QuoteInput struct {
	CustomerID         string     `json:"customerId"`
	ReferenceNumber    string     `json:"referenceNumber"`
	QuoteDate          *time.Time `json:"quoteDate,omitempty"`
	ExpiryDate         *time.Time `json:"expiryDate,omitempty"`
	Subject            string     `json:"subject"`
	Salesperson        string     `json:"salesperson"`
	CustomerNotes      string     `json:"customerNotes"`
	TermsAndConditions string     `json:"termsAndConditions"`

	// PlaceOfSupplyState overrides the customer's shipping/billing state.
	PlaceOfSupplyState string `json:"placeOfSupplyState"`

	Items             []ItemInput     `json:"items"`
	Discount          decimal.Decimal `json:"discount"`
	DiscountType      string          `json:"discountType"`
	AdditionalTaxType string          `json:"additionalTaxType"`
	AdditionalTaxRate decimal.Decimal `json:"additionalTaxRate"`
	Adjustment        decimal.Decimal `json:"adjustment"`

	// Totals, when sent, must agree with the server derivation.
	Totals *quotetax.Totals `json:"totals,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// EngineInput maps the editor payload onto engine input without validating
// it. Lines in the GST family without a rate take defaultRate.
func (in QuoteInput) EngineInput(companyState, placeOfSupply string, defaultRate decimal.Decimal) quotetax.Input {
	items := make([]quotetax.LineItem, 0, len(in.Items))
	for _, raw := range in.Items {
		mode := quotetax.ParseTaxMode(raw.TaxMode)
		item := quotetax.LineItem{
			Name:        strings.TrimSpace(raw.Name),
			Description: strings.TrimSpace(raw.Description),
			HSNCode:     strings.TrimSpace(raw.HSNCode),
			Quantity:    raw.Quantity,
			Rate:        raw.Rate,
			TaxMode:     mode,
			TaxRate:     raw.TaxRate,
		}
		if raw.Amount != nil {
			item.Amount = *raw.Amount
			item.AmountOverridden = true
		}
		if item.TaxRate == nil && mode.IsGSTFamily() {
			rate := defaultRate
			item.TaxRate = &rate
		}
		items = append(items, item)
	}

	return quotetax.Input{
		Items:        items,
		Discount:     in.Discount,
		DiscountType: quotetax.ParseDiscountType(in.DiscountType),
		AdditionalTax: quotetax.AdditionalTax{
			Type: quotetax.ParseAdditionalTaxType(in.AdditionalTaxType),
			Rate: in.AdditionalTaxRate,
		},
		Adjustment:         in.Adjustment,
		CompanyState:       strings.TrimSpace(companyState),
		PlaceOfSupplyState: strings.TrimSpace(placeOfSupply),
	}
}

type PreviewRequest struct {
	QuoteInput
	// CompanyState overrides the organization's settings.
	CompanyState string `json:"companyState"`
}

type CreateQuoteRequest struct {
	QuoteInput
}

type UpdateQuoteRequest struct {
	ID              string `json:"-"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
	QuoteInput
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type GetQuoteRequest struct {
	ID string
}

type ListQuoteRequest struct {
	PageToken     string
	PageSize      int32
	Status        string
	CustomerID    string
	QuoteDateFrom *time.Time
	QuoteDateTo   *time.Time
}

type ListQuoteFilter struct {
	Status        Status
	CustomerID    snowflake.ID
	QuoteDateFrom *time.Time
	QuoteDateTo   *time.Time
}

type ListQuoteResponse struct {
	pagination.PageInfo
	Quotes []Quote `json:"quotes"`
}

type RenderedQuote struct {
	FileName string
	Body     io.Reader
}

type Service interface {
	Preview(context.Context, PreviewRequest) (quotetax.Result, error)
	Create(context.Context, CreateQuoteRequest) (Quote, error)
	Update(context.Context, UpdateQuoteRequest) (Quote, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (Quote, error)
	GetByID(context.Context, GetQuoteRequest) (Quote, error)
	List(context.Context, ListQuoteRequest) (ListQuoteResponse, error)
	RenderPDF(context.Context, GetQuoteRequest) (RenderedQuote, error)
}
