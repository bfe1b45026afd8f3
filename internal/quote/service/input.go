package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/quotetax"
)

var (
	hundred       = decimal.NewFromInt(100)
	totalsEpsilon = decimal.New(1, -2)
)

// engineInput turns an editor payload into engine input. In strict mode
// (create and update) out-of-range numbers are rejected; preview leaves them
// to the engine, which coerces them to zero.
func engineInput(in domain.QuoteInput, companyState, placeOfSupply string, defaultRate decimal.Decimal, strict bool) (quotetax.Input, error) {
	if strict {
		if err := validateInput(in); err != nil {
			return quotetax.Input{}, err
		}
	}
	return in.EngineInput(companyState, placeOfSupply, defaultRate), nil
}

func validateInput(in domain.QuoteInput) error {
	if len(in.Items) == 0 {
		return domain.ErrInvalidItems
	}
	for _, item := range in.Items {
		if item.Quantity.IsNegative() {
			return domain.ErrInvalidQuantity
		}
		if item.Rate.IsNegative() {
			return domain.ErrInvalidRate
		}
		if item.Amount != nil && item.Amount.IsNegative() {
			return domain.ErrInvalidAmount
		}
		if mode := strings.TrimSpace(item.TaxMode); mode != "" && !quotetax.TaxMode(strings.ToUpper(mode)).Valid() {
			return domain.ErrInvalidTaxMode
		}
		if item.TaxRate != nil && !isPercentage(*item.TaxRate) {
			return domain.ErrInvalidTaxRate
		}
	}

	switch strings.ToLower(strings.TrimSpace(in.DiscountType)) {
	case "", string(quotetax.DiscountTypePercentage):
		if !isPercentage(in.Discount) {
			return domain.ErrInvalidDiscount
		}
	case string(quotetax.DiscountTypeAmount):
		if in.Discount.IsNegative() {
			return domain.ErrInvalidDiscount
		}
	default:
		return domain.ErrInvalidDiscountType
	}

	additional := strings.TrimSpace(in.AdditionalTaxType)
	if additional != "" && quotetax.ParseAdditionalTaxType(additional) == quotetax.AdditionalTaxNone {
		return domain.ErrInvalidAdditionalTax
	}
	if !isPercentage(in.AdditionalTaxRate) {
		return domain.ErrInvalidAdditionalTax
	}
	return nil
}

func isPercentage(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// checkTotals compares client totals with the derived ones. It returns the
// first field off by more than one paisa.
func checkTotals(client *quotetax.Totals, derived quotetax.Totals) (string, error) {
	if client == nil {
		return "", nil
	}
	fields := []struct {
		name   string
		client decimal.Decimal
		server decimal.Decimal
	}{
		{"subTotal", client.SubTotal, derived.SubTotal},
		{"discountAmount", client.DiscountAmount, derived.DiscountAmount},
		{"cgstTotal", client.CGSTTotal, derived.CGSTTotal},
		{"sgstTotal", client.SGSTTotal, derived.SGSTTotal},
		{"igstTotal", client.IGSTTotal, derived.IGSTTotal},
		{"taxAmount", client.TaxAmount, derived.TaxAmount},
		{"additionalTaxAmount", client.AdditionalTaxAmount, derived.AdditionalTaxAmount},
		{"total", client.Total, derived.Total},
	}
	for _, f := range fields {
		if f.client.Sub(f.server).Abs().GreaterThan(totalsEpsilon) {
			return f.name, fmt.Errorf("%w: %s is %s, expected %s", domain.ErrInvalidTotals, f.name, f.client.String(), f.server.StringFixed(2))
		}
	}
	return "", nil
}
