// Package quotetax derives GST/IGST line taxes and quote totals.
//
// Everything in this package is pure: the same input always yields the same
// output, inputs are never mutated and no function returns an error. Invalid
// numbers are coerced to zero instead of being rejected; validation belongs to
// the callers that accept user input.
package quotetax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxMode is the per-line taxation treatment.
type TaxMode string

const (
	TaxModeGST        TaxMode = "GST"  // CGST + SGST, intra-state supply
	TaxModeIGST       TaxMode = "IGST" // integrated GST, inter-state supply
	TaxModeNonTaxable TaxMode = "NON_TAXABLE"
	TaxModeNoGST      TaxMode = "NO_GST"
	TaxModeExport     TaxMode = "EXPORT" // zero-rated, kept distinct for reporting
)

// DiscountType selects how the quote-level discount is interpreted.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeAmount     DiscountType = "amount"
)

// AdditionalTaxType is the optional withholding (TDS) or collection (TCS)
// tax applied on the discounted sub total.
type AdditionalTaxType string

const (
	AdditionalTaxNone AdditionalTaxType = ""
	AdditionalTaxTDS  AdditionalTaxType = "TDS"
	AdditionalTaxTCS  AdditionalTaxType = "TCS"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// DefaultTaxRate is applied to GST and IGST lines that carry no rate.
	DefaultTaxRate = decimal.NewFromInt(18)
)

// ParseTaxMode normalizes a raw mode. An empty mode is the editor default
// (GST); anything unrecognised is treated as non-taxable.
func ParseTaxMode(raw string) TaxMode {
	switch TaxMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", TaxModeGST:
		return TaxModeGST
	case TaxModeIGST:
		return TaxModeIGST
	case TaxModeNoGST:
		return TaxModeNoGST
	case TaxModeExport:
		return TaxModeExport
	default:
		return TaxModeNonTaxable
	}
}

// Valid reports whether m is one of the known modes.
func (m TaxMode) Valid() bool {
	switch m {
	case TaxModeGST, TaxModeIGST, TaxModeNonTaxable, TaxModeNoGST, TaxModeExport:
		return true
	default:
		return false
	}
}

// IsGSTFamily reports whether the mode carries GST (split or integrated).
func (m TaxMode) IsGSTFamily() bool {
	return m == TaxModeGST || m == TaxModeIGST
}

// ParseDiscountType defaults to percentage.
func ParseDiscountType(raw string) DiscountType {
	if DiscountType(strings.ToLower(strings.TrimSpace(raw))) == DiscountTypeAmount {
		return DiscountTypeAmount
	}
	return DiscountTypePercentage
}

// ParseAdditionalTaxType returns AdditionalTaxNone for anything but TDS/TCS.
func ParseAdditionalTaxType(raw string) AdditionalTaxType {
	switch AdditionalTaxType(strings.ToUpper(strings.TrimSpace(raw))) {
	case AdditionalTaxTDS:
		return AdditionalTaxTDS
	case AdditionalTaxTCS:
		return AdditionalTaxTCS
	default:
		return AdditionalTaxNone
	}
}

// ResolveLineTaxMode maps GST and IGST onto whichever one the place of supply
// requires. The user's literal choice between the two is not kept.
func ResolveLineTaxMode(requested TaxMode, isIntraState bool) TaxMode {
	if !requested.IsGSTFamily() {
		return requested
	}
	if isIntraState {
		return TaxModeGST
	}
	return TaxModeIGST
}

// ResolvePlaceOfSupply falls back to the company state when the buyer state
// is unknown.
func ResolvePlaceOfSupply(companyState, placeOfSupplyState string) string {
	if pos := strings.TrimSpace(placeOfSupplyState); pos != "" {
		return pos
	}
	return strings.TrimSpace(companyState)
}

// IsIntraState compares the seller state with the place of supply, ignoring
// case and surrounding whitespace.
func IsIntraState(companyState, placeOfSupplyState string) bool {
	pos := ResolvePlaceOfSupply(companyState, placeOfSupplyState)
	return strings.EqualFold(strings.TrimSpace(companyState), pos)
}
