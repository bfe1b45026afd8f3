package quotetax

import "github.com/shopspring/decimal"

// LineItem is one quote line. Quantity, Rate, Amount, TaxMode and TaxRate are
// inputs; the remaining fields are derived by RecomputeAll.
type LineItem struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	HSNCode     string `json:"hsnCode,omitempty"`

	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
	// AmountOverridden keeps a directly edited Amount instead of
	// Quantity × Rate.
	AmountOverridden bool `json:"amountOverridden,omitempty"`

	TaxMode TaxMode          `json:"taxMode"`
	TaxRate *decimal.Decimal `json:"taxRate,omitempty"`

	DiscountShare decimal.Decimal `json:"discountShare"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// LineTax is the tax split of a single line.
type LineTax struct {
	CGST      decimal.Decimal `json:"cgst"`
	SGST      decimal.Decimal `json:"sgst"`
	IGST      decimal.Decimal `json:"igst"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
}

// AdditionalTax is the TDS/TCS selection of a quote.
type AdditionalTax struct {
	Type AdditionalTaxType `json:"additionalTaxType"`
	Rate decimal.Decimal   `json:"additionalTaxRate"`
}

// Input is everything RecomputeAll reads.
type Input struct {
	Items              []LineItem      `json:"items"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountType       DiscountType    `json:"discountType"`
	AdditionalTax      AdditionalTax   `json:"additionalTax"`
	Adjustment         decimal.Decimal `json:"adjustment"`
	CompanyState       string          `json:"companyState"`
	PlaceOfSupplyState string          `json:"placeOfSupplyState"`
}

// Totals is the aggregate block persisted with a quote.
type Totals struct {
	SubTotal            decimal.Decimal `json:"subTotal"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	CGSTTotal           decimal.Decimal `json:"cgstTotal"`
	SGSTTotal           decimal.Decimal `json:"sgstTotal"`
	IGSTTotal           decimal.Decimal `json:"igstTotal"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	AdditionalTaxAmount decimal.Decimal `json:"additionalTaxAmount"`
	Total               decimal.Decimal `json:"total"`
}

// ModeOverride records a line whose requested GST/IGST choice was replaced
// by the mode the place of supply requires.
type ModeOverride struct {
	Index     int     `json:"index"`
	Requested TaxMode `json:"requested"`
	Effective TaxMode `json:"effective"`
}

// Result is the output of RecomputeAll.
type Result struct {
	Items []LineItem `json:"items"`
	Totals
	PlaceOfSupplyState string         `json:"placeOfSupplyState"`
	IsIntraState       bool           `json:"isIntraState"`
	ModeOverrides      []ModeOverride `json:"modeOverrides,omitempty"`
}

// ComputeLineTax splits the tax on an already discounted line amount.
func ComputeLineTax(taxableAmount decimal.Decimal, effectiveMode TaxMode, rate decimal.Decimal) LineTax {
	out := LineTax{
		CGST:      decimal.Zero,
		SGST:      decimal.Zero,
		IGST:      decimal.Zero,
		TaxAmount: decimal.Zero,
	}
	if !taxableAmount.IsPositive() {
		return out
	}

	switch effectiveMode {
	case TaxModeGST:
		half := taxableAmount.Mul(rate).Div(hundred).Div(two)
		out.CGST = half
		out.SGST = half
		out.TaxAmount = half.Add(half)
	case TaxModeIGST:
		igst := taxableAmount.Mul(rate).Div(hundred)
		out.IGST = igst
		out.TaxAmount = igst
	}
	return out
}

// RecomputeAll derives every line's tax fields and the quote totals.
//
// The quote discount is spread back over the lines in proportion to their
// amount, and each line is taxed on its own post-discount amount. TDS and TCS
// are computed on the discounted sub total and never compound with GST.
func RecomputeAll(in Input) Result {
	isIntra := IsIntraState(in.CompanyState, in.PlaceOfSupplyState)

	items := make([]LineItem, len(in.Items))
	subTotal := decimal.Zero
	for i, raw := range in.Items {
		item := normalizeItem(raw)
		items[i] = item
		subTotal = subTotal.Add(item.Amount)
	}

	discountAmount := discountAmount(subTotal, nonNegative(in.Discount), ParseDiscountType(string(in.DiscountType)))

	totals := Totals{
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		CGSTTotal:      decimal.Zero,
		SGSTTotal:      decimal.Zero,
		IGSTTotal:      decimal.Zero,
		TaxAmount:      decimal.Zero,
	}

	var overrides []ModeOverride
	for i := range items {
		item := &items[i]

		itemDiscount := decimal.Zero
		if subTotal.IsPositive() {
			itemDiscount = discountAmount.Mul(item.Amount).Div(subTotal)
		}
		taxable := item.Amount.Sub(itemDiscount)

		rate := decimal.Zero
		if item.TaxMode.IsGSTFamily() {
			rate = DefaultTaxRate
			if item.TaxRate != nil {
				rate = nonNegative(*item.TaxRate)
			}
		}

		effective := ResolveLineTaxMode(item.TaxMode, isIntra)
		if effective != item.TaxMode {
			overrides = append(overrides, ModeOverride{Index: i, Requested: item.TaxMode, Effective: effective})
		}

		tax := ComputeLineTax(taxable, effective, rate)
		item.DiscountShare = itemDiscount
		item.TaxableAmount = taxable
		item.CGST = tax.CGST
		item.SGST = tax.SGST
		item.IGST = tax.IGST
		item.TaxAmount = tax.TaxAmount
		item.TaxRate = &rate
		item.TaxMode = effective

		totals.CGSTTotal = totals.CGSTTotal.Add(tax.CGST)
		totals.SGSTTotal = totals.SGSTTotal.Add(tax.SGST)
		totals.IGSTTotal = totals.IGSTTotal.Add(tax.IGST)
	}
	totals.TaxAmount = totals.CGSTTotal.Add(totals.SGSTTotal).Add(totals.IGSTTotal)

	discounted := subTotal.Sub(discountAmount)
	additionalType := ParseAdditionalTaxType(string(in.AdditionalTax.Type))
	totals.AdditionalTaxAmount = decimal.Zero
	if additionalType != AdditionalTaxNone {
		totals.AdditionalTaxAmount = discounted.Mul(nonNegative(in.AdditionalTax.Rate)).Div(hundred)
	}
	signedAdditional := totals.AdditionalTaxAmount
	if additionalType == AdditionalTaxTDS {
		signedAdditional = signedAdditional.Neg()
	}

	totals.Total = discounted.
		Add(totals.TaxAmount).
		Add(signedAdditional).
		Add(in.Adjustment)

	return Result{
		Items:              items,
		Totals:             totals,
		PlaceOfSupplyState: ResolvePlaceOfSupply(in.CompanyState, in.PlaceOfSupplyState),
		IsIntraState:       isIntra,
		ModeOverrides:      overrides,
	}
}

func discountAmount(subTotal, discount decimal.Decimal, discountType DiscountType) decimal.Decimal {
	if discountType == DiscountTypeAmount {
		return discount
	}
	return subTotal.Mul(discount).Div(hundred)
}

// normalizeItem copies the line, clamps negative inputs to zero and
// recomputes Amount unless it was edited directly.
func normalizeItem(raw LineItem) LineItem {
	item := raw
	item.Quantity = nonNegative(raw.Quantity)
	item.Rate = nonNegative(raw.Rate)
	if raw.AmountOverridden {
		item.Amount = nonNegative(raw.Amount)
	} else {
		item.Amount = item.Quantity.Mul(item.Rate)
	}
	item.TaxMode = ParseTaxMode(string(raw.TaxMode))
	if raw.TaxRate != nil {
		rate := *raw.TaxRate
		item.TaxRate = &rate
	}
	return item
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
