package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/robobooks/internal/customer/domain"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/smallbiznis/robobooks/internal/providers/pdf"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"go.uber.org/zap"
)

const documentDateLayout = "02 Jan 2006"

func (s *Service) RenderPDF(ctx context.Context, req domain.GetQuoteRequest) (domain.RenderedQuote, error) {
	quote, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.RenderedQuote{}, err
	}

	companySettings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.RenderedQuote{}, err
	}

	// A deleted customer still leaves a printable quote.
	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: quote.CustomerID.String()})
	if err != nil && !errors.Is(err, customerdomain.ErrNotFound) {
		return domain.RenderedQuote{}, err
	}

	// The PDF prints what was saved; drift only means the engine changed since.
	if _, err := checkTotals(ptrTotals(quote.Totals()), quotetax.RecomputeAll(quote.EngineInput()).Totals); err != nil {
		s.log.Warn("stored quote totals differ from recompute",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err),
		)
	}

	doc := buildQuoteDocument(quote, customer)
	doc.SellerName = companySettings.LegalName
	doc.SellerGSTIN = companySettings.GSTIN

	body, err := s.pdf.GenerateQuote(ctx, doc)
	if err != nil {
		orgID, _ := orgcontext.OrgIDFromContext(ctx)
		s.log.Error("render quote pdf", zap.Error(err),
			zap.String("org_id", orgID.String()),
			zap.String("quote_id", quote.ID.String()),
		)
		return domain.RenderedQuote{}, err
	}

	return domain.RenderedQuote{
		FileName: quote.QuoteNumber + ".pdf",
		Body:     body,
	}, nil
}

func buildQuoteDocument(quote domain.Quote, customer customerdomain.Customer) pdf.QuoteDocument {
	doc := pdf.QuoteDocument{
		CompanyState:       quote.CompanyState,
		QuoteNumber:        quote.QuoteNumber,
		ReferenceNumber:    quote.ReferenceNumber,
		QuoteDate:          quote.QuoteDate.Format(documentDateLayout),
		ExpiryDate:         quote.ExpiryDate.Format(documentDateLayout),
		Subject:            quote.Subject,
		Salesperson:        quote.Salesperson,
		CustomerName:       customer.Name,
		CustomerEmail:      customer.Email,
		CustomerGSTIN:      customer.GSTIN,
		PlaceOfSupply:      quote.PlaceOfSupplyState,
		Total:              money(quote.Total),
		CustomerNotes:      quote.CustomerNotes,
		TermsAndConditions: quote.TermsAndConditions,
	}

	for _, item := range quote.Items {
		doc.Items = append(doc.Items, pdf.QuoteLine{
			Name:      item.Name,
			HSNCode:   item.HSNCode,
			Quantity:  item.Quantity.String(),
			Rate:      money(item.Rate),
			Taxable:   money(item.TaxableAmount),
			TaxLabel:  taxLabel(quotetax.TaxMode(item.TaxMode), item.TaxRate),
			TaxAmount: money(item.TaxAmount),
			Amount:    money(item.Amount),
		})
	}

	doc.Totals = append(doc.Totals, pdf.TotalLine{Label: "Sub total", Value: money(quote.SubTotal)})
	if !quote.DiscountAmount.IsZero() {
		label := "Discount"
		if quotetax.ParseDiscountType(quote.DiscountType) == quotetax.DiscountTypePercentage {
			label = fmt.Sprintf("Discount (%s%%)", quote.Discount.String())
		}
		doc.Totals = append(doc.Totals, pdf.TotalLine{Label: label, Value: money(quote.DiscountAmount.Neg())})
	}
	if !quote.CGSTTotal.IsZero() || !quote.SGSTTotal.IsZero() {
		doc.Totals = append(doc.Totals,
			pdf.TotalLine{Label: "CGST", Value: money(quote.CGSTTotal)},
			pdf.TotalLine{Label: "SGST", Value: money(quote.SGSTTotal)},
		)
	}
	if !quote.IGSTTotal.IsZero() {
		doc.Totals = append(doc.Totals, pdf.TotalLine{Label: "IGST", Value: money(quote.IGSTTotal)})
	}
	switch quotetax.ParseAdditionalTaxType(quote.AdditionalTaxType) {
	case quotetax.AdditionalTaxTDS:
		doc.Totals = append(doc.Totals, pdf.TotalLine{
			Label: fmt.Sprintf("TDS (%s%%)", quote.AdditionalTaxRate.String()),
			Value: money(quote.AdditionalTaxAmount.Neg()),
		})
	case quotetax.AdditionalTaxTCS:
		doc.Totals = append(doc.Totals, pdf.TotalLine{
			Label: fmt.Sprintf("TCS (%s%%)", quote.AdditionalTaxRate.String()),
			Value: money(quote.AdditionalTaxAmount),
		})
	}
	if !quote.Adjustment.IsZero() {
		doc.Totals = append(doc.Totals, pdf.TotalLine{Label: "Adjustment", Value: money(quote.Adjustment)})
	}
	return doc
}

func taxLabel(mode quotetax.TaxMode, rate decimal.Decimal) string {
	switch mode {
	case quotetax.TaxModeGST:
		return fmt.Sprintf("GST %s%%", rate.String())
	case quotetax.TaxModeIGST:
		return fmt.Sprintf("IGST %s%%", rate.String())
	case quotetax.TaxModeExport:
		return "Export"
	case quotetax.TaxModeNoGST:
		return "No GST"
	default:
		return "Non-taxable"
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func ptrTotals(t quotetax.Totals) *quotetax.Totals {
	return &t
}
