package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type QuoteDocument struct {
	SellerName   string
	SellerGSTIN  string
	CompanyState string

	QuoteNumber     string
	ReferenceNumber string
	QuoteDate       string
	ExpiryDate      string
	Subject         string
	Salesperson     string

	CustomerName  string
	CustomerEmail string
	CustomerGSTIN string
	PlaceOfSupply string

	Items []QuoteLine

	// Totals are label/value pairs printed in order under the items.
	Totals []TotalLine
	Total  string

	CustomerNotes      string
	TermsAndConditions string
}

type QuoteLine struct {
	Name      string
	HSNCode   string
	Quantity  string
	Rate      string
	Taxable   string
	TaxLabel  string
	TaxAmount string
	Amount    string
}

type TotalLine struct {
	Label string
	Value string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateQuote(ctx context.Context, quote QuoteDocument) (io.Reader, error) {
	if quote.QuoteNumber == "" {
		return nil, errors.New("quote number is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Quote", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, quote.QuoteNumber, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   4,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Quote date: "+quote.QuoteDate, props.Text{Top: 0}),
			text.New("Expiry date: "+quote.ExpiryDate, props.Text{Top: 4}),
			text.New("Reference: "+quote.ReferenceNumber, props.Text{Top: 8}),
			text.New("Salesperson: "+quote.Salesperson, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Place of supply: "+quote.PlaceOfSupply, props.Text{Top: 0, Align: align.Right}),
			text.New("Seller state: "+quote.CompanyState, props.Text{Top: 4, Align: align.Right}),
		),
	)

	m.AddRow(28,
		col.New(6).Add(
			text.New(quote.SellerName, props.Text{Style: fontstyle.Bold}),
			text.New("GSTIN: "+quote.SellerGSTIN, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Quote to", props.Text{Style: fontstyle.Bold}),
			text.New(quote.CustomerName, props.Text{Top: 5}),
			text.New(quote.CustomerEmail, props.Text{Top: 9}),
			text.New("GSTIN: "+quote.CustomerGSTIN, props.Text{Top: 13}),
		),
	)

	if quote.Subject != "" {
		m.AddRow(10, text.NewCol(12, quote.Subject, props.Text{Size: 11, Style: fontstyle.Italic}))
	}

	header := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(10,
		text.NewCol(3, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "HSN/SAC", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", header),
		text.NewCol(2, "Rate", header),
		text.NewCol(2, "Taxable", header),
		text.NewCol(1, "Tax", header),
		text.NewCol(2, "Amount", header),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9, Align: align.Right}
	for _, item := range quote.Items {
		m.AddRow(12,
			text.NewCol(3, item.Name, props.Text{Size: 9}),
			text.NewCol(1, item.HSNCode, props.Text{Size: 9}),
			text.NewCol(1, item.Quantity, cell),
			text.NewCol(2, item.Rate, cell),
			text.NewCol(2, item.Taxable, cell),
			col.New(1).Add(
				text.New(item.TaxAmount, cell),
				text.New(item.TaxLabel, props.Text{Size: 7, Align: align.Right, Top: 4}),
			),
			text.NewCol(2, item.Amount, cell),
		)
	}
	m.AddRow(2, line.NewCol(12))

	for _, total := range quote.Totals {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, total.Label, props.Text{Size: 9}),
			text.NewCol(2, total.Value, cell),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, quote.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if quote.CustomerNotes != "" {
		m.AddRow(8, text.NewCol(12, "Notes", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}))
		m.AddRow(14, text.NewCol(12, quote.CustomerNotes, props.Text{Size: 9}))
	}
	if quote.TermsAndConditions != "" {
		m.AddRow(8, text.NewCol(12, "Terms and conditions", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}))
		m.AddRow(20, text.NewCol(12, quote.TermsAndConditions, props.Text{Size: 8}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
