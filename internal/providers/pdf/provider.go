package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("pdf",
	fx.Provide(New),
)

// Provider renders printable documents. Amounts arrive already formatted.
type Provider interface {
	GenerateQuote(ctx context.Context, data QuoteDocument) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateQuote(ctx context.Context, data QuoteDocument) (io.Reader, error) {
	return nil, nil
}
