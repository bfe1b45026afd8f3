package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTaxFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tax.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTaxConfigHolder_ReadsFile(t *testing.T) {
	path := writeTaxFile(t, `
tax:
  defaultRate: 12
  companyState: Karnataka
  quoteValidityDays: 15
  quoteNumberPrefix: "EST-"
`)

	holder, err := NewTaxConfigHolder(Config{TaxConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, "12", got.DefaultRate.String())
	assert.Equal(t, "Karnataka", got.CompanyState)
	assert.Equal(t, 15, got.QuoteValidityDays)
	assert.Equal(t, "EST-", got.QuoteNumberPrefix)
}

func TestTaxConfigHolder_MissingKeysUseDefaults(t *testing.T) {
	path := writeTaxFile(t, `
tax:
  companyState: Goa
`)

	holder, err := NewTaxConfigHolder(Config{TaxConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, "18", got.DefaultRate.String())
	assert.Equal(t, "Goa", got.CompanyState)
	assert.Equal(t, 30, got.QuoteValidityDays)
	assert.Equal(t, "QT-", got.QuoteNumberPrefix)
}

func TestTaxConfigHolder_FractionalRateIsExact(t *testing.T) {
	path := writeTaxFile(t, `
tax:
  defaultRate: "12.35"
`)

	holder, err := NewTaxConfigHolder(Config{TaxConfigPath: path}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, holder.Get().DefaultRate.Equal(decimal.RequireFromString("12.35")))
	assert.Equal(t, "12.35", holder.Get().DefaultRate.String())
}

func TestTaxConfigHolder_RejectsNonNumericRate(t *testing.T) {
	path := writeTaxFile(t, `
tax:
  defaultRate: eighteen
`)

	_, err := NewTaxConfigHolder(Config{TaxConfigPath: path}, zap.NewNop())
	assert.ErrorContains(t, err, "tax.defaultRate")
}

func TestTaxConfigHolder_RejectsInvalidFile(t *testing.T) {
	path := writeTaxFile(t, `
tax:
  defaultRate: 140
`)

	_, err := NewTaxConfigHolder(Config{TaxConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestTaxConfigHolder_NilHolderReturnsDefaults(t *testing.T) {
	var holder *TaxConfigHolder
	assert.Equal(t, DefaultTaxConfig(), holder.Get())
}

func TestValidateTaxConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TaxConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*TaxConfig) {}},
		{name: "zero rate", mutate: func(c *TaxConfig) { c.DefaultRate = decimal.Zero }},
		{name: "negative rate", mutate: func(c *TaxConfig) { c.DefaultRate = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "above hundred", mutate: func(c *TaxConfig) { c.DefaultRate = decimal.RequireFromString("100.01") }, wantErr: true},
		{name: "no validity", mutate: func(c *TaxConfig) { c.QuoteValidityDays = 0 }, wantErr: true},
		{name: "empty prefix", mutate: func(c *TaxConfig) { c.QuoteNumberPrefix = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTaxConfig()
			tt.mutate(&cfg)
			err := validateTaxConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
