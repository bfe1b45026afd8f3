package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interStateQuote = `{
  "companyState": "Karnataka",
  "placeOfSupplyState": "Maharashtra",
  "items": [
    {"name": "Consulting", "quantity": "1", "rate": "100000", "taxMode": "GST", "taxRate": "18"}
  ],
  "discount": "10",
  "discountType": "percentage",
  "additionalTaxType": "TDS",
  "additionalTaxRate": "10"
}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCalcSummaryFromStdin(t *testing.T) {
	out, err := execute(t, interStateQuote)
	require.NoError(t, err)

	assert.Contains(t, out, "Place of supply: Maharashtra (inter-state)")
	assert.Contains(t, out, "note: item 1 requested GST, computed as IGST")
	assert.Contains(t, out, "90000.00")
	assert.Contains(t, out, "16200.00")
	assert.Contains(t, out, "TDS (10%)")
	assert.Contains(t, out, "-9000.00")
	assert.Contains(t, out, "97200.00")
}

func TestQuoteCalcJSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.json")
	require.NoError(t, os.WriteFile(path, []byte(interStateQuote), 0o600))

	out, err := execute(t, "", path, "--json", "--place-of-supply", "Karnataka")
	require.NoError(t, err)

	var result quotetax.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.IsIntraState)
	assert.True(t, result.CGSTTotal.Equal(decimal.NewFromInt(8100)), result.CGSTTotal.String())
	assert.True(t, result.SGSTTotal.Equal(decimal.NewFromInt(8100)), result.SGSTTotal.String())
	assert.True(t, result.Total.Equal(decimal.NewFromInt(97200)), result.Total.String())
}

func TestQuoteCalcAmountOverrideAndLowercaseTDS(t *testing.T) {
	body := `{
  "companyState": "Goa",
  "items": [
    {"name": "Setup", "quantity": "2", "rate": "100", "amount": "150", "taxMode": "GST", "taxRate": "18"},
    {"name": "Licence", "quantity": "1", "rate": "1000", "taxMode": "NO_GST"}
  ],
  "additionalTaxType": "tds",
  "additionalTaxRate": "10"
}`

	out, err := execute(t, body, "--json")
	require.NoError(t, err)

	var result quotetax.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].Amount.Equal(decimal.NewFromInt(150)), result.Items[0].Amount.String())
	assert.True(t, result.SubTotal.Equal(decimal.NewFromInt(1150)), result.SubTotal.String())
	assert.True(t, result.AdditionalTaxAmount.Equal(decimal.NewFromInt(115)), result.AdditionalTaxAmount.String())
	// 1150 + 13.50 CGST + 13.50 SGST - 115 TDS
	assert.True(t, result.Total.Equal(decimal.RequireFromString("1062")), result.Total.String())

	out, err = execute(t, body)
	require.NoError(t, err)
	assert.Contains(t, out, "TDS (10%)")
	assert.Contains(t, out, "-115.00")
	assert.Contains(t, out, "1062.00")
}

func TestQuoteCalcDefaultRateFillsMissingTaxRate(t *testing.T) {
	body := `{"companyState":"Goa","items":[{"name":"Audit","quantity":"1","rate":"1000","taxMode":"GST"}]}`

	out, err := execute(t, body, "--json", "--default-rate", "12.5")
	require.NoError(t, err)

	var result quotetax.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.CGSTTotal.Equal(decimal.RequireFromString("62.5")), result.CGSTTotal.String())
	assert.True(t, result.Total.Equal(decimal.NewFromInt(1125)), result.Total.String())

	_, err = execute(t, body, "--default-rate", "high")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--default-rate")
}

func TestQuoteCalcRequiresCompanyState(t *testing.T) {
	_, err := execute(t, `{"items":[{"quantity":"1","rate":"10"}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company state is required")

	out, err := execute(t, `{"items":[{"quantity":"1","rate":"10","taxMode":"NO_GST"}]}`, "--company-state", "Goa")
	require.NoError(t, err)
	assert.Contains(t, out, "(intra-state)")
	assert.Contains(t, out, "10.00")
}

func TestQuoteCalcRejectsBadInput(t *testing.T) {
	_, err := execute(t, `{"items":`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode quote")

	_, err = execute(t, "", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open quote")
}
