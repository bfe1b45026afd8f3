package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/smallbiznis/robobooks/internal/quote/domain"
	"github.com/smallbiznis/robobooks/internal/quotetax"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotecalc [quote.json]",
		Short: "Compute GST, IGST, TDS and TCS totals for a quote",
		Long: `quotecalc runs the quote tax engine on a JSON quote and prints the
per-line tax split and the totals.

The input has the same shape as the preview endpoint body: items (with an
optional amount override per line), discount, discountType, additionalTaxType,
additionalTaxRate, adjustment, companyState and placeOfSupplyState.
GST and IGST lines without a taxRate use --default-rate.
Pass "-" or no argument to read from stdin.`,
		Example: `  # Print a summary
  quotecalc quote.json

  # Override the seller state and print JSON
  quotecalc quote.json --company-state Karnataka --json`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runQuoteCalc,
	}

	cmd.Flags().String("company-state", "", "Seller state, overrides companyState from the input")
	cmd.Flags().String("place-of-supply", "", "Place of supply, overrides placeOfSupplyState from the input")
	cmd.Flags().String("default-rate", config.DefaultTaxConfig().DefaultRate.String(), "Tax rate for GST and IGST lines without a taxRate")
	cmd.Flags().Bool("json", false, "Output the full result as JSON")
	return cmd
}

func runQuoteCalc(cmd *cobra.Command, args []string) error {
	companyState, _ := cmd.Flags().GetString("company-state")
	placeOfSupply, _ := cmd.Flags().GetString("place-of-supply")
	rawRate, _ := cmd.Flags().GetString("default-rate")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	defaultRate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
	if err != nil {
		return fmt.Errorf("invalid --default-rate %q: %w", rawRate, err)
	}

	req, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if s := strings.TrimSpace(companyState); s != "" {
		req.CompanyState = s
	}
	if s := strings.TrimSpace(placeOfSupply); s != "" {
		req.PlaceOfSupplyState = s
	}
	if strings.TrimSpace(req.CompanyState) == "" {
		return fmt.Errorf("company state is required, set companyState or --company-state")
	}

	in := req.EngineInput(req.CompanyState, req.PlaceOfSupplyState, defaultRate)
	result := quotetax.RecomputeAll(in)

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printSummary(out, in, result)
}

func readInput(stdin io.Reader, args []string) (domain.PreviewRequest, error) {
	var req domain.PreviewRequest

	src := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return req, fmt.Errorf("open quote: %w", err)
		}
		defer f.Close()
		src = f
	}

	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return req, fmt.Errorf("decode quote: %w", err)
	}
	return req, nil
}

func printSummary(w io.Writer, in quotetax.Input, result quotetax.Result) error {
	supply := "inter-state"
	if result.IsIntraState {
		supply = "intra-state"
	}
	fmt.Fprintf(w, "Company state:   %s\n", in.CompanyState)
	fmt.Fprintf(w, "Place of supply: %s (%s)\n\n", result.PlaceOfSupplyState, supply)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tItem\tMode\tAmount\tDiscount\tTaxable\tCGST\tSGST\tIGST\t")
	for i, item := range result.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1,
			item.Name,
			item.TaxMode,
			money(item.Amount),
			money(item.DiscountShare),
			money(item.TaxableAmount),
			money(item.CGST),
			money(item.SGST),
			money(item.IGST),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, o := range result.ModeOverrides {
		fmt.Fprintf(w, "note: item %d requested %s, computed as %s\n", o.Index+1, o.Requested, o.Effective)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Sub total\t%s\t\n", money(result.SubTotal))
	fmt.Fprintf(tw, "Discount\t-%s\t\n", money(result.DiscountAmount))
	if result.IsIntraState {
		fmt.Fprintf(tw, "CGST\t%s\t\n", money(result.CGSTTotal))
		fmt.Fprintf(tw, "SGST\t%s\t\n", money(result.SGSTTotal))
	} else {
		fmt.Fprintf(tw, "IGST\t%s\t\n", money(result.IGSTTotal))
	}
	switch in.AdditionalTax.Type {
	case quotetax.AdditionalTaxTDS:
		fmt.Fprintf(tw, "TDS (%s%%)\t-%s\t\n", in.AdditionalTax.Rate.String(), money(result.AdditionalTaxAmount))
	case quotetax.AdditionalTaxTCS:
		fmt.Fprintf(tw, "TCS (%s%%)\t%s\t\n", in.AdditionalTax.Rate.String(), money(result.AdditionalTaxAmount))
	}
	if !in.Adjustment.IsZero() {
		fmt.Fprintf(tw, "Adjustment\t%s\t\n", money(in.Adjustment))
	}
	fmt.Fprintf(tw, "Total\t%s\t\n", money(result.Total))
	return tw.Flush()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
