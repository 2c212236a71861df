package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	ratesFrom string
	ratesList bool
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the latest exchange rates",
	Example: `  fintrack rates --from EUR
  fintrack rates --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if ratesList {
			currencies, err := app.api.Currencies(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range currencies {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Code, c.Symbol, c.Name)
			}
			w.Flush()
			return nil
		}

		rates, err := app.api.Rates(cmd.Context(), ratesFrom)
		if err != nil {
			return err
		}

		codes := make([]string, 0, len(rates.Rates))
		for code := range rates.Rates {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Printf("1 %s on %s:\n", rates.Base, rates.Date)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, code := range codes {
			fmt.Fprintf(w, "  %s\t%.4f\n", code, rates.Rates[code])
		}
		w.Flush()
		return nil
	},
}

func init() {
	ratesCmd.Flags().StringVar(&ratesFrom, "from", "USD", "base currency code")
	ratesCmd.Flags().BoolVar(&ratesList, "list", false, "list supported currencies instead")
}
