package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals and expenses by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		s := app.syncer.Dataset().Summarize()
		fmt.Printf("Income:  %s\n", s.TotalIncome.StringFixed(2))
		fmt.Printf("Expense: %s\n", s.TotalExpense.StringFixed(2))
		fmt.Printf("Balance: %s\n", s.Balance.StringFixed(2))

		if len(s.ExpenseByCategory) == 0 {
			return nil
		}

		categories := make([]string, 0, len(s.ExpenseByCategory))
		for category := range s.ExpenseByCategory {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			return s.ExpenseByCategory[categories[i]].GreaterThan(s.ExpenseByCategory[categories[j]])
		})

		fmt.Println("\nExpenses by category:")
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, category := range categories {
			fmt.Fprintf(w, "  %s\t%s\n", category, s.ExpenseByCategory[category].StringFixed(2))
		}
		w.Flush()
		return nil
	},
}
