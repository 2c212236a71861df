package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/models"
)

var (
	addDate     string
	addAmount   string
	addType     string
	addCategory string
	addNote     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Example: `  fintrack add --amount 12.50 --category Food --note "lunch"
  fintrack add --amount 3200 --type INCOME --category Salary --date 2026-08-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(addAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", addAmount, err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		added, err := app.syncer.AddTransaction(models.Transaction{
			Date:     addDate,
			Amount:   amount,
			Type:     models.TransactionType(strings.ToUpper(addType)),
			Category: addCategory,
			Note:     addNote,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %s (%s) %s\n", added.Date, added.Amount.StringFixed(2), added.Category, added.ID)
		return nil
	},
}

var (
	listMonth string
	listType  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		typeFilter := models.TransactionType(strings.ToUpper(listType))
		if listType != "" && !typeFilter.Valid() {
			return fmt.Errorf("invalid transaction type %q: want INCOME or EXPENSE", listType)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tNOTE\tID")
		count := 0
		for _, t := range app.syncer.Dataset().Transactions {
			if listMonth != "" && !strings.HasPrefix(t.Date, listMonth) {
				continue
			}
			if listType != "" && t.Type != typeFilter {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.Date, t.Type, t.Amount.StringFixed(2), t.Category, t.Note, t.ID)
			count++
		}
		w.Flush()
		if count == 0 {
			fmt.Println("No transactions.")
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		id := args[0]
		if _, ok := app.syncer.Dataset().Find(id); !ok {
			return fmt.Errorf("no transaction with ID %s", id)
		}
		if err := app.syncer.DeleteTransaction(id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", time.Now().Format(models.DateLayout), "transaction date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "amount (required)")
	addCmd.Flags().StringVar(&addType, "type", string(models.TypeExpense), "INCOME or EXPENSE")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category label (required)")
	addCmd.Flags().StringVar(&addNote, "note", "", "free-form note")
	addCmd.MarkFlagRequired("amount")
	addCmd.MarkFlagRequired("category")

	listCmd.Flags().StringVar(&listMonth, "month", "", "only show a month (YYYY-MM)")
	listCmd.Flags().StringVar(&listType, "type", "", "only show INCOME or EXPENSE")
}
