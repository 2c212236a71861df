package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/models"
)

var (
	categoriesAdd    string
	categoriesRemove string
	categoriesType   string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show or edit category labels",
	Long: `Show or edit category labels.

Removing a category does not touch transactions that already use it; they
keep the label until edited.`,
	Example: `  fintrack categories
  fintrack categories --add Subscriptions
  fintrack categories --remove Travel --type EXPENSE`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if categoriesAdd != "" && categoriesRemove != "" {
			return fmt.Errorf("--add and --remove cannot be combined")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		t := models.TransactionType(strings.ToUpper(categoriesType))
		if !t.Valid() {
			return fmt.Errorf("invalid transaction type %q: want INCOME or EXPENSE", categoriesType)
		}

		if categoriesAdd != "" || categoriesRemove != "" {
			current := app.syncer.Dataset().Categories
			next, err := editCategories(current, t, categoriesAdd, categoriesRemove)
			if err != nil {
				return err
			}
			if err := app.syncer.UpdateCategories(next); err != nil {
				return err
			}
		}

		categories := app.syncer.Dataset().Categories
		fmt.Println("EXPENSE:")
		for _, label := range categories.Expense {
			fmt.Printf("  %s\n", label)
		}
		fmt.Println("INCOME:")
		for _, label := range categories.Income {
			fmt.Printf("  %s\n", label)
		}
		return nil
	},
}

func editCategories(c models.CategoryState, t models.TransactionType, add, remove string) (models.CategoryState, error) {
	list := append([]string(nil), c.ListFor(t)...)

	if add != "" {
		for _, label := range list {
			if label == add {
				return models.CategoryState{}, fmt.Errorf("%s category %q already exists", t, add)
			}
		}
		list = append(list, add)
	}

	if remove != "" {
		found := false
		kept := list[:0]
		for _, label := range list {
			if label == remove {
				found = true
				continue
			}
			kept = append(kept, label)
		}
		if !found {
			return models.CategoryState{}, fmt.Errorf("no %s category %q", t, remove)
		}
		list = kept
	}

	if t == models.TypeIncome {
		c.Income = list
	} else {
		c.Expense = list
	}
	return c, nil
}

func init() {
	categoriesCmd.Flags().StringVar(&categoriesAdd, "add", "", "add a category label")
	categoriesCmd.Flags().StringVar(&categoriesRemove, "remove", "", "remove a category label")
	categoriesCmd.Flags().StringVar(&categoriesType, "type", string(models.TypeExpense), "which list to edit: INCOME or EXPENSE")
}
