package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Get AI-generated advice on your spending",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.resolve(cmd.Context()); err != nil {
			return err
		}

		text, err := app.api.Insights(cmd.Context(), app.syncer.Dataset().Transactions)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}
