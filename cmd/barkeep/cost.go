package main

import (
	"io"

	"github.com/spf13/cobra"

	"barkeep/slack"
)

var salePrice float64

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Cost the session's recipe against its inventory",
	Long: `Cost the session's recipe against its inventory at the given sale price.

Ingredients found in the inventory are costed from their per-ounce price.
Anything else is estimated by the cost model. Yield is how many drinks the
inventory's stock of the recipe's first ingredient can make.`,
	Example: `  barkeep cost --price 14 --session 5b1c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		res, err := app.api.ComputeCost(cmd.Context(), id, salePrice)
		if err != nil {
			return err
		}
		if postToSlack {
			notifySlack(cmd, func(c *slack.Client) error {
				r, _ := app.api.Recipes.Current(cmd.Context(), id)
				return c.PostCost(cmd.Context(), app.cfg.Engine.SlackChannel, r, res.Breakdown)
			})
		}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) error { return writeBreakdown(w, res.Breakdown) })
	},
}

func init() {
	costCmd.Flags().Float64VarP(&salePrice, "price", "p", 0, "Sale price per drink (required)")
	costCmd.Flags().BoolVar(&postToSlack, "slack", false, "Post the breakdown to Slack")
	_ = costCmd.MarkFlagRequired("price")
	rootCmd.AddCommand(costCmd)
}
