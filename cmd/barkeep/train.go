package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"barkeep"
)

var trainModels string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Write a staff training guide for the session's recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		g, err := app.api.Training.Guide(cmd.Context(), id, barkeep.SplitModels(trainModels))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), g, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Training guide: %s\n\n%s\n", g.Recipe, g.Guide)
			return err
		})
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainModels, "models", "", "Semicolon-separated model ids overriding the chat priority list")
	rootCmd.AddCommand(trainCmd)
}
