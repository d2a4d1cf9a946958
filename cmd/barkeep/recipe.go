package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"barkeep"
	"barkeep/recipe"
	"barkeep/service"
	"barkeep/session"
	"barkeep/slack"
)

var (
	recipeParams   recipe.Params
	quality        bool
	inventoryAware bool
	modelList      string
	postToSlack    bool
	menuFile       string
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Create, show or clear the session's recipe",
}

var recipeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new recipe",
	Long: `Generate a new recipe for the session, trying each configured model in priority
order until one returns a complete recipe. A new recipe replaces the session's
recipe and discards its stored cost breakdown and training guide.`,
	Example: `  barkeep recipe create --spirit "Aged Rum" --style Tiki
  barkeep recipe create --spirit Gin --inventory-aware --session 5b1c...
  barkeep recipe create --spirit Mezcal --quality --models "openai/gpt-4o;ollama/llama3"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if menuFile != "" {
			menu, err := os.ReadFile(menuFile)
			if err != nil {
				return fmt.Errorf("read menu: %w", err)
			}
			recipeParams.Menu = string(menu)
		}
		res, err := app.api.GenerateRecipe(cmd.Context(), service.GenerateParams{
			SessionID:      session.ID(sessionID),
			Params:         recipeParams,
			Quality:        quality,
			InventoryAware: inventoryAware,
			Models:         barkeep.SplitModels(modelList),
		})
		if err != nil {
			return err
		}
		if postToSlack {
			notifySlack(cmd, func(c *slack.Client) error {
				return c.PostRecipe(cmd.Context(), app.cfg.Engine.SlackChannel, res.Recipe)
			})
		}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) error {
			fmt.Fprintf(w, "Session: %s\n\n", res.SessionID)
			return writeRecipe(w, res.Recipe)
		})
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the session's current recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		r, ok := app.api.Recipes.Current(cmd.Context(), id)
		if !ok {
			return &service.MissingStateError{ID: id, Missing: []session.Kind{session.KindRecipe}}
		}
		return render(cmd.OutOrStdout(), r, func(w io.Writer) error { return writeRecipe(w, r) })
	},
}

var recipeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the session's recipe and everything derived from it",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		if err := app.api.Recipes.Clear(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared recipe for session %s\n", id)
		return nil
	},
}

func notifySlack(cmd *cobra.Command, post func(*slack.Client) error) {
	if app.cfg.Engine.SlackWebhook == "" {
		slog.Warn("SLACK: SLACK_WEBHOOK_URL not set; skipping post")
		return
	}
	if err := post(slack.NewClient(app.cfg.Engine.SlackWebhook, http.DefaultClient)); err != nil {
		slog.Error("SLACK: Failed to post", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not post to Slack: %v\n", err)
	}
}

func init() {
	f := recipeCreateCmd.Flags()
	f.StringVar(&recipeParams.Spirit, "spirit", "", "Spirit the recipe should use up (required)")
	f.StringVar(&recipeParams.Style, "style", "", "Cocktail style, e.g. Tiki or Sour")
	f.StringVar(&recipeParams.Cuisine, "cuisine", "", "Cuisine the drink should pair with")
	f.StringVar(&recipeParams.Theme, "theme", "", "Theme or occasion")
	f.StringVar(&menuFile, "menu-file", "", "Text file of a food or drink menu the cocktail should fit")
	f.BoolVar(&quality, "quality", false, "Use the quality model priority list")
	f.BoolVar(&inventoryAware, "inventory-aware", false, "Restrict ingredients to the session's inventory")
	f.StringVar(&modelList, "models", "", "Semicolon-separated model ids overriding the priority list")
	f.BoolVar(&postToSlack, "slack", false, "Post the recipe to Slack")
	_ = recipeCreateCmd.MarkFlagRequired("spirit")

	recipeCmd.AddCommand(recipeCreateCmd, recipeShowCmd, recipeClearCmd)
	rootCmd.AddCommand(recipeCmd)
}
