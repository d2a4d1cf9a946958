// Package slack posts recipe cards to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"barkeep"
	"barkeep/costing"
	"barkeep/recipe"
)

type Client struct {
	webhookURL string
	httpClient barkeep.HTTPClient
}

func NewClient(webhookURL string, httpClient barkeep.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

// PostMessage sends plain text to channel.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	slog.Info("SLACK: Message posted", "channel", channel, "length", len(message))
	return nil
}

// PostRecipe posts the recipe card.
func (c *Client) PostRecipe(ctx context.Context, channel string, r recipe.Recipe) error {
	return c.PostMessage(ctx, channel, RecipeCard(r))
}

// PostCost posts the recipe card followed by its cost summary.
func (c *Client) PostCost(ctx context.Context, channel string, r recipe.Recipe, b costing.Breakdown) error {
	return c.PostMessage(ctx, channel, RecipeCard(r)+"\n"+CostSummary(b))
}

// RecipeCard renders a recipe with Slack mrkdwn emphasis on the name.
func RecipeCard(r recipe.Recipe) string {
	text := r.Text()
	if name, rest, ok := strings.Cut(text, "\n"); ok {
		return "*" + name + "*\n" + rest
	}
	return text
}

// CostSummary renders the headline cost figures.
func CostSummary(b costing.Breakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cost per drink: $%.2f\nSale price: $%.2f\nProfit per drink: $%.2f (%.0f%%)\n",
		b.TotalCost, b.SalePrice, b.ProfitPerDrink, b.MarginPercent)
	if b.Yield != nil && b.TotalProfit != nil {
		fmt.Fprintf(&sb, "Yield: %d drinks, total profit $%.2f\n", *b.Yield, *b.TotalProfit)
	}
	if b.TotalBatchCost != nil {
		fmt.Fprintf(&sb, "Batch cost: $%.2f\n", *b.TotalBatchCost)
	}
	if b.AnchorValue != nil && b.TotalProfit != nil {
		fmt.Fprintf(&sb, "You turned $%.2f of inventory into $%.2f of profit.\n", *b.AnchorValue, *b.TotalProfit)
	}
	if b.Partial {
		sb.WriteString("_Partial estimate: some figures are unavailable._\n")
	}
	return sb.String()
}
