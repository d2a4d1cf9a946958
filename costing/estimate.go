package costing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"barkeep/completion"
	"barkeep/recipe"
)

// estimateParams matches the generation defaults with a tighter token budget.
var estimateParams = completion.Params{
	MaxTokens:        1000,
	Temperature:      1,
	TopP:             0.9,
	FrequencyPenalty: 0.5,
	PresencePenalty:  0.5,
}

// EstimateSchema is the output shape of the non-inventory estimate.
func EstimateSchema() *jsonschema.Schema {
	minCost := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"total_ni_cost": {
				Type:        "number",
				Description: "The estimated total cost of the non-inventory ingredients, in dollars",
				Minimum:     &minCost,
			},
		},
		Required: []string{"total_ni_cost"},
	}
}

func describe(ings []recipe.Ingredient) string {
	parts := make([]string, len(ings))
	for i, ing := range ings {
		parts[i] = fmt.Sprintf("(%s, %s, %s)", ing.Name, recipe.FormatAmount(ing.Amount), ing.Unit)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewEstimateRequest builds the single-shot estimate request for the unmatched set.
func NewEstimateRequest(model string, unmatched []recipe.Ingredient) completion.Request {
	list := describe(unmatched)
	fi := completion.FormatInstructions(EstimateSchema())
	system := "You are a bar manager helping the user estimate the cost of ingredients " + list +
		" in a cocktail you created for them. Each ingredient in the list has the following format: (ingredient name, amount, unit). " +
		"Do your best to estimate the total cost of the ingredients in the cocktail as a float. " +
		"This is only an estimate, so you do not need to be exact."
	user := "Given the ingredients and their amounts in " + list + ", can you help me estimate the total cost of the ingredients? " +
		"It's okay if you don't know the exact cost. Just give me your best guess as a float."
	req := completion.NewStructuredRequest(system, user, fi, model)
	req.Params = estimateParams
	return req
}

// ParseEstimate reads {"total_ni_cost": x}, tolerating fences and a bare number.
func ParseEstimate(raw string) (float64, error) {
	var out struct {
		TotalNICost *float64 `json:"total_ni_cost"`
	}
	if err := json.Unmarshal([]byte(recipe.Normalize(raw)), &out); err == nil && out.TotalNICost != nil {
		return validEstimate(*out.TotalNICost)
	}
	s := strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return validEstimate(v)
	}
	return 0, fmt.Errorf("unparseable cost estimate: %q", raw)
}

func validEstimate(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite cost estimate %v", v)
	}
	if v < 0 {
		return 0, errors.New("negative cost estimate")
	}
	return v, nil
}

func (e *Engine) estimate(ctx context.Context, unmatched []recipe.Ingredient) (float64, error) {
	if e.client == nil || e.costModel == "" {
		return 0, errors.New("no cost model configured")
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	slog.Info("COSTING: Requesting non-inventory estimate", "model", e.costModel, "ingredients", len(unmatched))
	raw, err := e.client.Complete(ctx, NewEstimateRequest(e.costModel, unmatched))
	if err != nil {
		return 0, err
	}
	return ParseEstimate(raw)
}
