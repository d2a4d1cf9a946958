// Package recipe defines the cocktail recipe model and the strict
// parse-then-validate boundary between raw model output and typed recipes.
package recipe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ingredient is one line of a recipe. Amount is nil when the model gave none.
type Ingredient struct {
	Name   string   `json:"name" yaml:"name"`
	Amount *float64 `json:"amount" yaml:"amount"`
	Unit   string   `json:"unit" yaml:"unit"`
}

// Recipe is a parsed, structured cocktail recipe.
type Recipe struct {
	Name          string       `json:"name" yaml:"name"`
	Ingredients   []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions  []string     `json:"instructions" yaml:"instructions"`
	Garnish       string       `json:"garnish" yaml:"garnish"`
	Glass         string       `json:"glass" yaml:"glass"`
	FlavorProfile string       `json:"flavor_profile,omitempty" yaml:"flavor_profile,omitempty"`
}

// Validate reports the first completeness constraint the recipe violates.
func (r Recipe) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return errMissing("name")
	case len(r.Ingredients) == 0:
		return errMissing("ingredients")
	case len(r.Instructions) == 0:
		return errMissing("instructions")
	case strings.TrimSpace(r.Garnish) == "":
		return errMissing("garnish")
	case strings.TrimSpace(r.Glass) == "":
		return errMissing("glass")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrIncomplete, i)
		}
		if a := ing.Amount; a != nil && (*a < 0 || math.IsNaN(*a) || math.IsInf(*a, 0)) {
			return fmt.Errorf("%w: ingredient %q has invalid amount %v", ErrMalformed, ing.Name, *a)
		}
	}
	return nil
}

// IsComplete checks if the Recipe may be stored as a session's current recipe.
func (r Recipe) IsComplete() bool {
	return r.Validate() == nil
}

// Anchor returns the first ingredient, the basis for yield computation.
func (r Recipe) Anchor() (Ingredient, bool) {
	if len(r.Ingredients) == 0 {
		return Ingredient{}, false
	}
	return r.Ingredients[0], true
}

// IngredientNames returns ingredient names in recipe order.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// Text renders the recipe as plain text for chat prompts, the CLI and Slack.
func (r Recipe) Text() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString("\n\nIngredients:\n")
	for _, ing := range r.Ingredients {
		b.WriteString("- ")
		b.WriteString(ing.String())
		b.WriteByte('\n')
	}
	b.WriteString("\nInstructions:\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\nGarnish: %s\nGlass: %s\n", r.Garnish, r.Glass)
	if r.FlavorProfile != "" {
		fmt.Fprintf(&b, "Flavor profile: %s\n", r.FlavorProfile)
	}
	return b.String()
}

// String renders "2 oz Gin", omitting whatever is missing.
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	if a := FormatAmount(i.Amount); a != "" {
		parts = append(parts, a)
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	parts = append(parts, i.Name)
	return strings.Join(parts, " ")
}

// FormatAmount prints whole numbers without a fractional part ("2", not "2.0").
func FormatAmount(a *float64) string {
	if a == nil {
		return ""
	}
	return strconv.FormatFloat(*a, 'f', -1, 64)
}

// Amount is a convenience for building ingredients in code and tests.
func Amount(v float64) *float64 {
	return &v
}
