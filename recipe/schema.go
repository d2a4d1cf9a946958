package recipe

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

// Schema describes the structured output the model is asked to produce.
func Schema() *jsonschema.Schema {
	minAmount := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {
				Type:        "string",
				Description: "Name of the cocktail recipe",
			},
			"ingredient_names": {
				Type:        "array",
				Description: "A list of the names of the ingredients in the cocktail.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"ingredient_amounts": {
				Type:        "array",
				Description: "A list of the amounts of the ingredients in the cocktail, in the same order as ingredient_names. Use null if the amount is not specified.",
				Items:       &jsonschema.Schema{Type: "number", Minimum: &minAmount},
			},
			"ingredient_units": {
				Type:        "array",
				Description: "A list of the units of the ingredients in the cocktail, in the same order as ingredient_names.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"instructions": {
				Type:        "array",
				Description: "Instructions for preparing the cocktail",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"garnish":        {Type: "string", Description: "Garnish for the cocktail"},
			"glass":          {Type: "string", Description: "Glass to serve the cocktail in"},
			"flavor_profile": {Type: "string", Description: "Flavor profile of the cocktail"},
		},
		Required: []string{
			"name", "ingredient_names", "ingredient_amounts", "ingredient_units",
			"instructions", "garnish", "glass", "flavor_profile",
		},
	}
}
