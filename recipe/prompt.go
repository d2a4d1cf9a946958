package recipe

import (
	"fmt"
	"strings"
)

// Params are the user's generation parameters.
type Params struct {
	Spirit  string `json:"spirit"`
	Style   string `json:"style"`
	Cuisine string `json:"cuisine"`
	Theme   string `json:"theme"`
	// Menu is optional pasted menu text the cocktail should fit alongside.
	Menu string `json:"menu,omitempty"`
}

// Prompt is the model-agnostic prompt context handed to the fallback loop.
type Prompt struct {
	System string
	User   string
	Schema string
}

const userRequest = "Create a delicious cocktail recipe to help me use up my excess inventory."

// NewPrompt builds the standard generation prompt.
func NewPrompt(p Params, formatInstructions string) Prompt {
	system := fmt.Sprintf(`You are a master mixologist helping a user use up the excess liquor %s they have in their inventory by creating a creative and innovative cocktail recipe featuring %s.
The recipe should be based around the theme %q, the cuisine type %q, and the type of cocktail %q the user wants to make.
Give it a fun and creative name that doesn't necessarily include the name of the spirit or the theme.
The recipe must include the ingredient names, the ingredient amounts, the ingredient units, the instructions, the garnish, the glass, and a flavor profile.`,
		p.Spirit, p.Spirit, p.Theme, p.Cuisine, p.Style)

	if menu := strings.TrimSpace(p.Menu); menu != "" {
		system += "\nThe cocktail should fit in well with the overall theme of the following menu and must not be similar to any cocktail already on it:\n\n" + menu
	}

	return Prompt{System: system, User: userRequest, Schema: formatInstructions}
}

// NewInventoryPrompt builds a prompt that asks the model to prefer the ingredients on hand.
// It is a soft constraint: the model may still use other ingredients.
func NewInventoryPrompt(p Params, onHand []string, formatInstructions string) Prompt {
	prompt := NewPrompt(p, formatInstructions)
	if len(onHand) == 0 {
		return prompt
	}
	prompt.User = fmt.Sprintf(`%s
Please prioritize using the ingredients I have on hand (%s), but you can include other ingredients as well if needed.
Make sure all of the fields are filled out before returning the recipe.`,
		userRequest, strings.Join(onHand, ", "))
	return prompt
}
