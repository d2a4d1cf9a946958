package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecipeJSON = `{
  "name": "Juniper Lantern",
  "ingredient_names": ["Gin", "Lemon Juice", "Honey Syrup", "Angostura Bitters"],
  "ingredient_amounts": [2, 0.75, "1/2", null],
  "ingredient_units": ["oz", "oz", "oz", "dash"],
  "instructions": ["Shake with ice.", "Strain into a chilled coupe."],
  "garnish": "Lemon twist",
  "glass": "Coupe",
  "flavor_profile": "Bright and floral"
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		constraint string
		check      func(t *testing.T, r Recipe)
	}{
		{
			name: "valid recipe",
			raw:  validRecipeJSON,
			check: func(t *testing.T, r Recipe) {
				assert.Equal(t, "Juniper Lantern", r.Name)
				require.Len(t, r.Ingredients, 4)
				assert.Equal(t, Ingredient{Name: "Gin", Amount: Amount(2), Unit: "oz"}, r.Ingredients[0])
				assert.Equal(t, 0.5, *r.Ingredients[2].Amount)
				assert.Nil(t, r.Ingredients[3].Amount)
				assert.Equal(t, "dash", r.Ingredients[3].Unit)
				assert.Len(t, r.Instructions, 2)
			},
		},
		{
			name: "code fences and trailing commas are tolerated",
			raw: "Here you go!\n```json\n" + `{
  "name": "Smoke Signal",
  "ingredient_names": ["Mezcal", "Lime Juice",],
  "ingredient_amounts": [2, 1,],
  "ingredient_units": ["oz", "oz",],
  "instructions": ["Shake.",],
  "garnish": "Lime wheel",
  "glass": "Rocks",
}` + "\n```",
			check: func(t *testing.T, r Recipe) {
				assert.Equal(t, "Smoke Signal", r.Name)
				assert.Len(t, r.Ingredients, 2)
				assert.Empty(t, r.FlavorProfile)
			},
		},
		{
			name:       "not json",
			raw:        "Recipe Name: Something\nIngredients: gin",
			constraint: "json",
		},
		{
			name: "mismatched list lengths",
			raw: `{"name": "X", "ingredient_names": ["Gin", "Tonic"], "ingredient_amounts": [2],
				"ingredient_units": ["oz", "oz"], "instructions": ["Build."], "garnish": "Lime", "glass": "Highball"}`,
			constraint: "ingredient_lists",
		},
		{
			name: "missing garnish",
			raw: `{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": [2],
				"ingredient_units": ["oz"], "instructions": ["Build."], "garnish": "", "glass": "Highball"}`,
			constraint: "completeness",
		},
		{
			name: "blank instructions",
			raw: `{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": [2],
				"ingredient_units": ["oz"], "instructions": ["  "], "garnish": "Lime", "glass": "Highball"}`,
			constraint: "completeness",
		},
		{
			name: "non-finite amount string is absent",
			raw: `{"name": "X", "ingredient_names": ["Gin", "Soda"], "ingredient_amounts": ["NaN", "Infinity"],
				"ingredient_units": ["oz", "oz"], "instructions": ["Build."], "garnish": "Lime", "glass": "Highball"}`,
			check: func(t *testing.T, r Recipe) {
				assert.Nil(t, r.Ingredients[0].Amount)
				assert.Nil(t, r.Ingredients[1].Amount)
			},
		},
		{
			name: "negative amount",
			raw: `{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": [-2],
				"ingredient_units": ["oz"], "instructions": ["Build."], "garnish": "Lime", "glass": "Highball"}`,
			constraint: "completeness",
		},
		{
			name: "negative amount string",
			raw: `{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": ["-1/2"],
				"ingredient_units": ["oz"], "instructions": ["Build."], "garnish": "Lime", "glass": "Highball"}`,
			constraint: "completeness",
		},
		{
			name: "no ingredients",
			raw: `{"name": "X", "ingredient_names": [], "ingredient_amounts": [],
				"ingredient_units": [], "instructions": ["Build."], "garnish": "Lime", "glass": "Highball"}`,
			constraint: "completeness",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.raw)
			if tt.constraint != "" {
				var perr *ParseError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.constraint, perr.Constraint)
				assert.Equal(t, tt.raw, perr.Raw)
				assert.Equal(t, Recipe{}, r, "a failed parse must not leak a partial recipe")
				return
			}
			require.NoError(t, err)
			assert.True(t, r.IsComplete())
			tt.check(t, r)
		})
	}
}

func TestParse_ErrorKinds(t *testing.T) {
	_, err := Parse("nope")
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Parse(`{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": [1], "ingredient_units": ["oz"], "instructions": [], "garnish": "a", "glass": "b"}`)
	assert.True(t, errors.Is(err, ErrIncomplete))

	_, err = Parse(`{"name": "X", "ingredient_names": ["Gin"], "ingredient_amounts": [-2], "ingredient_units": ["oz"], "instructions": ["Stir"], "garnish": "a", "glass": "b"}`)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{"0.75", 0.75, true},
		{"1/2", 0.5, true},
		{"1 1/2", 1.5, true},
		{"1/0", 0, false},
		{"top", 0, false},
		{"", 0, false},
		{"1 2 3", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"-Infinity", 0, false},
		{"1 NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuantity(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2]}`, Normalize("```json\n{\"a\": [1, 2,],}\n```"))
	assert.Equal(t, `{"a": 1}`, Normalize(`Sure! {"a": 1} Enjoy.`))
	assert.Equal(t, `{"a": [1 ], "b": 2 }`, Normalize(`{"a": [1, ], "b": 2, }`))
	assert.Equal(t, `{"steps": ["Add ice, ] then stir", "say \"hi, }\""]}`,
		Normalize(`{"steps": ["Add ice, ] then stir", "say \"hi, }\"",]}`))
}
