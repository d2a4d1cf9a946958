package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMalformed marks model output that could not be decoded as the recipe schema.
	ErrMalformed = errors.New("malformed recipe output")
	// ErrIncomplete marks a decoded recipe that fails the completeness check.
	ErrIncomplete = errors.New("incomplete recipe")
)

// ParseError carries the raw model text and the violated constraint.
type ParseError struct {
	Raw        string
	Constraint string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse recipe: %s: %v", e.Constraint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func errMissing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrIncomplete, field)
}

// wireRecipe mirrors the schema the model is asked to fill. Ingredients arrive as three
// positional lists; index i across them describes one ingredient.
type wireRecipe struct {
	Name              string            `json:"name"`
	IngredientNames   []string          `json:"ingredient_names"`
	IngredientAmounts []json.RawMessage `json:"ingredient_amounts"`
	IngredientUnits   []json.RawMessage `json:"ingredient_units"`
	Instructions      []string          `json:"instructions"`
	Garnish           string            `json:"garnish"`
	Glass             string            `json:"glass"`
	FlavorProfile     string            `json:"flavor_profile"`
}

// Normalize repairs the common ways models damage JSON: code fences, prose around the
// object and trailing commas.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return stripTrailingCommas(s)
}

// stripTrailingCommas drops commas that directly precede a closing bracket, ignoring
// anything inside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',':
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Parse decodes raw model text into a complete Recipe. Any failure is a *ParseError;
// a partially valid recipe is never returned.
func Parse(raw string) (Recipe, error) {
	fail := func(constraint string, err error) (Recipe, error) {
		return Recipe{}, &ParseError{Raw: raw, Constraint: constraint, Err: err}
	}

	var w wireRecipe
	dec := json.NewDecoder(bytes.NewReader([]byte(Normalize(raw))))
	if err := dec.Decode(&w); err != nil {
		return fail("json", fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	if n := len(w.IngredientNames); len(w.IngredientAmounts) != n || len(w.IngredientUnits) != n {
		return fail("ingredient_lists", fmt.Errorf("%w: %d names, %d amounts, %d units",
			ErrIncomplete, n, len(w.IngredientAmounts), len(w.IngredientUnits)))
	}

	r := Recipe{
		Name:          strings.TrimSpace(w.Name),
		Instructions:  nonEmpty(w.Instructions),
		Garnish:       strings.TrimSpace(w.Garnish),
		Glass:         strings.TrimSpace(w.Glass),
		FlavorProfile: strings.TrimSpace(w.FlavorProfile),
	}
	for i, name := range w.IngredientNames {
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:   strings.TrimSpace(name),
			Amount: decodeAmount(w.IngredientAmounts[i]),
			Unit:   decodeUnit(w.IngredientUnits[i]),
		})
	}

	if err := r.Validate(); err != nil {
		return fail("completeness", err)
	}
	return r, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeAmount accepts numbers, numeric strings and simple fractions ("1/2", "1 1/2").
// Anything else, including null, is an absent amount.
func decodeAmount(raw json.RawMessage) *float64 {
	if t := bytes.TrimSpace(raw); len(t) == 0 || string(t) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if v, ok := ParseQuantity(s); ok {
		return &v
	}
	return nil
}

func decodeUnit(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// ParseQuantity parses "2", "0.75", "1/2" and "1 1/2". NaN and infinities are rejected.
func ParseQuantity(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	total := 0.0
	for _, f := range fields {
		v, ok := parseTerm(f)
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

func parseTerm(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return finite(n / d)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(v)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
