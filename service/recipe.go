// Package service exposes the caller-facing operations: recipe generation, inventory
// ingestion, costing, bartender chat and staff training guides. Services are stateless
// structs over the session store; every call is addressed by session id.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"barkeep"
	"barkeep/completion"
	"barkeep/coordinator"
	"barkeep/recipe"
	"barkeep/session"
)

// MissingStateError is returned when an operation needs a recipe or inventory the
// session does not hold yet.
type MissingStateError = session.MissingStateError

// RecipeService generates recipes through the fallback loop and keeps the session's
// current recipe.
type RecipeService struct {
	coord  *coordinator.Coordinator
	store  *session.Store
	models barkeep.ModelConfig
	format string
}

func NewRecipeService(coord *coordinator.Coordinator, store *session.Store, models barkeep.ModelConfig) *RecipeService {
	return &RecipeService{
		coord:  coord,
		store:  store,
		models: models,
		format: completion.FormatInstructions(recipe.Schema()),
	}
}

// Priority returns the configured model list; quality selects the alternate list.
func (s *RecipeService) Priority(quality bool) []string {
	if quality {
		return s.models.QualityModels()
	}
	return s.models.Models()
}

// Create generates a recipe for p and makes it the session's current recipe. An empty
// models list uses the default priority. On failure the stored recipe is left as it was.
func (s *RecipeService) Create(ctx context.Context, id session.ID, p recipe.Params, models []string) (recipe.Recipe, error) {
	return s.generate(ctx, id, recipe.NewPrompt(p, s.format), models)
}

// CreateInventoryAware is Create with a soft preference for the on-hand ingredient names.
// The model may still use other ingredients.
func (s *RecipeService) CreateInventoryAware(ctx context.Context, id session.ID, onHand []string, p recipe.Params, models []string) (recipe.Recipe, error) {
	return s.generate(ctx, id, recipe.NewInventoryPrompt(p, onHand, s.format), models)
}

func (s *RecipeService) generate(ctx context.Context, id session.ID, prompt recipe.Prompt, models []string) (recipe.Recipe, error) {
	if len(models) == 0 {
		models = s.Priority(false)
	}
	r, err := s.coord.Generate(ctx, prompt, models)
	if err != nil {
		slog.Warn("SERVICE: Recipe generation failed; keeping stored recipe", "session_id", id, "error", err)
		return recipe.Recipe{}, fmt.Errorf("could not generate a recipe, please retry: %w", err)
	}
	if err := s.store.Put(ctx, id, session.KindRecipe, r); err != nil {
		return recipe.Recipe{}, fmt.Errorf("persist recipe: %w", err)
	}
	// derived state no longer describes the current recipe
	for _, k := range []session.Kind{session.KindCost, session.KindTrainingGuide} {
		if err := s.store.Delete(ctx, id, k); err != nil {
			slog.Warn("SERVICE: Failed to clear derived state", "session_id", id, "kind", k, "error", err)
		}
	}
	slog.Info("SERVICE: Recipe stored", "session_id", id, "recipe", r.Name, "ingredients", len(r.Ingredients))
	return r, nil
}

// Current returns the session's recipe, or false if there is none.
func (s *RecipeService) Current(ctx context.Context, id session.ID) (recipe.Recipe, bool) {
	var r recipe.Recipe
	if !s.store.Get(ctx, id, session.KindRecipe, &r) {
		return recipe.Recipe{}, false
	}
	return r, true
}

// Clear is the "new recipe" action: it removes the recipe and everything derived from it.
func (s *RecipeService) Clear(ctx context.Context, id session.ID) error {
	for _, k := range []session.Kind{session.KindRecipe, session.KindCost, session.KindTrainingGuide} {
		if err := s.store.Delete(ctx, id, k); err != nil {
			return err
		}
	}
	return nil
}
