package service

import (
	"context"
	"fmt"
	"log/slog"

	"barkeep/completion"
	"barkeep/coordinator"
	"barkeep/session"
)

var trainingParams = completion.Params{
	MaxTokens:   750,
	Temperature: 0.75,
	TopP:        1,
}

// TrainingGuide is a one-page staff guide for a recipe.
type TrainingGuide struct {
	Recipe string `json:"recipe" yaml:"recipe"`
	Guide  string `json:"guide" yaml:"guide"`
}

// TrainingService writes pre-shift training guides for the current recipe.
type TrainingService struct {
	coord   *coordinator.Coordinator
	store   *session.Store
	recipes *RecipeService
	models  []string
}

func NewTrainingService(coord *coordinator.Coordinator, store *session.Store, recipes *RecipeService, models []string) *TrainingService {
	return &TrainingService{coord: coord, store: store, recipes: recipes, models: models}
}

// Guide generates and stores a training guide for the session's recipe.
func (s *TrainingService) Guide(ctx context.Context, id session.ID, models []string) (TrainingGuide, error) {
	r, ok := s.recipes.Current(ctx, id)
	if !ok {
		return TrainingGuide{}, &MissingStateError{ID: id, Missing: []session.Kind{session.KindRecipe}}
	}
	if len(models) == 0 {
		models = s.models
	}

	system := "You are a master mixologist who has helped a user generate a cocktail recipe:\n\n" + r.Text() + "\n\n" +
		"They would like you to help them write a training guide for their staff. This should be a one page guide " +
		"that can be used during a pre-shift meeting or other training session. The guide should include the flavor " +
		"profile of the cocktail, information about the ingredients, notes about the technique, and how staff can " +
		"upsell and explain the cocktail to guests."
	msgs := []completion.Message{
		{Role: completion.RoleSystem, Content: system},
		{Role: completion.RoleUser, Content: "Please write the training guide for " + r.Name + "."},
	}

	text, err := s.coord.Reply(ctx, "training guide", models, func(model string) completion.Request {
		return completion.Request{Model: model, Messages: msgs, Params: trainingParams}
	})
	if err != nil {
		return TrainingGuide{}, fmt.Errorf("could not write a training guide, please retry: %w", err)
	}

	g := TrainingGuide{Recipe: r.Name, Guide: text}
	if err := s.store.Put(ctx, id, session.KindTrainingGuide, g); err != nil {
		return TrainingGuide{}, fmt.Errorf("persist training guide: %w", err)
	}
	slog.Info("SERVICE: Training guide stored", "session_id", id, "recipe", r.Name, "length", len(text))
	return g, nil
}

// Current returns the stored guide.
func (s *TrainingService) Current(ctx context.Context, id session.ID) (TrainingGuide, bool) {
	var g TrainingGuide
	if !s.store.Get(ctx, id, session.KindTrainingGuide, &g) {
		return TrainingGuide{}, false
	}
	return g, true
}
