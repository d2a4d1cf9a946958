package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"barkeep"
	"barkeep/completion"
	"barkeep/coordinator"
	"barkeep/costing"
	"barkeep/inventory"
	"barkeep/recipe"
	"barkeep/session"
)

// Deps are the collaborators Build wires together.
type Deps struct {
	Client  completion.Client
	Store   *session.Store
	Models  barkeep.ModelConfig
	Engine  barkeep.EngineConfig
	Journal barkeep.AttemptLogger
}

// API is the caller-facing surface consumed by the CLI and the Lambda handler.
type API struct {
	Recipes   *RecipeService
	Inventory *inventory.Service
	Costing   *costing.Engine
	Chat      *ChatService
	Training  *TrainingService
	store     *session.Store
	tracer    trace.Tracer
}

// Build wires every service over one store and completion client.
func Build(d Deps) (*API, error) {
	policy, err := costing.ParseYieldPolicy(d.Engine.YieldPolicy)
	if err != nil {
		return nil, err
	}

	coord := coordinator.New(d.Client, coordinator.Options{
		AttemptTimeout: d.Engine.AttemptTimeout,
		Params: completion.Params{
			MaxTokens:        d.Models.MaxTokens,
			Temperature:      d.Models.Temperature,
			TopP:             d.Models.TopP,
			FrequencyPenalty: d.Models.FrequencyPenalty,
			PresencePenalty:  d.Models.PresencePenalty,
		},
		Logger: d.Journal,
	})

	recipes := NewRecipeService(coord, d.Store, d.Models)
	return &API{
		Recipes:   recipes,
		Inventory: inventory.NewService(d.Store),
		Costing: costing.NewEngine(d.Store, d.Client, costing.Options{
			CostModel:       d.Models.CostModel,
			YieldPolicy:     policy,
			EstimateTimeout: d.Engine.AttemptTimeout,
		}),
		Chat:     NewChatService(coord, d.Store, recipes, d.Models.ChatModels()),
		Training: NewTrainingService(coord, d.Store, recipes, d.Models.ChatModels()),
		store:    d.Store,
		tracer:   otel.Tracer(barkeep.TracerNameService),
	}, nil
}

// Store returns the session store every service shares.
func (a *API) Store() *session.Store { return a.store }

// GenerateParams are the inputs to GenerateRecipe. A blank SessionID mints a new session.
type GenerateParams struct {
	SessionID session.ID
	recipe.Params
	Quality        bool
	InventoryAware bool
	Models         []string
}

// GenerateResult carries the recipe and the session it was stored in.
type GenerateResult struct {
	SessionID session.ID    `json:"session_id" yaml:"session_id"`
	Recipe    recipe.Recipe `json:"recipe" yaml:"recipe"`
}

// GenerateRecipe creates a recipe, inventory-aware when requested. Inventory-aware
// generation needs an ingested inventory.
func (a *API) GenerateRecipe(ctx context.Context, p GenerateParams) (GenerateResult, error) {
	if p.SessionID == "" {
		p.SessionID = session.NewID()
	}
	ctx, span := a.tracer.Start(ctx, "API.GenerateRecipe", trace.WithAttributes(
		attribute.String("session_id", p.SessionID.String()),
		attribute.Bool("quality", p.Quality),
		attribute.Bool("inventory_aware", p.InventoryAware),
	))
	defer span.End()

	models := p.Models
	if len(models) == 0 {
		models = a.Recipes.Priority(p.Quality)
	}

	var (
		r   recipe.Recipe
		err error
	)
	if p.InventoryAware {
		inv, ok := a.Inventory.Load(ctx, p.SessionID)
		if !ok {
			return GenerateResult{SessionID: p.SessionID}, &MissingStateError{ID: p.SessionID, Missing: []session.Kind{session.KindInventory}}
		}
		r, err = a.Recipes.CreateInventoryAware(ctx, p.SessionID, inv.Names(), p.Params, models)
	} else {
		r, err = a.Recipes.Create(ctx, p.SessionID, p.Params, models)
	}
	if err != nil {
		span.RecordError(err)
		return GenerateResult{SessionID: p.SessionID}, err
	}
	return GenerateResult{SessionID: p.SessionID, Recipe: r}, nil
}

// IngestResult carries the ingested inventory and its session.
type IngestResult struct {
	SessionID session.ID          `json:"session_id" yaml:"session_id"`
	Inventory inventory.Inventory `json:"inventory" yaml:"inventory"`
}

// IngestInventory replaces the session's inventory with the CSV table read from r.
func (a *API) IngestInventory(ctx context.Context, id session.ID, r io.Reader) (IngestResult, error) {
	if id == "" {
		id = session.NewID()
	}
	ctx, span := a.tracer.Start(ctx, "API.IngestInventory", trace.WithAttributes(attribute.String("session_id", id.String())))
	defer span.End()

	inv, err := a.Inventory.IngestCSV(ctx, id, r)
	if err != nil {
		span.RecordError(err)
		return IngestResult{SessionID: id}, err
	}
	return IngestResult{SessionID: id, Inventory: inv}, nil
}

// CostResult carries the breakdown and its session.
type CostResult struct {
	SessionID session.ID        `json:"session_id" yaml:"session_id"`
	Breakdown costing.Breakdown `json:"breakdown" yaml:"breakdown"`
}

// ComputeCost costs the session's recipe at price.
func (a *API) ComputeCost(ctx context.Context, id session.ID, price float64) (CostResult, error) {
	if id == "" {
		return CostResult{}, fmt.Errorf("session id is required")
	}
	ctx, span := a.tracer.Start(ctx, "API.ComputeCost", trace.WithAttributes(attribute.String("session_id", id.String())))
	defer span.End()

	b, err := a.Costing.Cost(ctx, id, price)
	if err != nil {
		span.RecordError(err)
		slog.Warn("SERVICE: Costing failed", "session_id", id, "error", err)
		return CostResult{SessionID: id}, err
	}
	return CostResult{SessionID: id, Breakdown: b}, nil
}
