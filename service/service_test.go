package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"barkeep"
	"barkeep/completion"
	"barkeep/completion/mock"
	"barkeep/coordinator"
	"barkeep/recipe"
	"barkeep/service"
	"barkeep/session"
)

const gimletJSON = `{
  "name": "Garden Gimlet",
  "ingredient_names": ["Gin", "Lime Juice", "Simple Syrup"],
  "ingredient_amounts": [2, 0.75, 0.5],
  "ingredient_units": ["oz", "oz", "oz"],
  "instructions": ["Shake with ice", "Strain into a chilled coupe"],
  "garnish": "Lime wheel",
  "glass": "Coupe",
  "flavor_profile": "Bright and tart"
}`

const negroniJSON = `{
  "name": "Negroni",
  "ingredient_names": ["Gin", "Campari", "Sweet Vermouth"],
  "ingredient_amounts": [1, 1, 1],
  "ingredient_units": ["oz", "oz", "oz"],
  "instructions": ["Stir with ice", "Strain over a large cube"],
  "garnish": "Orange peel",
  "glass": "Rocks",
  "flavor_profile": "Bitter"
}`

var models = barkeep.ModelConfig{
	Priority:        "openai/gpt-4o-mini;openai/gpt-4o",
	QualityPriority: "openai/gpt-4-turbo",
	ChatPriority:    "openai/gpt-4o-mini",
	CostModel:       "openai/cost",
}

var params = recipe.Params{Spirit: "Gin", Style: "Sour", Cuisine: "Italian", Theme: "Summer"}

func newAPI(t *testing.T) (*service.API, *mock.Client, *session.Store) {
	t.Helper()
	client := mock.NewClient()
	store := session.NewStore(session.NewMemoryBackend())
	api, err := service.Build(service.Deps{Client: client, Store: store, Models: models})
	must.NoError(t, err)
	return api, client, store
}

func unavailable(model string) mock.Reply {
	return mock.Reply{Err: completion.NewTransportError("mock", model, 503, errors.New("unavailable"))}
}

func TestRecipeService_Priority(t *testing.T) {
	api, _, _ := newAPI(t)
	should.Equal(t, []string{"openai/gpt-4o-mini", "openai/gpt-4o"}, api.Recipes.Priority(false))
	should.Equal(t, []string{"openai/gpt-4-turbo"}, api.Recipes.Priority(true))
}

func TestRecipeService_Create(t *testing.T) {
	ctx := context.Background()
	api, client, _ := newAPI(t)
	client.On("openai/gpt-4o-mini", unavailable("gpt-4o-mini"))
	client.On("openai/gpt-4o", mock.Reply{Content: gimletJSON})

	r, err := api.Recipes.Create(ctx, "s1", params, nil)
	must.NoError(t, err)
	should.Equal(t, "Garden Gimlet", r.Name)

	cur, ok := api.Recipes.Current(ctx, "s1")
	must.True(t, ok)
	should.Equal(t, r, cur)
}

func TestRecipeService_FailureKeepsStoredRecipe(t *testing.T) {
	ctx := context.Background()
	api, client, _ := newAPI(t)
	client.On("good", mock.Reply{Content: negroniJSON})
	_, err := api.Recipes.Create(ctx, "s1", params, []string{"good"})
	must.NoError(t, err)

	client.On("bad-1", unavailable("bad-1"))
	client.On("bad-2", mock.Reply{Content: `{"name": "Nope"}`})
	_, err = api.Recipes.Create(ctx, "s1", params, []string{"bad-1", "bad-2"})
	must.Error(t, err)
	should.ErrorIs(t, err, coordinator.ErrGenerationFailed)

	cur, ok := api.Recipes.Current(ctx, "s1")
	must.True(t, ok)
	should.Equal(t, "Negroni", cur.Name)
}

func TestRecipeService_FailureOnEmptySession(t *testing.T) {
	ctx := context.Background()
	api, client, _ := newAPI(t)
	client.On("bad", mock.Reply{Content: "not a recipe"})

	_, err := api.Recipes.Create(ctx, "s1", params, []string{"bad"})
	should.ErrorIs(t, err, coordinator.ErrGenerationFailed)
	_, ok := api.Recipes.Current(ctx, "s1")
	should.False(t, ok)
}

func TestRecipeService_Clear(t *testing.T) {
	ctx := context.Background()
	api, client, _ := newAPI(t)
	client.On("good", mock.Reply{Content: gimletJSON})
	_, err := api.Recipes.Create(ctx, "s1", params, []string{"good"})
	must.NoError(t, err)

	must.NoError(t, api.Recipes.Clear(ctx, "s1"))
	_, ok := api.Recipes.Current(ctx, "s1")
	should.False(t, ok)
}

func TestAPI_GenerateRecipe_MintsSession(t *testing.T) {
	api, client, _ := newAPI(t)
	client.Default = &mock.Reply{Content: gimletJSON}

	res, err := api.GenerateRecipe(context.Background(), service.GenerateParams{Params: params})
	must.NoError(t, err)
	should.NotEmpty(t, res.SessionID)
	should.Equal(t, "Garden Gimlet", res.Recipe.Name)
	should.Equal(t, []string{"openai/gpt-4o-mini"}, client.Models())
}

func TestAPI_GenerateRecipe_Quality(t *testing.T) {
	api, client, _ := newAPI(t)
	client.Default = &mock.Reply{Content: gimletJSON}

	_, err := api.GenerateRecipe(context.Background(), service.GenerateParams{SessionID: "s1", Params: params, Quality: true})
	must.NoError(t, err)
	should.Equal(t, []string{"openai/gpt-4-turbo"}, client.Models())
}

func TestAPI_GenerateRecipe_InventoryAware(t *testing.T) {
	ctx := context.Background()
	api, client, _ := newAPI(t)
	client.Default = &mock.Reply{Content: negroniJSON}

	_, err := api.GenerateRecipe(ctx, service.GenerateParams{SessionID: "s1", Params: params, InventoryAware: true})
	should.ErrorIs(t, err, session.ErrMissingState)
	should.Empty(t, client.Calls())

	_, err = api.IngestInventory(ctx, "s1", strings.NewReader("Gin,2,750,25\nCampari,1,1000,30\n"))
	must.NoError(t, err)

	res, err := api.GenerateRecipe(ctx, service.GenerateParams{SessionID: "s1", Params: params, InventoryAware: true})
	must.NoError(t, err)
	should.Equal(t, "Negroni", res.Recipe.Name)

	calls := client.Calls()
	must.Len(t, calls, 1)
	should.Contains(t, calls[0].Messages[1].Content, "ingredients I have on hand (Gin, Campari)")
}

func TestAPI_EndToEndCost(t *testing.T) {
	ctx := context.Background()
	api, client, store := newAPI(t)
	client.On("openai/gpt-4o-mini", mock.Reply{Content: gimletJSON})
	client.On("openai/cost", mock.Reply{Content: `{"total_ni_cost": 4}`})

	ing, err := api.IngestInventory(ctx, "", strings.NewReader("Name,Quantity,Volume per Unit (ml),Cost per Unit\nGin,2,750,25\n"))
	must.NoError(t, err)
	id := ing.SessionID

	_, err = api.ComputeCost(ctx, id, 12)
	should.ErrorIs(t, err, session.ErrMissingState)

	_, err = api.GenerateRecipe(ctx, service.GenerateParams{SessionID: id, Params: params})
	must.NoError(t, err)

	res, err := api.ComputeCost(ctx, id, 12)
	must.NoError(t, err)
	should.Equal(t, id, res.SessionID)
	should.InDelta(t, 1.9716, res.Breakdown.InventoryCost, 1e-3)
	should.InDelta(t, 1.9716+1, res.Breakdown.TotalCost, 1e-3)
	must.NotNil(t, res.Breakdown.Yield)
	should.Equal(t, 25, *res.Breakdown.Yield)
	should.NotNil(t, res.Breakdown.TotalProfit)

	var stored map[string]any
	should.True(t, store.Get(ctx, id, session.KindCost, &stored))

	// a new recipe invalidates the stored breakdown
	_, err = api.GenerateRecipe(ctx, service.GenerateParams{SessionID: id, Params: params})
	must.NoError(t, err)
	should.False(t, store.Get(ctx, id, session.KindCost, &stored))
}

func TestAPI_ComputeCost_RequiresSession(t *testing.T) {
	api, _, _ := newAPI(t)
	_, err := api.ComputeCost(context.Background(), "", 10)
	should.Error(t, err)
}

func TestBuild_RejectsUnknownYieldPolicy(t *testing.T) {
	_, err := service.Build(service.Deps{
		Client: mock.NewClient(),
		Store:  session.NewStore(session.NewMemoryBackend()),
		Engine: barkeep.EngineConfig{YieldPolicy: "ceil"},
	})
	should.Error(t, err)
}
