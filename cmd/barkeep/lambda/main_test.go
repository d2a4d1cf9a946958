package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barkeep"
	"barkeep/completion/mock"
	"barkeep/costing"
	"barkeep/inventory"
	"barkeep/recipe"
	"barkeep/service"
	"barkeep/session"
)

const ginSour = `{
  "name": "Juniper Sour",
  "ingredient_names": ["Gin", "Lemon Juice", "Simple Syrup"],
  "ingredient_amounts": [2, 0.75, 0.5],
  "ingredient_units": ["oz", "oz", "oz"],
  "instructions": ["Shake with ice", "Strain into a coupe"],
  "garnish": "Lemon twist",
  "glass": "Coupe",
  "flavor_profile": "Bright and tart"
}`

func newHandler(t *testing.T) (func(context.Context, Request) (Response, error), *mock.Client) {
	t.Helper()
	client := mock.NewClient().
		On("mock/recipe", mock.Reply{Content: ginSour}).
		On("mock/cost", mock.Reply{Content: `{"total_ni_cost": 0.5}`})
	api, err := service.Build(service.Deps{
		Client: client,
		Store:  session.NewStore(session.NewMemoryBackend()),
		Models: barkeep.ModelConfig{Priority: "mock/recipe", CostModel: "mock/cost"},
		Engine: barkeep.EngineConfig{YieldPolicy: "floor"},
	})
	require.NoError(t, err)
	return handler(api), client
}

func TestHandler_Flow(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()

	resp, err := h(ctx, Request{Action: "ingest", InventoryCSV: "Gin,2,750,20\n"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	inv, ok := resp.Output.(inventory.Inventory)
	require.True(t, ok)
	assert.Len(t, inv.Items, 1)

	resp, err = h(ctx, Request{Action: "generate", SessionID: resp.SessionID, Spirit: "Gin", InventoryAware: true})
	require.NoError(t, err)
	r, ok := resp.Output.(recipe.Recipe)
	require.True(t, ok)
	assert.Equal(t, "Juniper Sour", r.Name)

	resp, err = h(ctx, Request{Action: "cost", SessionID: resp.SessionID, Price: 12})
	require.NoError(t, err)
	b, ok := resp.Output.(costing.Breakdown)
	require.True(t, ok)
	require.NotNil(t, b.Yield)
	assert.Equal(t, 25, *b.Yield)
	assert.Empty(t, resp.Error)
}

func TestHandler_MissingState(t *testing.T) {
	h, _ := newHandler(t)

	resp, err := h(context.Background(), Request{Action: "cost", SessionID: "empty", Price: 12})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Error)
	assert.ElementsMatch(t, []string{"recipe", "inventory"}, resp.Missing)
}

func TestHandler_UnknownAction(t *testing.T) {
	h, _ := newHandler(t)

	_, err := h(context.Background(), Request{Action: "pour"})
	assert.Error(t, err)
}

func TestHandler_GenerateWithMenu(t *testing.T) {
	h, client := newHandler(t)

	resp, err := h(context.Background(), Request{Action: "generate", Spirit: "Gin", Menu: "Grilled octopus\nNegroni Sbagliato"})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, "Negroni Sbagliato")
}
