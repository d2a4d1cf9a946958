// Command lambda serves the recipe, inventory and costing operations as an AWS Lambda
// function. Sessions must live in a shared backend (redis or s3) for state to survive
// between invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"barkeep"
	"barkeep/recipe"
	"barkeep/service"
	"barkeep/session"
	"barkeep/setup"
)

// Request selects an operation with Action and carries its inputs.
type Request struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id"`

	Spirit         string `json:"spirit"`
	Style          string `json:"style"`
	Cuisine        string `json:"cuisine"`
	Theme          string `json:"theme"`
	Menu           string `json:"menu"`
	Quality        bool   `json:"quality"`
	InventoryAware bool   `json:"inventory_aware"`
	Models         string `json:"models"`

	InventoryCSV string `json:"inventory_csv"`

	Price float64 `json:"price"`
}

// Response is the handler output. Missing lists the session state an operation needed
// but did not find.
type Response struct {
	SessionID string   `json:"session_id"`
	Output    any      `json:"output,omitempty"`
	Error     string   `json:"error,omitempty"`
	Missing   []string `json:"missing,omitempty"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	ctx := context.Background()
	shutdown, err := barkeep.InitOtel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("SETUP: OpenTelemetry shutdown failed", "error", err)
		}
	}()

	api, err := setup.NewAPI(ctx, cfg, barkeep.NewStdoutAttemptLogger())
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	lambda.Start(handler(api))
}

func handler(api *service.API) func(context.Context, Request) (Response, error) {
	return func(ctx context.Context, req Request) (Response, error) {
		slog.Info("SETUP: Handling request", "action", req.Action, "session_id", req.SessionID)
		resp, err := dispatch(ctx, api, req)
		if err == nil {
			return resp, nil
		}

		resp.Error = err.Error()
		var ms *session.MissingStateError
		if errors.As(err, &ms) {
			for _, k := range ms.Missing {
				resp.Missing = append(resp.Missing, string(k))
			}
			// Missing state is a caller problem, not a function failure.
			return resp, nil
		}
		slog.Error("SETUP: Request failed", "action", req.Action, "error", err)
		return resp, err
	}
}

func dispatch(ctx context.Context, api *service.API, req Request) (Response, error) {
	id := session.ID(req.SessionID)
	switch strings.ToLower(req.Action) {
	case "generate":
		res, err := api.GenerateRecipe(ctx, service.GenerateParams{
			SessionID: id,
			Params: recipe.Params{
				Spirit:  req.Spirit,
				Style:   req.Style,
				Cuisine: req.Cuisine,
				Theme:   req.Theme,
				Menu:    req.Menu,
			},
			Quality:        req.Quality,
			InventoryAware: req.InventoryAware,
			Models:         barkeep.SplitModels(req.Models),
		})
		return Response{SessionID: res.SessionID.String(), Output: res.Recipe}, err
	case "ingest":
		res, err := api.IngestInventory(ctx, id, strings.NewReader(req.InventoryCSV))
		return Response{SessionID: res.SessionID.String(), Output: res.Inventory}, err
	case "cost":
		res, err := api.ComputeCost(ctx, id, req.Price)
		return Response{SessionID: req.SessionID, Output: res.Breakdown}, err
	default:
		return Response{SessionID: req.SessionID}, fmt.Errorf("unknown action %q", req.Action)
	}
}
