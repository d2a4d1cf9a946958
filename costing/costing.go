// Package costing reconciles a session's recipe against its inventory and projects
// cost, yield and profit.
//
// Recipe amounts are assumed to be fluid ounces. An ingredient is costed from
// inventory only when its name matches an inventory item exactly (ignoring case) and its
// unit is an ounce unit; everything else goes to the unmatched set, which is priced by a
// single model estimate at full-bottle scale and divided by NonInventoryDivisor.
package costing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"barkeep"
	"barkeep/completion"
	"barkeep/inventory"
	"barkeep/recipe"
	"barkeep/session"
)

const (
	// MLPerOz converts a recipe pour to milliliters for yield.
	MLPerOz = 29.5735
	// NonInventoryDivisor scales the full-unit non-inventory estimate down to one pour.
	NonInventoryDivisor = 4.0
)

// MissingStateError is returned when the session has no recipe or no inventory.
type MissingStateError = session.MissingStateError

// YieldPolicy turns fractional drink counts into whole drinks.
type YieldPolicy string

const (
	YieldFloor YieldPolicy = "floor"
	YieldRound YieldPolicy = "round"
)

// ParseYieldPolicy accepts "floor" (also the default for "") and "round".
func ParseYieldPolicy(s string) (YieldPolicy, error) {
	switch p := YieldPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", YieldFloor:
		return YieldFloor, nil
	case YieldRound:
		return YieldRound, nil
	default:
		return "", fmt.Errorf("unknown yield policy %q", s)
	}
}

func (p YieldPolicy) apply(v float64) int {
	if p == YieldRound {
		return int(math.Round(v))
	}
	return int(math.Floor(v))
}

// LineItem is one ingredient costed from inventory.
type LineItem struct {
	Ingredient   string  `json:"ingredient" yaml:"ingredient"`
	Amount       float64 `json:"amount" yaml:"amount"`
	Unit         string  `json:"unit" yaml:"unit"`
	UnitCost     float64 `json:"unit_cost" yaml:"unit_cost"`
	ExtendedCost float64 `json:"extended_cost" yaml:"extended_cost"`
}

// Breakdown is the result of costing one recipe at one sale price. Yield, TotalProfit and
// TotalBatchCost are nil when the anchor ingredient cannot be resolved against inventory.
type Breakdown struct {
	Recipe                    string              `json:"recipe" yaml:"recipe"`
	Matched                   []LineItem          `json:"matched" yaml:"matched"`
	Unmatched                 []recipe.Ingredient `json:"unmatched" yaml:"unmatched"`
	InventoryCost             float64             `json:"inventory_cost" yaml:"inventory_cost"`
	EstimatedNonInventoryCost float64             `json:"estimated_non_inventory_cost" yaml:"estimated_non_inventory_cost"`
	TotalCost                 float64             `json:"total_cost" yaml:"total_cost"`
	Yield                     *int                `json:"yield" yaml:"yield"`
	SalePrice                 float64             `json:"sale_price" yaml:"sale_price"`
	ProfitPerDrink            float64             `json:"profit_per_drink" yaml:"profit_per_drink"`
	TotalProfit               *float64            `json:"total_profit" yaml:"total_profit"`
	TotalBatchCost            *float64            `json:"total_batch_cost" yaml:"total_batch_cost"`
	MarginPercent             float64             `json:"margin_percent" yaml:"margin_percent"`
	AnchorValue               *float64            `json:"anchor_value,omitempty" yaml:"anchor_value,omitempty"`
	Partial                   bool                `json:"partial" yaml:"partial"`
	Notes                     []string            `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (b *Breakdown) note(format string, args ...any) {
	b.Notes = append(b.Notes, fmt.Sprintf(format, args...))
}

// Options configures an Engine.
type Options struct {
	CostModel       string
	YieldPolicy     YieldPolicy
	EstimateTimeout time.Duration
	Tracer          trace.Tracer
}

// Engine computes cost breakdowns for sessions.
type Engine struct {
	store     *session.Store
	client    completion.Client
	costModel string
	policy    YieldPolicy
	timeout   time.Duration
	tracer    trace.Tracer
}

func NewEngine(store *session.Store, client completion.Client, opts Options) *Engine {
	if opts.YieldPolicy == "" {
		opts.YieldPolicy = YieldFloor
	}
	if opts.EstimateTimeout <= 0 {
		opts.EstimateTimeout = 60 * time.Second
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(barkeep.TracerNameCosting)
	}
	return &Engine{
		store:     store,
		client:    client,
		costModel: opts.CostModel,
		policy:    opts.YieldPolicy,
		timeout:   opts.EstimateTimeout,
		tracer:    opts.Tracer,
	}
}

// Cost loads the session's recipe and inventory, computes the breakdown at salePrice and
// stores it under the cost kind. Identical inputs give identical results apart from the
// model estimate.
func (e *Engine) Cost(ctx context.Context, id session.ID, salePrice float64) (Breakdown, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Cost", trace.WithAttributes(
		attribute.String("session_id", id.String()),
		attribute.Float64("sale_price", salePrice),
	))
	defer span.End()

	if salePrice < 0 || math.IsNaN(salePrice) || math.IsInf(salePrice, 0) {
		return Breakdown{}, fmt.Errorf("sale price must be a non-negative number, got %v", salePrice)
	}

	var r recipe.Recipe
	var inv inventory.Inventory
	missing := &MissingStateError{ID: id}
	if !e.store.Get(ctx, id, session.KindRecipe, &r) || !r.IsComplete() {
		missing.Missing = append(missing.Missing, session.KindRecipe)
	}
	if !e.store.Get(ctx, id, session.KindInventory, &inv) {
		missing.Missing = append(missing.Missing, session.KindInventory)
	}
	if len(missing.Missing) > 0 {
		span.SetStatus(codes.Error, "missing state")
		return Breakdown{}, missing
	}

	b := Compute(r, inv, salePrice, e.policy)

	if len(b.Unmatched) > 0 {
		est, err := e.estimate(ctx, b.Unmatched)
		if err != nil {
			slog.Warn("COSTING: Non-inventory estimate failed, defaulting to 0", "session_id", id, "model", e.costModel, "error", err)
			span.RecordError(err)
			b.Partial = true
			b.note("non-inventory cost estimate unavailable: %v", err)
			est = 0
		}
		b.applyEstimate(est)
	}

	span.SetAttributes(
		attribute.Float64("total_cost", b.TotalCost),
		attribute.Bool("partial", b.Partial),
	)
	slog.Info("COSTING: Computed breakdown",
		"session_id", id,
		"recipe", b.Recipe,
		"matched", len(b.Matched),
		"unmatched", len(b.Unmatched),
		"total_cost", b.TotalCost,
		"partial", b.Partial,
	)

	if err := e.store.Put(ctx, id, session.KindCost, b); err != nil {
		return b, fmt.Errorf("persist cost breakdown: %w", err)
	}
	return b, nil
}

// Compute is the deterministic part of costing: partition, inventory cost, yield and
// profit, with no non-inventory estimate applied.
func Compute(r recipe.Recipe, inv inventory.Inventory, salePrice float64, policy YieldPolicy) Breakdown {
	b := Breakdown{Recipe: r.Name, SalePrice: salePrice}

	for _, ing := range r.Ingredients {
		item, ok := inv.Lookup(ing.Name)
		switch {
		case !ok:
			b.Unmatched = append(b.Unmatched, ing)
		case ing.Amount == nil:
			b.Unmatched = append(b.Unmatched, ing)
			b.note("%s: no amount, costed as non-inventory", ing.Name)
		case !IsOunceUnit(ing.Unit):
			b.Unmatched = append(b.Unmatched, ing)
			b.note("%s: unit %q is not ounces, costed as non-inventory", ing.Name, ing.Unit)
		default:
			b.Matched = append(b.Matched, LineItem{
				Ingredient:   ing.Name,
				Amount:       *ing.Amount,
				Unit:         ing.Unit,
				UnitCost:     item.CostPerOz,
				ExtendedCost: item.CostPerOz * *ing.Amount,
			})
			b.InventoryCost += item.CostPerOz * *ing.Amount
		}
	}

	if anchor, ok := r.Anchor(); ok {
		item, found := inv.Lookup(anchor.Name)
		switch {
		case !found:
			b.note("anchor ingredient %s is not in inventory; yield unavailable", anchor.Name)
		case anchor.Amount == nil || *anchor.Amount <= 0 || !IsOunceUnit(anchor.Unit):
			b.note("anchor ingredient %s has no ounce amount; yield unavailable", anchor.Name)
		default:
			y := policy.apply(item.TotalML / (*anchor.Amount * MLPerOz))
			b.Yield = &y
			v := item.TotalValue
			b.AnchorValue = &v
		}
	}
	if b.Yield == nil {
		b.Partial = true
	}

	b.applyEstimate(0)
	return b
}

// applyEstimate sets the estimate and recomputes the totals that depend on it.
func (b *Breakdown) applyEstimate(est float64) {
	b.EstimatedNonInventoryCost = est
	b.TotalCost = b.InventoryCost + est/NonInventoryDivisor
	b.ProfitPerDrink = b.SalePrice - b.TotalCost
	if b.SalePrice > 0 {
		b.MarginPercent = b.ProfitPerDrink / b.SalePrice * 100
	} else {
		b.MarginPercent = 0
	}
	if b.Yield != nil {
		n := float64(*b.Yield)
		p := n*b.SalePrice - n*b.TotalCost
		c := n * b.TotalCost
		b.TotalProfit = &p
		b.TotalBatchCost = &c
	}
}

var ounceUnits = map[string]bool{
	"oz":           true,
	"ounce":        true,
	"ounces":       true,
	"fl oz":        true,
	"fl. oz":       true,
	"fl. oz.":      true,
	"fl oz.":       true,
	"oz.":          true,
	"fluid ounce":  true,
	"fluid ounces": true,
}

// IsOunceUnit reports whether unit names fluid ounces.
func IsOunceUnit(unit string) bool {
	return ounceUnits[strings.Join(strings.Fields(strings.ToLower(unit)), " ")]
}
