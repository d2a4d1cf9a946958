package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"barkeep"
	"barkeep/costing"
	"barkeep/inventory"
	"barkeep/recipe"
)

func checkFormat(f string) error {
	switch f {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want text, json or yaml)", f)
	}
}

// render writes v in the selected format. text is used for the text format.
func render(w io.Writer, v any, text func(io.Writer) error) error {
	if dump {
		barkeep.Dump(os.Stderr, v)
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func writeRecipe(w io.Writer, r recipe.Recipe) error {
	_, err := fmt.Fprintln(w, r.Text())
	return err
}

func writeInventory(w io.Writer, inv inventory.Inventory) error {
	fmt.Fprintf(w, "%-28s %8s %10s %10s %10s\n", "ITEM", "QTY", "ML", "$/OZ", "VALUE")
	for _, it := range inv.Items {
		fmt.Fprintf(w, "%-28s %8g %10g %10.4f %10.2f\n", it.Name, it.Quantity, it.TotalML, it.CostPerOz, it.TotalValue)
	}
	_, err := fmt.Fprintf(w, "\nTotal inventory value: $%.2f\n", inv.TotalValue())
	return err
}

func writeBreakdown(w io.Writer, b costing.Breakdown) error {
	fmt.Fprintf(w, "Cost breakdown for %s\n\n", b.Recipe)
	for _, li := range b.Matched {
		fmt.Fprintf(w, "  %-24s %6s %-4s @ $%.4f = $%.4f\n",
			li.Ingredient, recipe.FormatAmount(&li.Amount), li.Unit, li.UnitCost, li.ExtendedCost)
	}
	if len(b.Unmatched) > 0 {
		names := make([]string, 0, len(b.Unmatched))
		for _, u := range b.Unmatched {
			names = append(names, u.Name)
		}
		fmt.Fprintf(w, "  Not in inventory: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "\nInventory cost:      $%.2f\n", b.InventoryCost)
	fmt.Fprintf(w, "Estimated other:     $%.2f\n", b.EstimatedNonInventoryCost)
	fmt.Fprintf(w, "Total cost:          $%.2f\n", b.TotalCost)
	fmt.Fprintf(w, "Sale price:          $%.2f\n", b.SalePrice)
	fmt.Fprintf(w, "Profit per drink:    $%.2f (%.1f%%)\n", b.ProfitPerDrink, b.MarginPercent)
	if b.Yield != nil {
		fmt.Fprintf(w, "Yield:               %d drinks\n", *b.Yield)
	}
	if b.TotalBatchCost != nil {
		fmt.Fprintf(w, "Batch cost:          $%.2f\n", *b.TotalBatchCost)
	}
	if b.TotalProfit != nil {
		fmt.Fprintf(w, "Total profit:        $%.2f\n", *b.TotalProfit)
	}
	if b.AnchorValue != nil && b.TotalProfit != nil {
		fmt.Fprintf(w, "\nYou turned $%.2f of inventory into $%.2f of profit.\n", *b.AnchorValue, *b.TotalProfit)
	}
	for _, n := range b.Notes {
		fmt.Fprintf(w, "note: %s\n", n)
	}
	if b.Partial {
		_, err := fmt.Fprintln(w, "\nThis breakdown is partial; see the notes above.")
		return err
	}
	return nil
}
