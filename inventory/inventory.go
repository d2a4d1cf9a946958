// Package inventory ingests a liquor inventory table, derives per-item costs and
// resolves recipe ingredient names against it.
package inventory

import (
	"strings"
)

// OzPerML is the conversion used for cost-per-oz (cost-per-ml / OzPerML).
const OzPerML = 0.033814

// Item is one inventory row plus its derived cost fields. Derived fields are set once by
// NewItem; an Inventory is never edited in place.
type Item struct {
	Name        string  `json:"name" yaml:"name"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	VolumeML    float64 `json:"volume_ml" yaml:"volume_ml"`
	CostPerUnit float64 `json:"cost_per_unit" yaml:"cost_per_unit"`

	CostPerML  float64 `json:"cost_per_ml" yaml:"cost_per_ml"`
	CostPerOz  float64 `json:"cost_per_oz" yaml:"cost_per_oz"`
	TotalML    float64 `json:"total_ml" yaml:"total_ml"`
	TotalValue float64 `json:"total_value" yaml:"total_value"`
}

// NewItem computes the derived fields. volumeML must be > 0.
func NewItem(name string, quantity, volumeML, costPerUnit float64) Item {
	it := Item{
		Name:        strings.TrimSpace(name),
		Quantity:    quantity,
		VolumeML:    volumeML,
		CostPerUnit: costPerUnit,
	}
	it.CostPerML = costPerUnit / volumeML
	it.CostPerOz = it.CostPerML / OzPerML
	it.TotalML = quantity * volumeML
	it.TotalValue = it.TotalML * it.CostPerML
	return it
}

// Inventory is the full set of items for a session.
type Inventory struct {
	Items []Item `json:"items" yaml:"items"`
}

func matchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds an item by exact name, ignoring case and surrounding whitespace.
// There is no fuzzy matching: "Tanqueray Gin" does not resolve to "Gin".
func (inv Inventory) Lookup(name string) (Item, bool) {
	key := matchKey(name)
	if key == "" {
		return Item{}, false
	}
	for _, it := range inv.Items {
		if matchKey(it.Name) == key {
			return it, true
		}
	}
	return Item{}, false
}

// Names returns item names in table order.
func (inv Inventory) Names() []string {
	names := make([]string, len(inv.Items))
	for i, it := range inv.Items {
		names[i] = it.Name
	}
	return names
}

// TotalValue is the value of everything on hand.
func (inv Inventory) TotalValue() float64 {
	var total float64
	for _, it := range inv.Items {
		total += it.TotalValue
	}
	return total
}
