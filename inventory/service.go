package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"barkeep/session"
)

// Service ingests inventories and persists them per session.
type Service struct {
	store *session.Store
}

func NewService(store *session.Store) *Service {
	return &Service{store: store}
}

// Ingest validates rows and replaces the session's inventory. A malformed table leaves
// the stored inventory untouched.
func (s *Service) Ingest(ctx context.Context, id session.ID, rows [][]string) (Inventory, error) {
	inv, err := Ingest(rows)
	if err != nil {
		slog.Warn("INVENTORY: Rejected table", "session_id", id, "error", err)
		return Inventory{}, err
	}
	return s.save(ctx, id, inv)
}

// IngestCSV is Ingest over a CSV reader.
func (s *Service) IngestCSV(ctx context.Context, id session.ID, r io.Reader) (Inventory, error) {
	inv, err := IngestCSV(r)
	if err != nil {
		slog.Warn("INVENTORY: Rejected CSV", "session_id", id, "error", err)
		return Inventory{}, err
	}
	return s.save(ctx, id, inv)
}

func (s *Service) save(ctx context.Context, id session.ID, inv Inventory) (Inventory, error) {
	if err := s.store.Put(ctx, id, session.KindInventory, inv); err != nil {
		return Inventory{}, fmt.Errorf("persist inventory: %w", err)
	}
	slog.Info("INVENTORY: Ingested", "session_id", id, "items", len(inv.Items), "total_value", inv.TotalValue())
	return inv, nil
}

// Load returns the session's inventory, or false if none has been ingested.
func (s *Service) Load(ctx context.Context, id session.ID) (Inventory, bool) {
	var inv Inventory
	if !s.store.Get(ctx, id, session.KindInventory, &inv) {
		return Inventory{}, false
	}
	return inv, true
}

// Lookup resolves one name against the session's inventory.
func (s *Service) Lookup(ctx context.Context, id session.ID, name string) (Item, bool) {
	inv, ok := s.Load(ctx, id)
	if !ok {
		return Item{}, false
	}
	return inv.Lookup(name)
}
