// Package session persists per-session state (recipe, inventory, chat, cost, training
// guide) in a key-value backend under "{session_id}_{kind}" keys.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ID identifies one user session. It is opaque to the store.
type ID string

// NewID returns a random v4 UUID session id.
func NewID() ID { return ID(uuid.NewString()) }

func (id ID) String() string { return string(id) }

// Kind names one entity a session owns.
type Kind string

const (
	KindRecipe        Kind = "recipe"
	KindInventory     Kind = "inventory"
	KindChat          Kind = "chat"
	KindCost          Kind = "cost"
	KindTrainingGuide Kind = "training_guide"
)

// Kinds lists every kind a session may own.
var Kinds = []Kind{KindRecipe, KindInventory, KindChat, KindCost, KindTrainingGuide}

var (
	// ErrNotFound is returned by backends for a missing key.
	ErrNotFound = errors.New("session: key not found")
	// ErrMissingState marks an operation that needs state the session does not hold yet.
	ErrMissingState = errors.New("session: missing state")
)

// Key builds the backend key for a session entity.
func Key(id ID, kind Kind) string {
	return fmt.Sprintf("%s_%s", id, kind)
}

// Backend is the key-value boundary: opaque UTF-8 payloads, no transactions.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store serializes session entities as JSON over a Backend. Writes to different kinds are
// independent; nothing is atomic across them.
type Store struct {
	backend Backend
}

func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Put stores v under the session's kind key.
func (s *Store) Put(ctx context.Context, id ID, kind Kind, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	if err := s.backend.Set(ctx, Key(id, kind), b); err != nil {
		return fmt.Errorf("store %s: %w", kind, err)
	}
	slog.Debug("SESSION: Stored", "session_id", id, "kind", kind, "bytes", len(b))
	return nil
}

// Get decodes the session's kind into out. It reports false for a missing key and for
// any backend or decode failure, which is logged. It never returns an error.
func (s *Store) Get(ctx context.Context, id ID, kind Kind, out any) bool {
	b, err := s.backend.Get(ctx, Key(id, kind))
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		slog.Error("SESSION: Backend get failed", "session_id", id, "kind", kind, "error", err)
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		slog.Error("SESSION: Stored value could not be decoded", "session_id", id, "kind", kind, "error", err)
		return false
	}
	return true
}

// Delete removes the session's kind. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, id ID, kind Kind) error {
	if err := s.backend.Delete(ctx, Key(id, kind)); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// Clear removes every kind the session owns.
func (s *Store) Clear(ctx context.Context, id ID) error {
	var errs []error
	for _, k := range Kinds {
		if err := s.Delete(ctx, id, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MissingStateError reports the kinds an operation needed but the session does not hold.
type MissingStateError struct {
	ID      ID
	Missing []Kind
}

func (e *MissingStateError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = string(k)
	}
	return fmt.Sprintf("session %s has no %s yet", e.ID, strings.Join(names, " or "))
}

func (e *MissingStateError) Is(target error) bool { return target == ErrMissingState }

// Has reports whether kind is among the missing kinds.
func (e *MissingStateError) Has(kind Kind) bool {
	return slices.Contains(e.Missing, kind)
}
