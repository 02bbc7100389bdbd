// Package cellar keeps the bounded recency history of identified wines.
//
// The history is a small most-recent-first list, deduplicated by wine name
// and capped at a few entries — a lightweight scan history, not a
// performance cache. It is loaded once at startup and written through to
// the store after every mutation, so a restart always sees the last state.
package cellar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// DefaultLimit is the maximum number of history entries kept.
const DefaultLimit = 5

// Store persists the serialized history between sessions.
type Store interface {
	// Load reads the persisted history. A missing state returns an empty
	// list and no error.
	Load(ctx context.Context) ([]wine.Record, error)

	// Save replaces the persisted history with the given list.
	Save(ctx context.Context, records []wine.Record) error

	// Close releases the store's resources.
	Close() error
}

// Cellar owns the in-memory history and its persistence. All mutations go
// through it; callers only ever see snapshots.
type Cellar struct {
	mu      sync.Mutex
	entries []wine.Record
	store   Store
	limit   int
}

// Open creates a Cellar backed by the given store and loads the persisted
// history. Corrupt persisted state is reported and treated as empty —
// a broken history file must never prevent startup.
func Open(ctx context.Context, store Store, limit int) (*Cellar, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	c := &Cellar{store: store, limit: limit}

	entries, err := store.Load(ctx)
	if err != nil {
		slog.Warn("history state unreadable, starting empty", "error", err)
		entries = nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
		// Persist the truncation so the store never stays over-limit.
		if err := store.Save(ctx, entries); err != nil {
			slog.Warn("persisting truncated history failed", "error", err)
		}
	}
	c.entries = entries

	slog.Info("cellar loaded", "entries", len(c.entries), "limit", limit)
	return c, nil
}

// Record prepends a freshly identified wine, drops any existing entry for
// the same wine (most recent wins), truncates to the limit and persists
// the result. The persisted write completes before Record returns.
func (c *Cellar) Record(ctx context.Context, w wine.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]wine.Record, 0, len(c.entries)+1)
	kept = append(kept, w)
	for _, e := range c.entries {
		if e.SameWine(&w) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > c.limit {
		kept = kept[:c.limit]
	}

	if err := c.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	c.entries = kept
	return nil
}

// List returns a most-recent-first snapshot of the history.
func (c *Cellar) List() []wine.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wine.Record, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clear empties the history and persists the empty state.
func (c *Cellar) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, nil); err != nil {
		return fmt.Errorf("persisting cleared history: %w", err)
	}
	c.entries = nil
	return nil
}

// Close releases the backing store.
func (c *Cellar) Close() error {
	return c.store.Close()
}
