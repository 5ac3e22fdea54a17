// Package history tracks document conversion outcomes. The store is
// injectable so the default restart-loss semantics of the in-memory store
// can be traded for SQLite persistence.
package history

import (
	"context"
	"time"
)

// Entry records one conversion attempt for a document.
type Entry struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	SourceFormat string    `json:"source_format"`
	TargetFormat string    `json:"target_format"`
	OutputPath   string    `json:"output_path,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	Detail       string    `json:"detail,omitempty"`
}

// Store abstracts conversion-history persistence. Source keys are document
// names as supplied by callers.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// List returns all entries for one document in append order.
	List(ctx context.Context, source string) ([]Entry, error)
	// Latest returns the most recent entry for one document.
	Latest(ctx context.Context, source string) (Entry, bool, error)
	// Prune removes entries older than cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
