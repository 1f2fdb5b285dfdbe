// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"options-signals/internal/models"
)

// SignalStore is the durable record of signals and their legs.
//
// Insert is the transactional boundary: the signal row and both leg rows are
// persisted atomically or not at all. A generated signal that fails the
// Exists check is silently discarded by callers so repeated scan cycles stay
// idempotent.
type SignalStore interface {
	// Exists reports whether an equivalent Active signal is already stored.
	// Equivalence is (symbol, strategy, expiration, ordered leg strikes).
	Exists(ctx context.Context, symbol string, strategy models.Strategy, expiration time.Time, strikeSet string) (bool, error)

	// Insert atomically writes the signal and its ordered legs, returning
	// the assigned signal ID.
	Insert(ctx context.Context, signal *models.Signal) (int64, error)

	// ListActive returns all Active signals with legs populated, including
	// those already past expiration: the roll monitor must still see them to
	// fire its triggers. asOf is the evaluation instant the listing is taken
	// for; all time-based filtering against it belongs to the caller.
	ListActive(ctx context.Context, asOf time.Time) ([]models.Signal, error)

	// UpdateStatus transitions a signal to a new lifecycle status.
	UpdateStatus(ctx context.Context, id int64, status models.SignalStatus) error

	// Close releases the underlying resources.
	Close() error
}
