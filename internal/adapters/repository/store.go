// Package repository persists prediction history records.
package repository

import (
	"context"

	"github.com/okian/edupredict/internal/domain/model"
)

// Store provides read/write access to the prediction history.
type Store interface {
	// Save persists rec. It returns false when a record with the same ID
	// already exists; the stored row is left untouched.
	Save(ctx context.Context, rec model.HistoryRecord) (bool, error)

	// ListByUser returns the newest limit records of userID ordered by
	// timestamp ascending. A zero limit means the store's maximum; a
	// negative limit fails with ErrInvalidLimit.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}
