// Package store keeps the display metadata (name, image) registered for a
// roll number.
package store

import (
	"context"
	"errors"

	"github.com/nubngpi/resultscraper/models"
)

// ErrNotFound is returned when no student is registered for a roll.
var ErrNotFound = errors.New("store: student not found")

// Store looks up and registers student display metadata.
type Store interface {
	// FindByRoll returns the first record registered for roll, or
	// ErrNotFound.
	FindByRoll(ctx context.Context, roll string) (*models.StudentRecord, error)

	// Insert registers a record. Registering the same roll twice keeps both;
	// lookups return the earliest.
	Insert(ctx context.Context, rec *models.StudentRecord) error

	// Name identifies the backend in health output.
	Name() string

	Close()
}
