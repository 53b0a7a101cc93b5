package storage

import (
	"context"
	"errors"

	"github.com/benmeehan/gps-ingestor/internal/models"
)

var (
	// ErrDuplicateID is returned when a record id is already taken.
	ErrDuplicateID = errors.New("location record id already exists")

	// ErrUnavailable is returned by a repository that could not be opened.
	ErrUnavailable = errors.New("location store unavailable")
)

// LocationRepository handles location record persistence.
// Implementations must be safe for concurrent use.
type LocationRepository interface {
	// Insert stores a new record. It never overwrites an existing one.
	Insert(ctx context.Context, record *models.LocationRecord) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases connections held by the repository.
	Close(ctx context.Context) error
}
