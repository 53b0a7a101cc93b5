package storage

import (
	"context"
	"fmt"

	"github.com/benmeehan/gps-ingestor/internal/models"
)

// unavailableRepository stands in for a store that could not be opened,
// so the server can still listen and answer with storage errors.
type unavailableRepository struct {
	cause error
}

// NewUnavailableRepository returns a repository that fails every call with ErrUnavailable.
func NewUnavailableRepository(cause error) LocationRepository {
	return &unavailableRepository{cause: cause}
}

func (u *unavailableRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	return u.err()
}

func (u *unavailableRepository) Ping(ctx context.Context) error {
	return u.err()
}

func (u *unavailableRepository) Close(ctx context.Context) error {
	return nil
}

func (u *unavailableRepository) err() error {
	if u.cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.cause)
}
