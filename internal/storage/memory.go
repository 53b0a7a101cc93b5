package storage

import (
	"context"
	"fmt"

	"github.com/benmeehan/gps-ingestor/internal/models"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryRepository keeps records in process memory. Contents are lost on restart.
type MemoryRepository struct {
	records cmap.ConcurrentMap[string, models.LocationRecord]
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: cmap.New[models.LocationRecord](),
	}
}

// Insert stores a copy of record keyed by its id.
func (m *MemoryRepository) Insert(ctx context.Context, record *models.LocationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.records.SetIfAbsent(record.ID, *record) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}
	return nil
}

// Get returns a copy of the record with the given id.
func (m *MemoryRepository) Get(id string) (*models.LocationRecord, bool) {
	record, ok := m.records.Get(id)
	if !ok {
		return nil, false
	}
	return &record, true
}

// Count returns the number of stored records.
func (m *MemoryRepository) Count() int {
	return m.records.Count()
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) Close(ctx context.Context) error {
	return nil
}
