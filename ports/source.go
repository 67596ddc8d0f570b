package ports

import (
	"context"

	"happydash/domain/happiness"
)

// TableSource loads the raw happiness table from one fixed location.
// Location must be stable for the lifetime of the process; it is the cache key.
type TableSource interface {
	Location() string
	Load(ctx context.Context) (*happiness.Table, error)
}

// ObservationStore persists observations for the database-backed source
type ObservationStore interface {
	TableSource
	ReplaceAll(ctx context.Context, rows []happiness.Observation) (int, error)
}
