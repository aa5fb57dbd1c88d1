package ports

import (
	"context"

	"jobmetrics/domain/core"
	"jobmetrics/domain/run"
)

// RunRepository persists report runs.
type RunRepository interface {
	Create(ctx context.Context, r *run.Run) error
	GetByID(ctx context.Context, id core.RunID) (*run.Run, error)
	// List returns the newest runs first, without their report bodies.
	List(ctx context.Context, limit, offset int) ([]*run.Run, error)
	// LatestByHash returns the newest run for a workbook content hash.
	LatestByHash(ctx context.Context, hash core.Hash) (*run.Run, error)
}
