package matrix

import (
	"context"

	domain "factoryplan/internal/domain/matrix"
)

// Store persists interface matrix categories.
type Store interface {
	ListByPhase(ctx context.Context, phaseID int64) ([]domain.Category, error)
	Titles(ctx context.Context, phaseID int64) ([]string, error)
	Save(ctx context.Context, c domain.Category) (int64, error)
	Delete(ctx context.Context, id int64) error
}
