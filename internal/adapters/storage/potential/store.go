package potential

import (
	"context"

	domain "factoryplan/internal/domain/potential"
)

// Store persists AI potentials.
type Store interface {
	ListByPhase(ctx context.Context, phaseID int64) ([]domain.Potential, error)
	GetByID(ctx context.Context, id int64) (domain.Potential, error)
	Save(ctx context.Context, p domain.Potential) (int64, error)
	Delete(ctx context.Context, id int64) error
	Rate(ctx context.Context, id int64, rating int) error
	TopRated(ctx context.Context) ([]domain.Potential, error)
}
