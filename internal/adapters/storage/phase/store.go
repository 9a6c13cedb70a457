package phase

import (
	"context"

	domain "factoryplan/internal/domain/phase"
)

// Store persists phases and their subphases.
type Store interface {
	List(ctx context.Context) ([]domain.Phase, error)
	GetByID(ctx context.Context, id int64) (domain.Phase, error)
	Save(ctx context.Context, p domain.Phase) (int64, error)
	Delete(ctx context.Context, id int64) error

	ListSubphases(ctx context.Context, phaseID int64) ([]domain.Subphase, error)
	SaveSubphase(ctx context.Context, s domain.Subphase) (int64, error)
	DeleteSubphase(ctx context.Context, phaseID, id int64) error
}
