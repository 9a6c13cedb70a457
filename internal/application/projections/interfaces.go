package projections

import (
	"context"

	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/potential"
	"factoryplan/internal/domain/profile"
)

// PhaseReader lists the phases for the navigator.
type PhaseReader interface {
	List(ctx context.Context) ([]phase.Phase, error)
}

// SubphaseReader lists the subphases of a phase.
type SubphaseReader interface {
	List(ctx context.Context, phaseID int64) ([]phase.Subphase, error)
}

// PotentialReader lists the potentials of a phase.
type PotentialReader interface {
	List(ctx context.Context, phaseID int64) ([]potential.Potential, error)
}

// TopRatedReader lists potentials across all phases.
type TopRatedReader interface {
	TopRated(ctx context.Context) ([]potential.Potential, error)
}

// ProfileReader fetches the profile of a phase.
type ProfileReader interface {
	Get(ctx context.Context, phaseID int64) (profile.Profile, error)
}

// ProductSectionReader lists the product development sections.
type ProductSectionReader interface {
	List(ctx context.Context) ([]profile.ProductSection, error)
}

// MatrixReader fetches the matrix categories of a phase.
type MatrixReader interface {
	ForPhase(ctx context.Context, phaseID int64) ([]matrix.Category, error)
	CategoryTitles(ctx context.Context, phaseID int64) ([]string, error)
}
