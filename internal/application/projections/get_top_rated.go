package projections

import (
	"context"

	"factoryplan/internal/domain/potential"
)

// TopRatedDeps holds dependencies for the top-rated projection.
type TopRatedDeps struct {
	Potentials TopRatedReader
}

// TopRatedResult is the cross-phase potential ranking.
type TopRatedResult struct {
	Potentials []potential.Potential
}

// Empty reports whether there is nothing to rank.
func (r TopRatedResult) Empty() bool {
	return len(r.Potentials) == 0
}

// QueryTopRated returns every potential ordered by rating, unrated last.
// POST: Equal ratings keep backend order
func QueryTopRated(ctx context.Context, deps TopRatedDeps) (TopRatedResult, error) {
	ps, err := deps.Potentials.TopRated(ctx)
	if err != nil {
		return TopRatedResult{}, err
	}
	return TopRatedResult{Potentials: potential.SortTopRated(ps)}, nil
}
