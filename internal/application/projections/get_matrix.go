package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	"factoryplan/internal/domain/matrix"
)

// MatrixQuery selects the phase whose matrix is shown.
type MatrixQuery struct {
	PhaseID int64
}

// MatrixDeps holds dependencies for the matrix projection.
type MatrixDeps struct {
	Matrix MatrixReader
}

// MatrixResult is the interface matrix of one phase.
type MatrixResult struct {
	// Slots has one entry per category type in legend order; empty slots have a nil Category.
	Slots []matrix.Slot
	// Titles are the distinct category titles used in the phase.
	Titles []string
}

// QueryMatrix fetches categories and titles concurrently and keeps one category per type.
// PRE: PhaseID > 0
// POST: len(Slots) == len(matrix.Types); any fetch error fails the whole query
func QueryMatrix(ctx context.Context, query MatrixQuery, deps MatrixDeps) (MatrixResult, error) {
	var (
		categories []matrix.Category
		titles     []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = deps.Matrix.ForPhase(gctx, query.PhaseID)
		return err
	})
	g.Go(func() error {
		var err error
		titles, err = deps.Matrix.CategoryTitles(gctx, query.PhaseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return MatrixResult{}, err
	}
	if titles == nil {
		titles = []string{}
	}
	return MatrixResult{Slots: matrix.PickPerType(categories), Titles: titles}, nil
}
