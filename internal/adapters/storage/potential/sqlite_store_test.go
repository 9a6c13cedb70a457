package potential

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "factoryplan/internal/domain/potential"
	"factoryplan/internal/testutil"
)

func TestPotentialStore_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()
	pid := testutil.InsertPhase(t, db, 2, "Establishment of product basis")

	id, err := store.Save(ctx, domain.Potential{PhaseID: pid, Category: "Quality", Title: "Visual inspection", Description: "CNN defect detection"})
	require.NoError(t, err)

	list, err := store.ListByPhase(ctx, pid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Rating, "new potentials are unrated")

	p := list[0]
	p.Title = "Visual inspection v2"
	_, err = store.Save(ctx, p)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Visual inspection v2", got.Title)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.GetByID(ctx, id)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPotentialStore_SaveKeepsRating(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()
	pid := testutil.InsertPhase(t, db, 1, "Setting of objectives")

	id, err := store.Save(ctx, domain.Potential{PhaseID: pid, Category: "c", Title: "t", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, store.Rate(ctx, id, 4))

	_, err = store.Save(ctx, domain.Potential{ID: id, PhaseID: pid, Category: "c", Title: "t2", Description: "d"})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)
}

func TestPotentialStore_TopRated(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()
	p1 := testutil.InsertPhase(t, db, 1, "Setting of objectives")
	p3 := testutil.InsertPhase(t, db, 3, "Concept planning")

	unrated, _ := store.Save(ctx, domain.Potential{PhaseID: p1, Category: "c", Title: "unrated", Description: "d"})
	low, _ := store.Save(ctx, domain.Potential{PhaseID: p1, Category: "c", Title: "low", Description: "d"})
	high, _ := store.Save(ctx, domain.Potential{PhaseID: p3, Category: "c", Title: "high", Description: "d"})
	require.NoError(t, store.Rate(ctx, low, 2))
	require.NoError(t, store.Rate(ctx, high, 5))

	top, err := store.TopRated(ctx)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{high, low, unrated}, []int64{top[0].ID, top[1].ID, top[2].ID})
	assert.Equal(t, 3, top[0].PhaseNo)
	assert.Equal(t, "Concept planning", top[0].PhaseTitle)
	assert.Nil(t, top[2].Rating)
}

func TestPotentialStore_RateMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	err := store.Rate(context.Background(), 99, 3)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
