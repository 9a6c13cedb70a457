package matrix

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "factoryplan/internal/domain/matrix"
	"factoryplan/internal/testutil"
)

func TestMatrixStore_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()
	pid := testutil.InsertPhase(t, db, 3, "Concept planning")

	id, err := store.Save(ctx, domain.Category{PhaseID: pid, CategoryType: domain.TypeOutputs, Title: "Layout variants", DetailText: "ideal + real layout"})
	require.NoError(t, err)
	_, err = store.Save(ctx, domain.Category{PhaseID: pid, CategoryType: domain.TypeFeedbackLoop, Title: "Budget"})
	require.NoError(t, err)

	cats, err := store.ListByPhase(ctx, pid)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, domain.TypeOutputs, cats[0].CategoryType)
	assert.Equal(t, "ideal + real layout", cats[0].DetailText)

	cats[0].Title = "Layout"
	_, err = store.Save(ctx, cats[0])
	require.NoError(t, err)

	titles, err := store.Titles(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Budget", "Layout"}, titles)

	require.NoError(t, store.Delete(ctx, id))
	assert.True(t, errors.Is(store.Delete(ctx, id), sql.ErrNoRows))
}

func TestMatrixStore_EmptyPhase(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewSQLiteStore(db)
	cats, err := store.ListByPhase(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}
