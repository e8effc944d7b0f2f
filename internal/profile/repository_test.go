package profile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-meal-planner/internal/database"
	"macro-meal-planner/internal/profile"
)

func newTestRepo(t *testing.T) *profile.Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return profile.NewRepository(db.SQL)
}

func TestRepositorySaveGetUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := &profile.Profile{
		Name: "Alex", Age: 30, WeightKG: 80, HeightCM: 180,
		Sex: "male", ActivityLevel: "moderately_active", Goal: "build_muscle",
	}
	id, err := repo.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alex", got.Name)
	assert.Equal(t, 80.0, got.WeightKG)
	assert.Equal(t, "build_muscle", got.Goal)

	got.WeightKG = 78
	got.Goal = "maintain"
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 78.0, updated.WeightKG)
	assert.Equal(t, "maintain", updated.Goal)
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}
