package tracker_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-meal-planner/internal/database"
	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
	"macro-meal-planner/internal/tracker"
)

type trackerFixture struct {
	store    *tracker.Store
	userID   int64
	recipeID int64
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	res, err := db.SQL.ExecContext(ctx,
		`INSERT INTO users (name, age, weight_kg, height_cm, sex, activity_level, goal)
		 VALUES ('Test', 30, 80, 180, 'male', 'sedentary', 'maintain')`)
	require.NoError(t, err)
	userID, err := res.LastInsertId()
	require.NoError(t, err)

	recipeRepo := recipe.NewRepository(db.SQL)
	recipeID, err := recipeRepo.Save(ctx, &recipe.Recipe{
		Title:     "chicken salad",
		Source:    "seed",
		MealTypes: []recipe.MealType{recipe.Lunch},
		Nutrition: &nutrition.Nutrition{Calories: 600, ProteinG: 50, CarbsG: 40, FatG: 20},
	})
	require.NoError(t, err)

	return &trackerFixture{
		store:    tracker.NewStore(db.SQL, recipeRepo),
		userID:   userID,
		recipeID: recipeID,
	}
}

func TestLogMealAndLogs(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)

	id, err := f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 1.5, day)
	require.NoError(t, err)
	assert.NotZero(t, id)

	logs, err := f.store.Logs(ctx, f.userID, day, day)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.recipeID, logs[0].RecipeID)
	assert.Equal(t, recipe.Lunch, logs[0].MealType)
	assert.Equal(t, 1.5, logs[0].Servings)
	require.NotNil(t, logs[0].Recipe)
	assert.Equal(t, "chicken salad", logs[0].Recipe.Title)
}

func TestDailySummary(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	_, err := f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Breakfast, 1.0, day)
	require.NoError(t, err)
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 0.5, day.Add(5*time.Hour))
	require.NoError(t, err)
	// A different day must not contribute.
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Dinner, 1.0, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	s, err := f.store.DailySummary(ctx, f.userID, day, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumMeals)
	assert.Equal(t, 1, s.NumDays)
	assert.InDelta(t, 900, s.Total.Calories, 1e-9)
	assert.InDelta(t, 75, s.Total.ProteinG, 1e-9)
}

func TestDailySummaryEmpty(t *testing.T) {
	f := newTrackerFixture(t)
	s, err := f.store.DailySummary(context.Background(), f.userID,
		time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.NumMeals)
	assert.Equal(t, 0, s.NumDays)
	assert.Equal(t, nutrition.Zero(), s.Total)
	assert.Contains(t, tracker.FormatSummary(s), "No meals logged")
}

func TestWeeklySummary(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	// Wednesday; the summary window snaps to Monday the 24th.
	wednesday := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	_, err := f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 1.0, wednesday)
	require.NoError(t, err)
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Dinner, 1.0, wednesday.AddDate(0, 0, 2))
	require.NoError(t, err)
	// The Sunday before the window.
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Dinner, 1.0,
		time.Date(2026, 8, 23, 19, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s, err := f.store.WeeklySummary(ctx, f.userID, wednesday, nil)
	require.NoError(t, err)
	assert.Equal(t, "Week of 2026-08-24", s.PeriodLabel)
	assert.Equal(t, 2, s.NumMeals)
	assert.Equal(t, 2, s.NumDays)
	assert.InDelta(t, 1200, s.Total.Calories, 1e-9)
	assert.InDelta(t, 600, s.DailyAverage().Calories, 1e-9)
}

func TestMonthlySummary(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	_, err := f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 1.0,
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 1.0,
		time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = f.store.LogMeal(ctx, f.userID, f.recipeID, recipe.Lunch, 1.0,
		time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s, err := f.store.MonthlySummary(ctx, f.userID, 2026, time.August, nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-08", s.PeriodLabel)
	assert.Equal(t, 2, s.NumMeals)
	assert.Equal(t, 2, s.NumDays)
}

func TestAdherencePct(t *testing.T) {
	target := &nutrition.MacroTargets{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 67}

	t.Run("perfect adherence", func(t *testing.T) {
		s := tracker.NutritionSummary{
			Total:   nutrition.Nutrition{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 67},
			NumDays: 1,
			Target:  target,
		}
		a := s.AdherencePct()
		require.NotNil(t, a)
		assert.Equal(t, 100.0, a.Calories)
		assert.Equal(t, 100.0, a.Protein)
	})

	t.Run("deviation lowers adherence", func(t *testing.T) {
		s := tracker.NutritionSummary{
			Total:   nutrition.Nutrition{Calories: 1800, ProteinG: 150, CarbsG: 200, FatG: 67},
			NumDays: 1,
			Target:  target,
		}
		a := s.AdherencePct()
		require.NotNil(t, a)
		assert.InDelta(t, 90.0, a.Calories, 1e-9)
	})

	t.Run("floor at zero", func(t *testing.T) {
		s := tracker.NutritionSummary{
			Total:   nutrition.Nutrition{Calories: 8000, ProteinG: 150, CarbsG: 200, FatG: 67},
			NumDays: 1,
			Target:  target,
		}
		a := s.AdherencePct()
		require.NotNil(t, a)
		assert.Equal(t, 0.0, a.Calories)
	})

	t.Run("nil without a target", func(t *testing.T) {
		s := tracker.NutritionSummary{NumDays: 1}
		assert.Nil(t, s.AdherencePct())
	})
}
