package planner

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

type fakeCatalog struct {
	recipes []recipe.Recipe
}

func (f *fakeCatalog) All(_ context.Context) ([]recipe.Recipe, error) {
	return f.recipes, nil
}

type fakeHistory struct {
	recent map[int64]bool

	// captured arguments from the last call
	userID     int64
	before     time.Time
	windowDays int
}

func (f *fakeHistory) RecentRecipeIDs(_ context.Context, userID int64, before time.Time, windowDays int) (map[int64]bool, error) {
	f.userID = userID
	f.before = before
	f.windowDays = windowDays
	if f.recent == nil {
		return map[int64]bool{}, nil
	}
	return f.recent, nil
}

func newTestGenerator(catalog []recipe.Recipe, recent map[int64]bool, seed int64) (*Generator, *fakeHistory) {
	history := &fakeHistory{recent: recent}
	g := NewGenerator(&fakeCatalog{recipes: catalog}, history, rand.New(rand.NewSource(seed)), zap.NewNop())
	return g, history
}

func TestGenerateWeeklyPlan(t *testing.T) {
	ctx := context.Background()
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // a Monday

	t.Run("seven days of three meals", func(t *testing.T) {
		g, _ := newTestGenerator(bigTestCatalog(), nil, 1)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(1), plan.UserID)
		assert.Equal(t, weekStart, plan.WeekStartDate)
		assert.Len(t, plan.Entries, 7*MealsPerDay)

		for day := 0; day < 7; day++ {
			for _, mt := range recipe.MealTypes {
				e := plan.Entry(day, mt)
				require.NotNil(t, e, "missing %s on %s", mt, DayNames[day])
				// The catalog is deep enough that every pick comes from
				// the strict tier, so tags always match the slot.
				assert.True(t, e.Recipe.HasMealType(mt))
			}
		}
	})

	t.Run("entries carry hydrated recipes and servings", func(t *testing.T) {
		g, _ := newTestGenerator(bigTestCatalog(), nil, 2)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		for _, e := range plan.Entries {
			require.NotNil(t, e.Recipe)
			assert.Equal(t, e.Recipe.ID, e.RecipeID)
			assert.GreaterOrEqual(t, e.Servings, MinServings)
			assert.LessOrEqual(t, e.Servings, MaxServings)
		}
	})

	t.Run("variety window is queried for the plan's user and week", func(t *testing.T) {
		g, history := newTestGenerator(bigTestCatalog(), nil, 3)
		g.VarietyWindowDays = 14
		_, err := g.GenerateWeeklyPlan(ctx, 7, testTargets, weekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(7), history.userID)
		assert.Equal(t, weekStart, history.before)
		assert.Equal(t, 14, history.windowDays)
	})

	t.Run("recently used recipes are avoided when alternatives exist", func(t *testing.T) {
		recent := map[int64]bool{101: true, 111: true}
		g, _ := newTestGenerator(bigTestCatalog(), recent, 4)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		for _, e := range plan.Entries {
			assert.False(t, recent[e.RecipeID], "recipe %d is inside the variety window", e.RecipeID)
		}
	})

	t.Run("small catalog still yields a full week via relaxation", func(t *testing.T) {
		g, _ := newTestGenerator(testCatalog(), nil, 5)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		// 12 recipes cannot cover 21 unique slots, but relaxation reuses
		// them across days; within a day there are no repeats.
		assert.Len(t, plan.Entries, 7*MealsPerDay)
		for day := 0; day < 7; day++ {
			seen := make(map[int64]bool)
			for _, mt := range recipe.MealTypes {
				e := plan.Entry(day, mt)
				require.NotNil(t, e)
				assert.False(t, seen[e.RecipeID])
				seen[e.RecipeID] = true
			}
		}
	})

	t.Run("empty catalog produces an empty plan", func(t *testing.T) {
		g, _ := newTestGenerator(nil, nil, 6)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		assert.Empty(t, plan.Entries)
	})

	t.Run("same seed reproduces the same plan", func(t *testing.T) {
		g1, _ := newTestGenerator(bigTestCatalog(), nil, 42)
		g2, _ := newTestGenerator(bigTestCatalog(), nil, 42)
		p1, err := g1.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		p2, err := g2.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		require.Equal(t, len(p1.Entries), len(p2.Entries))
		for i := range p1.Entries {
			assert.Equal(t, p1.Entries[i].RecipeID, p2.Entries[i].RecipeID)
			assert.Equal(t, p1.Entries[i].Servings, p2.Entries[i].Servings)
		}
	})
}

func TestRegenerateMeal(t *testing.T) {
	ctx := context.Background()
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	makePlan := func(t *testing.T, seed int64) (*Generator, *MealPlan) {
		t.Helper()
		g, _ := newTestGenerator(bigTestCatalog(), nil, seed)
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)
		return g, plan
	}

	t.Run("replaces exactly one entry with a recipe outside the plan", func(t *testing.T) {
		g, plan := makePlan(t, 1)
		planIDs := plan.RecipeIDs()

		before := make([]MealPlanEntry, len(plan.Entries))
		copy(before, plan.Entries)

		entry, err := g.RegenerateMeal(ctx, plan, 2, recipe.Lunch, testTargets)
		require.NoError(t, err)
		assert.Equal(t, 2, entry.DayOfWeek)
		assert.Equal(t, recipe.Lunch, entry.MealType)
		assert.False(t, planIDs[entry.RecipeID], "replacement must not already be in the plan")

		changed := 0
		for i := range plan.Entries {
			if plan.Entries[i].RecipeID != before[i].RecipeID {
				changed++
			}
		}
		assert.Equal(t, 1, changed)
	})

	t.Run("unknown slot errors", func(t *testing.T) {
		g, plan := makePlan(t, 2)
		_, err := g.RegenerateMeal(ctx, plan, 3, recipe.MealType("snack"), testTargets)
		assert.Error(t, err)
	})

	t.Run("full exclusion falls back to tier 2 instead of failing", func(t *testing.T) {
		// Every catalog recipe excluded via plan or window: variety is
		// sacrificed and the slot still gets a dinner-tagged recipe.
		catalog := testCatalog()
		history := &fakeHistory{}
		g := NewGenerator(&fakeCatalog{recipes: catalog}, history, rand.New(rand.NewSource(3)), zap.NewNop())
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)

		planIDs := plan.RecipeIDs()
		history.recent = make(map[int64]bool)
		for _, r := range catalog {
			if !planIDs[r.ID] {
				history.recent[r.ID] = true
			}
		}

		entry, err := g.RegenerateMeal(ctx, plan, 0, recipe.Dinner, testTargets)
		require.NoError(t, err)
		assert.True(t, entry.Recipe.HasMealType(recipe.Dinner))
	})

	t.Run("unscoreable catalog returns ErrNoReplacement and keeps the plan", func(t *testing.T) {
		catalog := &fakeCatalog{recipes: bigTestCatalog()}
		history := &fakeHistory{}
		g := NewGenerator(catalog, history, rand.New(rand.NewSource(4)), zap.NewNop())
		plan, err := g.GenerateWeeklyPlan(ctx, 1, testTargets, weekStart)
		require.NoError(t, err)

		// The catalog loses its nutrition data before the regeneration.
		stripped := make([]recipe.Recipe, len(catalog.recipes))
		for i, r := range catalog.recipes {
			r.Nutrition = nil
			stripped[i] = r
		}
		catalog.recipes = stripped

		before := *plan.Entry(0, recipe.Dinner)
		_, err = g.RegenerateMeal(ctx, plan, 0, recipe.Dinner, testTargets)
		require.ErrorIs(t, err, ErrNoReplacement)
		assert.Equal(t, before, *plan.Entry(0, recipe.Dinner))
	})
}

// bigTestCatalog has enough recipes per slot that a whole week can be
// planned without repeats.
func bigTestCatalog() []recipe.Recipe {
	var recipes []recipe.Recipe
	add := func(id int64, title string, mt recipe.MealType, cal, protein, carbs, fat float64) {
		recipes = append(recipes, testRecipe(id, title,
			[]recipe.MealType{mt},
			&nutrition.Nutrition{Calories: cal, ProteinG: protein, CarbsG: carbs, FatG: fat}))
	}

	for i := int64(0); i < 10; i++ {
		add(100+i, "breakfast "+string(rune('a'+i)), recipe.Breakfast, 420+float64(i)*20, 30+float64(i)*2, 45+float64(i)*3, 12+float64(i))
		add(110+i, "lunch "+string(rune('a'+i)), recipe.Lunch, 600+float64(i)*25, 42+float64(i)*2, 60+float64(i)*3, 18+float64(i))
		add(120+i, "dinner "+string(rune('a'+i)), recipe.Dinner, 680+float64(i)*25, 48+float64(i)*2, 68+float64(i)*3, 22+float64(i))
	}
	return recipes
}
