package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// DefaultVarietyWindowDays is how long a recipe is kept off the menu
// after appearing in a saved plan.
const DefaultVarietyWindowDays = 21

// ErrNoReplacement is returned by RegenerateMeal when no eligible
// candidate exists at any relaxation tier.
var ErrNoReplacement = errors.New("no replacement recipe found")

// RecipeCatalog supplies the full candidate set. Implemented by
// recipe.Repository.
type RecipeCatalog interface {
	All(ctx context.Context) ([]recipe.Recipe, error)
}

// PlanHistory answers which recipes a user's saved plans used recently.
// Implemented by PlanRepository.
type PlanHistory interface {
	RecentRecipeIDs(ctx context.Context, userID int64, before time.Time, windowDays int) (map[int64]bool, error)
}

// Generator orchestrates weekly plan generation and single-slot
// regeneration. It never persists anything; callers save the returned
// plan. Run at most one generation or regeneration per plan at a time.
type Generator struct {
	catalog RecipeCatalog
	history PlanHistory
	rec     *Recommender
	rng     *rand.Rand
	log     *zap.Logger

	// VarietyWindowDays is the no-repeat window applied against plan
	// history. Mutate before first use only.
	VarietyWindowDays int
}

// NewGenerator creates a Generator. The rng is the only source of
// nondeterminism; seed it for reproducible plans.
func NewGenerator(catalog RecipeCatalog, history PlanHistory, rng *rand.Rand, log *zap.Logger) *Generator {
	return &Generator{
		catalog:           catalog,
		history:           history,
		rec:               NewRecommender(),
		rng:               rng,
		log:               log,
		VarietyWindowDays: DefaultVarietyWindowDays,
	}
}

// GenerateWeeklyPlan builds a 7-day plan tracking the daily targets.
//
// Each day's exclusion set is the variety window union everything
// already placed this week, so relaxation tiers fire more often on the
// later days. A day may end with fewer than three entries when the
// catalog runs thin; callers detect that by entry count.
func (g *Generator) GenerateWeeklyPlan(ctx context.Context, userID int64, targets nutrition.MacroTargets, weekStart time.Time) (*MealPlan, error) {
	allRecipes, err := g.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	recentlyUsed, err := g.history.RecentRecipeIDs(ctx, userID, weekStart, g.VarietyWindowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load variety window: %w", err)
	}

	plan := &MealPlan{
		UserID:        userID,
		WeekStartDate: weekStart,
		CreatedAt:     time.Now().UTC(),
	}

	weekUsed := make(map[int64]bool)
	for day := 0; day < 7; day++ {
		exclusion := make(map[int64]bool, len(recentlyUsed)+len(weekUsed))
		for id := range recentlyUsed {
			exclusion[id] = true
		}
		for id := range weekUsed {
			exclusion[id] = true
		}

		meals := g.rec.RecommendDailyMeals(targets, allRecipes, exclusion, g.rng)
		if len(meals) < MealsPerDay {
			g.log.Warn("day has unfilled meal slots",
				zap.Int64("user_id", userID),
				zap.String("day", DayNames[day]),
				zap.Int("filled", len(meals)))
		}

		for _, m := range meals {
			plan.Entries = append(plan.Entries, MealPlanEntry{
				DayOfWeek: day,
				MealType:  m.MealType,
				RecipeID:  m.Recipe.ID,
				Servings:  m.Servings,
				Recipe:    &m.Recipe,
			})
			weekUsed[m.Recipe.ID] = true
		}
	}

	g.log.Info("generated weekly plan",
		zap.Int64("user_id", userID),
		zap.Time("week_start", weekStart),
		zap.Int("entries", len(plan.Entries)))

	return plan, nil
}

// RegenerateMeal reselects the recipe for exactly one slot of an
// existing plan, excluding every recipe already in the plan plus the
// user's variety window. The slot is scored against its full fractional
// target; the other meals of that day are not consulted.
//
// On success the matching entry is updated in place and returned. On
// exhaustion the plan is untouched and ErrNoReplacement is returned.
func (g *Generator) RegenerateMeal(ctx context.Context, plan *MealPlan, dayOfWeek int, mealType recipe.MealType, targets nutrition.MacroTargets) (*MealPlanEntry, error) {
	entry := plan.Entry(dayOfWeek, mealType)
	if entry == nil {
		return nil, fmt.Errorf("plan %d has no entry for %s %s", plan.ID, DayNames[dayOfWeek], mealType)
	}

	allRecipes, err := g.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	recentlyUsed, err := g.history.RecentRecipeIDs(ctx, plan.UserID, plan.WeekStartDate, g.VarietyWindowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load variety window: %w", err)
	}

	exclusion := plan.RecipeIDs()
	for id := range recentlyUsed {
		exclusion[id] = true
	}

	meal, ok := g.rec.RecommendSlot(mealType, targets, allRecipes, exclusion, g.rng)
	if !ok {
		return nil, ErrNoReplacement
	}

	entry.RecipeID = meal.Recipe.ID
	entry.Servings = meal.Servings
	entry.Recipe = &meal.Recipe

	g.log.Info("regenerated meal",
		zap.Int64("plan_id", plan.ID),
		zap.String("day", DayNames[dayOfWeek]),
		zap.String("meal_type", string(mealType)),
		zap.Int64("recipe_id", meal.Recipe.ID))

	return entry, nil
}
