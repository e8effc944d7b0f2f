package planner

import (
	"math"
	"math/rand"
	"sort"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

const (
	// Below this many strict candidates the variety constraint is relaxed.
	minStrictCandidates = 3
	// Winners are drawn uniformly from this many top-scored candidates.
	topCandidates = 5
)

// SelectedMeal is one filled slot: a recipe and its serving multiplier.
type SelectedMeal struct {
	MealType recipe.MealType
	Recipe   recipe.Recipe
	Servings float64
}

// Recommender selects recipes for meal slots against macro targets.
// The zero value is not usable; construct with NewRecommender.
type Recommender struct {
	Splits  MealSplits
	Weights ScoreWeights
}

// NewRecommender creates a Recommender with the default splits and weights.
func NewRecommender() *Recommender {
	return &Recommender{
		Splits:  DefaultMealSplits(),
		Weights: DefaultScoreWeights(),
	}
}

// RecommendDailyMeals fills breakfast, lunch and dinner for a single day.
//
// Slots are processed strictly in order because dinner's target is the
// residual daily budget after the earlier picks. Each slot filters
// candidates in three progressively looser tiers:
//
//  1. tagged for the slot, not recently used, not already picked today
//  2. variety constraint dropped when tier 1 leaves fewer than 3 options
//  3. meal-type filter dropped too when tier 2 is empty
//
// A slot with no candidate after tier 3 stays unfilled; the day never
// fails outright. The rng drives the uniform pick among the top-scored
// candidates, so a fixed seed makes the result reproducible.
func (rc *Recommender) RecommendDailyMeals(
	targets nutrition.MacroTargets,
	allRecipes []recipe.Recipe,
	excluded map[int64]bool,
	rng *rand.Rand,
) []SelectedMeal {
	// Recipes without nutrition data can never be scored.
	available := make([]recipe.Recipe, 0, len(allRecipes))
	for _, r := range allRecipes {
		if r.Nutrition != nil {
			available = append(available, r)
		}
	}

	var selected []SelectedMeal
	usedToday := make(map[int64]bool)
	consumed := nutrition.Zero()

	for _, mealType := range recipe.MealTypes {
		// Dinner corrects for over/undershoot of the earlier slots.
		var target nutrition.Nutrition
		if mealType == recipe.Dinner {
			target = residualTarget(targets, consumed)
		} else {
			target = rc.Splits.MealTarget(targets, mealType)
		}

		meal, ok := rc.selectSlot(mealType, target, available, excluded, usedToday, rng)
		if !ok {
			continue
		}

		selected = append(selected, meal)
		usedToday[meal.Recipe.ID] = true
		consumed = consumed.Add(meal.Recipe.Nutrition.Scaled(meal.Servings))
	}

	return selected
}

// RecommendSlot runs the per-slot selection in isolation, against the
// full fractional target for that meal type. This is the regeneration
// path: it has no visibility into what the day's other meals consumed.
func (rc *Recommender) RecommendSlot(
	mealType recipe.MealType,
	targets nutrition.MacroTargets,
	allRecipes []recipe.Recipe,
	excluded map[int64]bool,
	rng *rand.Rand,
) (SelectedMeal, bool) {
	available := make([]recipe.Recipe, 0, len(allRecipes))
	for _, r := range allRecipes {
		if r.Nutrition != nil {
			available = append(available, r)
		}
	}
	target := rc.Splits.MealTarget(targets, mealType)
	return rc.selectSlot(mealType, target, available, excluded, map[int64]bool{}, rng)
}

func (rc *Recommender) selectSlot(
	mealType recipe.MealType,
	target nutrition.Nutrition,
	available []recipe.Recipe,
	excluded map[int64]bool,
	usedToday map[int64]bool,
	rng *rand.Rand,
) (SelectedMeal, bool) {
	// Tier 1: meal type + variety + same-day exclusion.
	var candidates []recipe.Recipe
	for _, r := range available {
		if r.HasMealType(mealType) && !excluded[r.ID] && !usedToday[r.ID] {
			candidates = append(candidates, r)
		}
	}

	// Tier 2: variety is sacrificed before feasibility.
	if len(candidates) < minStrictCandidates {
		candidates = candidates[:0]
		for _, r := range available {
			if r.HasMealType(mealType) && !usedToday[r.ID] {
				candidates = append(candidates, r)
			}
		}
	}

	// Tier 3: any recipe not already eaten today. Reaching this tier
	// means the catalog is nearly exhausted for this slot.
	if len(candidates) == 0 {
		for _, r := range available {
			if !usedToday[r.ID] {
				candidates = append(candidates, r)
			}
		}
	}

	if len(candidates) == 0 {
		return SelectedMeal{}, false
	}

	type scoredCandidate struct {
		score    float64
		recipe   recipe.Recipe
		servings float64
	}
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, r := range candidates {
		servings := OptimalServings(r, target)
		scored = append(scored, scoredCandidate{
			score:    RecipeScore(r, target, servings, rc.Weights),
			recipe:   r,
			servings: servings,
		})
	}

	// Stable: ties keep catalog order ahead of the randomized pick.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Uniform pick among the top candidates trades a little optimality
	// for plan diversity.
	topN := len(scored)
	if topN > topCandidates {
		topN = topCandidates
	}
	idx := 0
	if topN > 1 {
		idx = rng.Intn(topN)
	}

	winner := scored[idx]
	return SelectedMeal{
		MealType: mealType,
		Recipe:   winner.recipe,
		Servings: winner.servings,
	}, true
}

// residualTarget is the remaining daily budget, clamped per field so an
// overshoot earlier in the day never produces a negative target.
func residualTarget(targets nutrition.MacroTargets, consumed nutrition.Nutrition) nutrition.Nutrition {
	return nutrition.Nutrition{
		Calories: math.Max(0, targets.Calories-consumed.Calories),
		ProteinG: math.Max(0, targets.ProteinG-consumed.ProteinG),
		CarbsG:   math.Max(0, targets.CarbsG-consumed.CarbsG),
		FatG:     math.Max(0, targets.FatG-consumed.FatG),
	}
}

// MacroDeviation holds per-macro deviation from target, in percent.
// Positive means over target.
type MacroDeviation struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DayScore summarizes how a day's meals track the daily targets.
type DayScore struct {
	Total     nutrition.Nutrition
	Deviation MacroDeviation
}

// ScoreDailyPlan totals a day's meals and reports deviation from targets.
func (rc *Recommender) ScoreDailyPlan(meals []SelectedMeal, targets nutrition.MacroTargets) DayScore {
	total := nutrition.Zero()
	for _, m := range meals {
		if m.Recipe.Nutrition != nil {
			total = total.Add(m.Recipe.Nutrition.Scaled(m.Servings))
		}
	}

	deviation := func(actual, target float64) float64 {
		if target == 0 {
			return 0
		}
		return math.Round((actual-target)/target*1000) / 10
	}

	return DayScore{
		Total: total,
		Deviation: MacroDeviation{
			Calories: deviation(total.Calories, targets.Calories),
			Protein:  deviation(total.ProteinG, targets.ProteinG),
			Carbs:    deviation(total.CarbsG, targets.CarbsG),
			Fat:      deviation(total.FatG, targets.FatG),
		},
	}
}
