package planner

import (
	"math"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// Serving multipliers stay within a plausible human range and are
// quantized to quarter servings.
const (
	MinServings    = 0.5
	MaxServings    = 2.0
	servingQuantum = 0.25
)

// ScoreWeights weight each macro's contribution to the deviation sum.
type ScoreWeights struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DefaultScoreWeights weights protein adherence higher than the other macros.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Calories: 1.0, Protein: 1.5, Carbs: 1.0, Fat: 1.0}
}

// RecipeScore scores a recipe against a nutrition target at the given
// serving multiplier. Higher is better; a perfect match scores 1.0.
//
// score = 1 / (1 + sum(weight_i * |actual_i - target_i| / target_i))
//
// Recipes without nutrition data score exactly 0 and are never
// selectable; every achievable score is strictly positive. Zero-target
// dimensions are skipped so they contribute nothing.
func RecipeScore(r recipe.Recipe, target nutrition.Nutrition, servings float64, w ScoreWeights) float64 {
	if r.Nutrition == nil {
		return 0.0
	}

	actual := r.Nutrition.Scaled(servings)

	deviation := 0.0
	if target.Calories > 0 {
		deviation += w.Calories * math.Abs(actual.Calories-target.Calories) / target.Calories
	}
	if target.ProteinG > 0 {
		deviation += w.Protein * math.Abs(actual.ProteinG-target.ProteinG) / target.ProteinG
	}
	if target.CarbsG > 0 {
		deviation += w.Carbs * math.Abs(actual.CarbsG-target.CarbsG) / target.CarbsG
	}
	if target.FatG > 0 {
		deviation += w.Fat * math.Abs(actual.FatG-target.FatG) / target.FatG
	}

	return 1.0 / (1.0 + deviation)
}

// OptimalServings picks the serving multiplier that brings the recipe's
// calories closest to the target, rounded to the nearest quarter serving
// and clamped to [MinServings, MaxServings]. Recipes without nutrition
// data, or with zero calories, default to a single serving.
func OptimalServings(r recipe.Recipe, target nutrition.Nutrition) float64 {
	if r.Nutrition == nil || r.Nutrition.Calories == 0 {
		return 1.0
	}
	raw := target.Calories / r.Nutrition.Calories
	quantized := math.Round(raw/servingQuantum) * servingQuantum
	return math.Max(MinServings, math.Min(MaxServings, quantized))
}
