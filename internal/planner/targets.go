// Package planner implements the macro-matching meal allocation engine:
// per-slot target derivation, candidate scoring, serving optimization,
// daily slot selection with variety constraints, weekly plan generation
// and single-slot regeneration.
package planner

import (
	"fmt"
	"math"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// MealsPerDay is the number of slots filled per day.
const MealsPerDay = 3

// MealSplits maps each meal type to its fraction of the daily targets.
type MealSplits map[recipe.MealType]float64

// DefaultMealSplits returns the standard calorie distribution across the day.
func DefaultMealSplits() MealSplits {
	return MealSplits{
		recipe.Breakfast: 0.25,
		recipe.Lunch:     0.35,
		recipe.Dinner:    0.40,
	}
}

// Validate checks that the three meal fractions sum to 1.0.
func (s MealSplits) Validate() error {
	sum := 0.0
	for _, mt := range recipe.MealTypes {
		sum += s[mt]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("meal splits must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// MealTarget derives the nutrition target for a single meal slot as a
// fixed fraction of the daily targets. An unknown meal type gets an
// equal share of the day.
func (s MealSplits) MealTarget(targets nutrition.MacroTargets, mt recipe.MealType) nutrition.Nutrition {
	fraction, ok := s[mt]
	if !ok {
		fraction = 1.0 / MealsPerDay
	}
	return nutrition.Nutrition{
		Calories: targets.Calories * fraction,
		ProteinG: targets.ProteinG * fraction,
		CarbsG:   targets.CarbsG * fraction,
		FatG:     targets.FatG * fraction,
	}
}
