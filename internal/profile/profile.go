// Package profile holds user profiles and derives their daily macro
// targets with the Mifflin-St Jeor equation.
package profile

import (
	"fmt"
	"math"
	"strings"
	"time"

	"macro-meal-planner/internal/nutrition"
)

// Profile is a user's physical attributes and goal.
type Profile struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	WeightKG      float64   `json:"weight_kg"`
	HeightCM      float64   `json:"height_cm"`
	Sex           string    `json:"sex"`            // "male" or "female"
	ActivityLevel string    `json:"activity_level"` // sedentary, lightly_active, ...
	Goal          string    `json:"goal"`           // lose_fat, cut, maintain, build_muscle, recomp
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// ActivityMultipliers convert BMR to TDEE.
var ActivityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

// GoalCalorieAdjustments scale TDEE for the user's goal.
var GoalCalorieAdjustments = map[string]float64{
	"lose_fat":     0.80,
	"cut":          0.75,
	"maintain":     1.0,
	"build_muscle": 1.10,
	"recomp":       1.0,
}

// MacroSplit is a goal's calorie distribution across the macros.
type MacroSplit struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// GoalMacroSplits map each goal to its macro distribution.
var GoalMacroSplits = map[string]MacroSplit{
	"lose_fat":     {Protein: 0.40, Carbs: 0.30, Fat: 0.30},
	"cut":          {Protein: 0.40, Carbs: 0.25, Fat: 0.35},
	"maintain":     {Protein: 0.30, Carbs: 0.40, Fat: 0.30},
	"build_muscle": {Protein: 0.30, Carbs: 0.45, Fat: 0.25},
	"recomp":       {Protein: 0.35, Carbs: 0.35, Fat: 0.30},
}

// CalculateBMR applies the Mifflin-St Jeor equation.
//
//	Male:   BMR = 10*weight(kg) + 6.25*height(cm) - 5*age + 5
//	Female: BMR = 10*weight(kg) + 6.25*height(cm) - 5*age - 161
func CalculateBMR(p Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

// CalculateTDEE multiplies BMR by the activity factor. Unknown activity
// levels fall back to sedentary.
func CalculateTDEE(bmr float64, activityLevel string) float64 {
	multiplier, ok := ActivityMultipliers[activityLevel]
	if !ok {
		multiplier = ActivityMultipliers["sedentary"]
	}
	return bmr * multiplier
}

// CalculateMacroTargets derives personalized daily targets: BMR, TDEE,
// goal-adjusted calories, and grams via 4/4/9 cal per gram.
func CalculateMacroTargets(p Profile) nutrition.MacroTargets {
	bmr := CalculateBMR(p)
	tdee := CalculateTDEE(bmr, p.ActivityLevel)

	adjustment, ok := GoalCalorieAdjustments[p.Goal]
	if !ok {
		adjustment = 1.0
	}
	targetCalories := tdee * adjustment

	split, ok := GoalMacroSplits[p.Goal]
	if !ok {
		split = GoalMacroSplits["maintain"]
	}

	return nutrition.MacroTargets{
		Calories: math.Round(targetCalories),
		ProteinG: math.Round(targetCalories * split.Protein / nutrition.CaloriesPerGramProtein),
		CarbsG:   math.Round(targetCalories * split.Carbs / nutrition.CaloriesPerGramCarbs),
		FatG:     math.Round(targetCalories * split.Fat / nutrition.CaloriesPerGramFat),
		BMR:      math.Round(bmr),
		TDEE:     math.Round(tdee),
	}
}

// FormatTargets renders daily targets for display.
func FormatTargets(t nutrition.MacroTargets) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BMR:      %.0f kcal\n", t.BMR)
	fmt.Fprintf(&b, "TDEE:     %.0f kcal\n", t.TDEE)
	fmt.Fprintf(&b, "Target:   %.0f kcal/day\n", t.Calories)
	fmt.Fprintf(&b, "Protein:  %.0fg (%.0f kcal)\n", t.ProteinG, t.ProteinG*nutrition.CaloriesPerGramProtein)
	fmt.Fprintf(&b, "Carbs:    %.0fg (%.0f kcal)\n", t.CarbsG, t.CarbsG*nutrition.CaloriesPerGramCarbs)
	fmt.Fprintf(&b, "Fat:      %.0fg (%.0f kcal)", t.FatG, t.FatG*nutrition.CaloriesPerGramFat)
	return b.String()
}
