// Package recipe holds the recipe model and its sqlite-backed repository.
package recipe

import (
	"time"

	"macro-meal-planner/internal/nutrition"
)

// MealType tags a recipe as suitable for a meal slot.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the slots of a day in planning order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// ValidMealType reports whether s names one of the three meal slots.
func ValidMealType(s string) bool {
	switch MealType(s) {
	case Breakfast, Lunch, Dinner:
		return true
	}
	return false
}

// Ingredient is a single recipe ingredient.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Recipe is a complete recipe with metadata and per-serving nutrition.
// Nutrition is nil when no nutritional data is known; such recipes are
// never selectable by the planner.
type Recipe struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	Source          string               `json:"source"` // e.g. "seed", "import", "user"
	SourceURL       string               `json:"source_url,omitempty"`
	Servings        int                  `json:"servings"`
	PrepTimeMinutes int                  `json:"prep_time_minutes"`
	CookTimeMinutes int                  `json:"cook_time_minutes"`
	MealTypes       []MealType           `json:"meal_types"`
	Cuisine         string               `json:"cuisine,omitempty"`
	Ingredients     []Ingredient         `json:"ingredients,omitempty"`
	Instructions    []string             `json:"instructions,omitempty"`
	Nutrition       *nutrition.Nutrition `json:"nutrition,omitempty"`
	CreatedAt       time.Time            `json:"created_at,omitempty"`
}

// HasMealType reports whether the recipe is tagged for the given slot.
func (r Recipe) HasMealType(mt MealType) bool {
	for _, t := range r.MealTypes {
		if t == mt {
			return true
		}
	}
	return false
}
