package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-meal-planner/internal/planner"
	"macro-meal-planner/internal/recipe"
)

func TestBuildFromPlan(t *testing.T) {
	oats := &recipe.Recipe{
		ID:    1,
		Title: "Oatmeal",
		Ingredients: []recipe.Ingredient{
			{Name: "Oats", Quantity: 80, Unit: "g"},
			{Name: "Milk", Quantity: 250, Unit: "ml"},
		},
	}
	porridge := &recipe.Recipe{
		ID:    2,
		Title: "Rice Porridge",
		Ingredients: []recipe.Ingredient{
			{Name: "oats", Quantity: 40, Unit: "g"}, // merges case-insensitively
			{Name: "banana", Quantity: 1, Unit: ""},
		},
	}

	plan := &planner.MealPlan{
		ID:     7,
		UserID: 3,
		Entries: []planner.MealPlanEntry{
			{DayOfWeek: 0, MealType: recipe.Breakfast, RecipeID: 1, Servings: 1.0, Recipe: oats},
			{DayOfWeek: 1, MealType: recipe.Breakfast, RecipeID: 2, Servings: 2.0, Recipe: porridge},
		},
	}

	list := BuildFromPlan(plan)
	assert.Equal(t, int64(3), list.UserID)
	assert.Equal(t, int64(7), list.MealPlanID)

	// 80*1 + 40*2 = 160g oats; items are sorted by name.
	require.Len(t, list.Items, 3)
	assert.Equal(t, "banana (2)", list.Items[0])
	assert.Equal(t, "milk (250 ml)", list.Items[1])
	assert.Equal(t, "oats (160 g)", list.Items[2])
}

func TestBuildFromPlanSkipsUnhydratedEntries(t *testing.T) {
	plan := &planner.MealPlan{
		Entries: []planner.MealPlanEntry{
			{DayOfWeek: 0, MealType: recipe.Lunch, RecipeID: 9, Servings: 1.0},
		},
	}
	list := BuildFromPlan(plan)
	assert.Empty(t, list.Items)
}
