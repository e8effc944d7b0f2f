// Package shopping builds and stores consolidated shopping lists for
// generated meal plans.
package shopping

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"macro-meal-planner/internal/planner"
)

// ShoppingList is the consolidated ingredient list for one meal plan.
type ShoppingList struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MealPlanID int64     `json:"meal_plan_id"`
	Items      []string  `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// BuildFromPlan aggregates the ingredients of every entry in the plan,
// scaled by servings, merging quantities for identical name/unit pairs.
// Entries must have their Recipe populated.
func BuildFromPlan(plan *planner.MealPlan) ShoppingList {
	type key struct {
		name string
		unit string
	}
	quantities := make(map[key]float64)
	var order []key

	for _, e := range plan.Entries {
		if e.Recipe == nil {
			continue
		}
		for _, ing := range e.Recipe.Ingredients {
			k := key{name: strings.ToLower(ing.Name), unit: ing.Unit}
			if _, seen := quantities[k]; !seen {
				order = append(order, k)
			}
			quantities[k] += ing.Quantity * e.Servings
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].name < order[j].name })

	items := make([]string, 0, len(order))
	for _, k := range order {
		q := quantities[k]
		if k.unit == "" {
			items = append(items, fmt.Sprintf("%s (%.2g)", k.name, q))
		} else {
			items = append(items, fmt.Sprintf("%s (%.2g %s)", k.name, q, k.unit))
		}
	}

	return ShoppingList{
		UserID:     plan.UserID,
		MealPlanID: plan.ID,
		Items:      items,
	}
}
