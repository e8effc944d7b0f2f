package planner

import (
	"fmt"
	"strings"
	"time"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// DayNames maps day_of_week (0 = Monday) to a display name.
var DayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MealPlanEntry is a single slot of a weekly plan.
type MealPlanEntry struct {
	ID         int64           `json:"id,omitempty"`
	MealPlanID int64           `json:"meal_plan_id,omitempty"`
	DayOfWeek  int             `json:"day_of_week"` // 0 = Monday .. 6 = Sunday
	MealType   recipe.MealType `json:"meal_type"`
	RecipeID   int64           `json:"recipe_id"`
	Servings   float64         `json:"servings"`
	Recipe     *recipe.Recipe  `json:"recipe,omitempty"` // Populated on load
}

// MealPlan is a full weekly meal plan. At most one entry exists per
// (day, meal type) pair.
type MealPlan struct {
	ID            int64           `json:"id,omitempty"`
	UserID        int64           `json:"user_id"`
	WeekStartDate time.Time       `json:"week_start_date"`
	Entries       []MealPlanEntry `json:"entries"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// Entry returns the entry for the given slot, or nil when unfilled.
func (p *MealPlan) Entry(day int, mt recipe.MealType) *MealPlanEntry {
	for i := range p.Entries {
		if p.Entries[i].DayOfWeek == day && p.Entries[i].MealType == mt {
			return &p.Entries[i]
		}
	}
	return nil
}

// RecipeIDs returns the set of recipe ids referenced anywhere in the plan.
func (p *MealPlan) RecipeIDs() map[int64]bool {
	ids := make(map[int64]bool, len(p.Entries))
	for _, e := range p.Entries {
		ids[e.RecipeID] = true
	}
	return ids
}

// WeekStart returns the Monday of the week containing t, at midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday-indexed
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// NextMonday returns the Monday strictly after t.
func NextMonday(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// FormatMealPlan renders a plan for terminal or chat display. Entries
// must have their Recipe populated for nutrition lines to appear.
func FormatMealPlan(p *MealPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meal Plan for week of %s\n", p.WeekStartDate.Format("2006-01-02"))
	b.WriteString(strings.Repeat("=", 50))

	for day := 0; day < 7; day++ {
		var dayEntries []MealPlanEntry
		for _, e := range p.Entries {
			if e.DayOfWeek == day {
				dayEntries = append(dayEntries, e)
			}
		}
		if len(dayEntries) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n\n%s:\n", DayNames[day])
		b.WriteString(strings.Repeat("-", 30))

		dayTotal := nutrition.Zero()
		hasNutrition := false
		for _, mt := range recipe.MealTypes {
			for _, e := range dayEntries {
				if e.MealType != mt {
					continue
				}
				name := fmt.Sprintf("Recipe #%d", e.RecipeID)
				if e.Recipe != nil {
					name = e.Recipe.Title
				}
				servings := ""
				if e.Servings != 1.0 {
					servings = fmt.Sprintf(" (%.2g servings)", e.Servings)
				}
				fmt.Fprintf(&b, "\n  %-10s %s%s", title(string(e.MealType)), name, servings)

				if e.Recipe != nil && e.Recipe.Nutrition != nil {
					n := e.Recipe.Nutrition.Scaled(e.Servings)
					fmt.Fprintf(&b, "\n             %.0f cal | P:%.0fg C:%.0fg F:%.0fg",
						n.Calories, n.ProteinG, n.CarbsG, n.FatG)
					dayTotal = dayTotal.Add(n)
					hasNutrition = true
				}
			}
		}

		if hasNutrition {
			fmt.Fprintf(&b, "\n  %-10s %.0f cal | P:%.0fg C:%.0fg F:%.0fg",
				"Total", dayTotal.Calories, dayTotal.ProteinG, dayTotal.CarbsG, dayTotal.FatG)
		}
	}

	return b.String()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
