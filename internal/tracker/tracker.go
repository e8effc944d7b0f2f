// Package tracker logs consumed meals and aggregates nutrition at
// daily, weekly, monthly and yearly granularity.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// MealLog is a single consumed meal.
type MealLog struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	RecipeID int64           `json:"recipe_id"`
	MealType recipe.MealType `json:"meal_type"`
	Servings float64         `json:"servings"`
	LoggedAt time.Time       `json:"logged_at"`
	Recipe   *recipe.Recipe  `json:"recipe,omitempty"` // Populated on load
}

// NutritionSummary aggregates logged nutrition over a period.
type NutritionSummary struct {
	PeriodLabel string
	Total       nutrition.Nutrition
	NumMeals    int
	NumDays     int
	Target      *nutrition.MacroTargets
}

// DailyAverage is the total divided by the number of distinct logged days.
func (s NutritionSummary) DailyAverage() nutrition.Nutrition {
	if s.NumDays == 0 {
		return nutrition.Zero()
	}
	return s.Total.Scaled(1.0 / float64(s.NumDays))
}

// Adherence is how close the daily average tracks each target, in percent.
// 100 is a perfect match; the floor is 0.
type Adherence struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// AdherencePct compares the daily average against the targets. Returns
// nil when no target is set or nothing was logged.
func (s NutritionSummary) AdherencePct() *Adherence {
	if s.Target == nil || s.NumDays == 0 {
		return nil
	}
	avg := s.DailyAverage()

	pct := func(actual, target float64) float64 {
		if target == 0 {
			return 100.0
		}
		p := 100 - math.Abs(actual-target)/target*100
		if p < 0 {
			p = 0
		}
		return math.Round(p*10) / 10
	}

	return &Adherence{
		Calories: pct(avg.Calories, s.Target.Calories),
		Protein:  pct(avg.ProteinG, s.Target.ProteinG),
		Carbs:    pct(avg.CarbsG, s.Target.CarbsG),
		Fat:      pct(avg.FatG, s.Target.FatG),
	}
}

// Store handles meal log persistence and aggregation.
type Store struct {
	db      *sql.DB
	recipes *recipe.Repository
}

// NewStore creates a Store over an existing database connection.
func NewStore(d *sql.DB, recipes *recipe.Repository) *Store {
	return &Store{db: d, recipes: recipes}
}

// LogMeal records a consumed meal and returns the log entry ID.
func (s *Store) LogMeal(ctx context.Context, userID, recipeID int64, mealType recipe.MealType, servings float64, loggedAt time.Time) (int64, error) {
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO meal_log (user_id, recipe_id, meal_type, servings, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, recipeID, string(mealType), servings, loggedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read log id: %w", err)
	}
	return id, nil
}

// Logs retrieves a user's meal logs within [start, end], inclusive by
// calendar day, with recipes hydrated.
func (s *Store) Logs(ctx context.Context, userID int64, start, end time.Time) ([]MealLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, recipe_id, meal_type, servings, logged_at
		 FROM meal_log
		 WHERE user_id = ? AND date(logged_at) >= ? AND date(logged_at) <= ?
		 ORDER BY logged_at`,
		userID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query meal logs: %w", err)
	}
	defer rows.Close()

	var logs []MealLog
	for rows.Next() {
		var l MealLog
		var mealType, loggedAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.RecipeID, &mealType, &l.Servings, &loggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal log: %w", err)
		}
		l.MealType = recipe.MealType(mealType)
		l.LoggedAt, err = time.Parse(time.RFC3339, loggedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log timestamp %q: %w", loggedAt, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal logs: %w", err)
	}

	for i := range logs {
		rec, err := s.recipes.Get(ctx, logs[i].RecipeID)
		if err != nil {
			return nil, err
		}
		logs[i].Recipe = rec
	}
	return logs, nil
}

// DailySummary aggregates one calendar day.
func (s *Store) DailySummary(ctx context.Context, userID int64, day time.Time, target *nutrition.MacroTargets) (NutritionSummary, error) {
	logs, err := s.Logs(ctx, userID, day, day)
	if err != nil {
		return NutritionSummary{}, err
	}
	numDays := 0
	if len(logs) > 0 {
		numDays = 1
	}
	return NutritionSummary{
		PeriodLabel: day.Format("2006-01-02"),
		Total:       aggregate(logs),
		NumMeals:    len(logs),
		NumDays:     numDays,
		Target:      target,
	}, nil
}

// WeeklySummary aggregates Monday through Sunday of the week containing
// weekStart.
func (s *Store) WeeklySummary(ctx context.Context, userID int64, weekStart time.Time, target *nutrition.MacroTargets) (NutritionSummary, error) {
	offset := (int(weekStart.Weekday()) + 6) % 7
	monday := weekStart.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)

	logs, err := s.Logs(ctx, userID, monday, sunday)
	if err != nil {
		return NutritionSummary{}, err
	}
	return NutritionSummary{
		PeriodLabel: "Week of " + monday.Format("2006-01-02"),
		Total:       aggregate(logs),
		NumMeals:    len(logs),
		NumDays:     countUniqueDays(logs),
		Target:      target,
	}, nil
}

// MonthlySummary aggregates a calendar month.
func (s *Store) MonthlySummary(ctx context.Context, userID int64, year int, month time.Month, target *nutrition.MacroTargets) (NutritionSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	logs, err := s.Logs(ctx, userID, start, end)
	if err != nil {
		return NutritionSummary{}, err
	}
	return NutritionSummary{
		PeriodLabel: start.Format("2006-01"),
		Total:       aggregate(logs),
		NumMeals:    len(logs),
		NumDays:     countUniqueDays(logs),
		Target:      target,
	}, nil
}

// YearlySummary aggregates a calendar year.
func (s *Store) YearlySummary(ctx context.Context, userID int64, year int, target *nutrition.MacroTargets) (NutritionSummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	logs, err := s.Logs(ctx, userID, start, end)
	if err != nil {
		return NutritionSummary{}, err
	}
	return NutritionSummary{
		PeriodLabel: fmt.Sprintf("%d", year),
		Total:       aggregate(logs),
		NumMeals:    len(logs),
		NumDays:     countUniqueDays(logs),
		Target:      target,
	}, nil
}

func aggregate(logs []MealLog) nutrition.Nutrition {
	total := nutrition.Zero()
	for _, l := range logs {
		if l.Recipe != nil && l.Recipe.Nutrition != nil {
			total = total.Add(l.Recipe.Nutrition.Scaled(l.Servings))
		}
	}
	return total
}

func countUniqueDays(logs []MealLog) int {
	days := make(map[string]bool)
	for _, l := range logs {
		days[l.LoggedAt.Format("2006-01-02")] = true
	}
	return len(days)
}

// FormatSummary renders a nutrition summary for display.
func FormatSummary(s NutritionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nutrition Summary: %s\n", s.PeriodLabel)
	b.WriteString(strings.Repeat("=", 45))
	fmt.Fprintf(&b, "\nMeals logged: %d across %d day(s)", s.NumMeals, s.NumDays)

	if s.NumDays == 0 {
		b.WriteString("\n\nNo meals logged for this period.")
		return b.String()
	}

	pcts := s.Total.MacroPercentages()
	b.WriteString("\n\nTotal:")
	fmt.Fprintf(&b, "\n  Calories: %.0f kcal", s.Total.Calories)
	fmt.Fprintf(&b, "\n  Protein:  %.0fg (%.1f%%)", s.Total.ProteinG, pcts.Protein)
	fmt.Fprintf(&b, "\n  Carbs:    %.0fg (%.1f%%)", s.Total.CarbsG, pcts.Carbs)
	fmt.Fprintf(&b, "\n  Fat:      %.0fg (%.1f%%)", s.Total.FatG, pcts.Fat)

	if s.NumDays > 1 {
		avg := s.DailyAverage()
		b.WriteString("\n\nDaily Average:")
		fmt.Fprintf(&b, "\n  Calories: %.0f kcal", avg.Calories)
		fmt.Fprintf(&b, "\n  Protein:  %.0fg", avg.ProteinG)
		fmt.Fprintf(&b, "\n  Carbs:    %.0fg", avg.CarbsG)
		fmt.Fprintf(&b, "\n  Fat:      %.0fg", avg.FatG)
	}

	if adherence := s.AdherencePct(); adherence != nil {
		b.WriteString("\n\nTarget Adherence (daily avg vs target):")
		fmt.Fprintf(&b, "\n  Calories: %.1f%%", adherence.Calories)
		fmt.Fprintf(&b, "\n  Protein:  %.1f%%", adherence.Protein)
		fmt.Fprintf(&b, "\n  Carbs:    %.1f%%", adherence.Carbs)
		fmt.Fprintf(&b, "\n  Fat:      %.1f%%", adherence.Fat)
	}

	return b.String()
}
