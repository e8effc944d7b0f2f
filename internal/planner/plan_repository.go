package planner

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"macro-meal-planner/internal/recipe"
)

// dateLayout is how week_start_date is stored, matching lexicographic
// order with chronological order for range queries.
const dateLayout = "2006-01-02"

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db      *sql.DB
	recipes *recipe.Repository
}

// NewPlanRepository creates a new PlanRepository. The recipe repository
// is used to hydrate entries on load.
func NewPlanRepository(d *sql.DB, recipes *recipe.Repository) *PlanRepository {
	return &PlanRepository{db: d, recipes: recipes}
}

// Save persists a plan and all its entries in one transaction and
// returns the plan ID.
func (r *PlanRepository) Save(ctx context.Context, plan *MealPlan) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO meal_plans (user_id, week_start_date) VALUES (?, ?)`,
		plan.UserID, plan.WeekStartDate.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal plan: %w", err)
	}
	planID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read plan id: %w", err)
	}

	for i := range plan.Entries {
		e := &plan.Entries[i]
		entryRes, err := tx.ExecContext(ctx,
			`INSERT INTO meal_plan_entries
			 (meal_plan_id, day_of_week, meal_type, recipe_id, servings)
			 VALUES (?, ?, ?, ?, ?)`,
			planID, e.DayOfWeek, string(e.MealType), e.RecipeID, e.Servings)
		if err != nil {
			return 0, fmt.Errorf("failed to insert plan entry: %w", err)
		}
		entryID, err := entryRes.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read entry id: %w", err)
		}
		e.ID = entryID
		e.MealPlanID = planID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit meal plan: %w", err)
	}
	plan.ID = planID
	return planID, nil
}

// Load retrieves a user's plan for a given week, with entries hydrated.
// Returns nil when no plan exists.
func (r *PlanRepository) Load(ctx context.Context, userID int64, weekStart time.Time) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start_date, created_at
		 FROM meal_plans WHERE user_id = ? AND week_start_date = ?`,
		userID, weekStart.Format(dateLayout))
	return r.loadPlan(ctx, row)
}

// LoadLatest retrieves the user's most recent plan whose week starts on
// or after notBefore, with entries hydrated. Returns nil when none exists.
func (r *PlanRepository) LoadLatest(ctx context.Context, userID int64, notBefore time.Time) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start_date, created_at
		 FROM meal_plans WHERE user_id = ? AND week_start_date >= ?
		 ORDER BY week_start_date DESC LIMIT 1`,
		userID, notBefore.Format(dateLayout))
	return r.loadPlan(ctx, row)
}

// LoadByID retrieves a plan by its ID. Returns nil when not found.
func (r *PlanRepository) LoadByID(ctx context.Context, planID int64) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start_date, created_at
		 FROM meal_plans WHERE id = ?`, planID)
	return r.loadPlan(ctx, row)
}

func (r *PlanRepository) loadPlan(ctx context.Context, row *sql.Row) (*MealPlan, error) {
	var plan MealPlan
	var weekStart string
	err := row.Scan(&plan.ID, &plan.UserID, &weekStart, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	plan.WeekStartDate, err = time.Parse(dateLayout, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week start date %q: %w", weekStart, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, meal_plan_id, day_of_week, meal_type, recipe_id, servings
		 FROM meal_plan_entries WHERE meal_plan_id = ?
		 ORDER BY day_of_week, meal_type`, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e MealPlanEntry
		var mealType string
		if err := rows.Scan(&e.ID, &e.MealPlanID, &e.DayOfWeek, &mealType, &e.RecipeID, &e.Servings); err != nil {
			return nil, fmt.Errorf("failed to scan plan entry: %w", err)
		}
		e.MealType = recipe.MealType(mealType)
		plan.Entries = append(plan.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan entries: %w", err)
	}

	for i := range plan.Entries {
		rec, err := r.recipes.Get(ctx, plan.Entries[i].RecipeID)
		if err != nil {
			return nil, err
		}
		plan.Entries[i].Recipe = rec
	}

	return &plan, nil
}

// ExistsForWeek reports whether the user already has a plan for the week.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, userID int64, weekStart time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND week_start_date = ?`,
		userID, weekStart.Format(dateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check plan existence: %w", err)
	}
	return count > 0, nil
}

// UpdateEntry overwrites one entry's recipe and servings, identified by
// plan id, day and meal type.
func (r *PlanRepository) UpdateEntry(ctx context.Context, planID int64, dayOfWeek int, mealType recipe.MealType, recipeID int64, servings float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plan_entries SET recipe_id = ?, servings = ?
		 WHERE meal_plan_id = ? AND day_of_week = ? AND meal_type = ?`,
		recipeID, servings, planID, dayOfWeek, string(mealType))
	if err != nil {
		return fmt.Errorf("failed to update plan entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan %d has no entry for day %d %s", planID, dayOfWeek, mealType)
	}
	return nil
}

// RecentRecipeIDs returns the distinct recipe ids used by the user's
// plans whose week starts within [before-windowDays, before). This is
// the variety window: recipes in it are avoided for new plans.
func (r *PlanRepository) RecentRecipeIDs(ctx context.Context, userID int64, before time.Time, windowDays int) (map[int64]bool, error) {
	cutoff := before.AddDate(0, 0, -windowDays)
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT mpe.recipe_id
		 FROM meal_plan_entries mpe
		 JOIN meal_plans mp ON mpe.meal_plan_id = mp.id
		 WHERE mp.user_id = ? AND mp.week_start_date >= ? AND mp.week_start_date < ?`,
		userID, cutoff.Format(dateLayout), before.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query recently used recipes: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe ids: %w", err)
	}
	return ids, nil
}
