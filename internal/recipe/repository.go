package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"macro-meal-planner/internal/nutrition"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const recipeColumns = `id, title, source, source_url, servings,
	prep_time_minutes, cook_time_minutes, meal_types, cuisine,
	ingredients, instructions, created_at`

// Save inserts a recipe and its nutrition row, returning the new ID.
func (r *Repository) Save(ctx context.Context, rec *Recipe) (int64, error) {
	ingredientsJSON, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(rec.Instructions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal instructions: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (title, source, source_url, servings,
		 prep_time_minutes, cook_time_minutes, meal_types, cuisine,
		 ingredients, instructions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Source, rec.SourceURL, rec.Servings,
		rec.PrepTimeMinutes, rec.CookTimeMinutes, joinMealTypes(rec.MealTypes),
		rec.Cuisine, string(ingredientsJSON), string(instructionsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read recipe id: %w", err)
	}

	if rec.Nutrition != nil {
		n := rec.Nutrition
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recipe_nutrition
			 (recipe_id, calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, n.Calories, n.ProteinG, n.CarbsG, n.FatG, n.FiberG, n.SugarG, n.SodiumMG,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert recipe nutrition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe: %w", err)
	}
	rec.ID = id
	return id, nil
}

// Get retrieves a recipe by its ID. Returns nil when not found.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	if err := r.attachNutrition(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// All retrieves every recipe, with nutrition where available, ordered by title.
func (r *Repository) All(ctx context.Context) ([]Recipe, error) {
	return r.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY title`)
}

// ByMealType retrieves recipes tagged for the given meal slot.
func (r *Repository) ByMealType(ctx context.Context, mt MealType) ([]Recipe, error) {
	return r.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE meal_types LIKE ? ORDER BY title`,
		"%"+string(mt)+"%")
}

// Search retrieves recipes whose title contains the query, case-insensitively.
func (r *Repository) Search(ctx context.Context, query string) ([]Recipe, error) {
	return r.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE LOWER(title) LIKE ? ORDER BY title`,
		"%"+strings.ToLower(query)+"%")
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

// Delete removes a recipe by ID. Returns true if a row was deleted.
// The nutrition row goes with it via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *Repository) queryRecipes(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	for i := range recipes {
		if err := r.attachNutrition(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *Repository) attachNutrition(ctx context.Context, rec *Recipe) error {
	var n nutrition.Nutrition
	err := r.db.QueryRowContext(ctx,
		`SELECT calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg
		 FROM recipe_nutrition WHERE recipe_id = ?`, rec.ID,
	).Scan(&n.Calories, &n.ProteinG, &n.CarbsG, &n.FatG, &n.FiberG, &n.SugarG, &n.SodiumMG)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load nutrition for recipe %d: %w", rec.ID, err)
	}
	rec.Nutrition = &n
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecipe(row scannable) (*Recipe, error) {
	var rec Recipe
	var mealTypes, ingredientsJSON, instructionsJSON string
	var createdAt time.Time

	err := row.Scan(&rec.ID, &rec.Title, &rec.Source, &rec.SourceURL,
		&rec.Servings, &rec.PrepTimeMinutes, &rec.CookTimeMinutes,
		&mealTypes, &rec.Cuisine, &ingredientsJSON, &instructionsJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.MealTypes = splitMealTypes(mealTypes)
	rec.CreatedAt = createdAt
	if ingredientsJSON != "" {
		if err := json.Unmarshal([]byte(ingredientsJSON), &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
	}
	if instructionsJSON != "" {
		if err := json.Unmarshal([]byte(instructionsJSON), &rec.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
		}
	}
	return &rec, nil
}

func joinMealTypes(types []MealType) string {
	parts := make([]string, 0, len(types))
	for _, mt := range types {
		parts = append(parts, string(mt))
	}
	return strings.Join(parts, ",")
}

func splitMealTypes(s string) []MealType {
	var types []MealType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			types = append(types, MealType(part))
		}
	}
	return types
}
