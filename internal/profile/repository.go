package profile

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is a database-backed repository for user profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts a profile and returns the new user ID.
func (r *Repository) Save(ctx context.Context, p *Profile) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, age, weight_kg, height_cm, sex, activity_level, goal)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Age, p.WeightKG, p.HeightCM, p.Sex, p.ActivityLevel, p.Goal)
	if err != nil {
		return 0, fmt.Errorf("failed to insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read profile id: %w", err)
	}
	p.ID = id
	return id, nil
}

// Get retrieves a profile by user ID. Returns nil when not found.
func (r *Repository) Get(ctx context.Context, id int64) (*Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, age, weight_kg, height_cm, sex, activity_level, goal,
		        created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Age, &p.WeightKG, &p.HeightCM, &p.Sex,
		&p.ActivityLevel, &p.Goal, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %d: %w", id, err)
	}
	return &p, nil
}

// Update overwrites a profile's attributes.
func (r *Repository) Update(ctx context.Context, p *Profile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, age = ?, weight_kg = ?, height_cm = ?,
		        sex = ?, activity_level = ?, goal = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Name, p.Age, p.WeightKG, p.HeightCM, p.Sex, p.ActivityLevel, p.Goal, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile %d: %w", p.ID, err)
	}
	return nil
}
