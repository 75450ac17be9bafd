package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// SportRepository handles database operations for sports
type SportRepository struct {
	db *sql.DB
}

// NewSportRepository creates a new sport repository
func NewSportRepository(db *sql.DB) *SportRepository {
	return &SportRepository{db: db}
}

// GetByID retrieves a sport by ID
func (r *SportRepository) GetByID(id int64) (*models.Sport, error) {
	s := &models.Sport{}
	err := r.db.QueryRow(`
		SELECT id, label, is_pace_sport, stopped_speed_threshold
		FROM sports
		WHERE id = ?
	`, id).Scan(&s.ID, &s.Label, &s.IsPaceSport, &s.StoppedSpeedThreshold)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sport not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}
	return s, nil
}

// List retrieves all sports
func (r *SportRepository) List() ([]*models.Sport, error) {
	rows, err := r.db.Query(`
		SELECT id, label, is_pace_sport, stopped_speed_threshold
		FROM sports
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sports: %w", err)
	}
	defer rows.Close()

	var sports []*models.Sport
	for rows.Next() {
		s := &models.Sport{}
		if err := rows.Scan(&s.ID, &s.Label, &s.IsPaceSport, &s.StoppedSpeedThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}
