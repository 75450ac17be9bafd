package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// EquipmentRepository handles database operations for equipment
type EquipmentRepository struct {
	db *sql.DB
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// GetByID retrieves a piece of equipment owned by the user.
func (r *EquipmentRepository) GetByID(userID, id int64) (*models.Equipment, error) {
	e := &models.Equipment{}
	err := r.db.QueryRow(`
		SELECT id, user_id, label, is_active
		FROM equipment
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&e.ID, &e.UserID, &e.Label, &e.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return e, nil
}

// Create inserts a piece of equipment.
func (r *EquipmentRepository) Create(e *models.Equipment) error {
	res, err := r.db.Exec(`
		INSERT INTO equipment (user_id, label, is_active) VALUES (?, ?, ?)
	`, e.UserID, e.Label, e.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}
