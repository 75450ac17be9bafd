package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// ImportTaskRepository handles database operations for archive import tasks
type ImportTaskRepository struct {
	db *sql.DB
}

// NewImportTaskRepository creates a new import task repository
func NewImportTaskRepository(db *sql.DB) *ImportTaskRepository {
	return &ImportTaskRepository{db: db}
}

// Create creates a new import task
func (r *ImportTaskRepository) Create(task *models.ImportTask) error {
	res, err := r.db.Exec(`
		INSERT INTO import_tasks (
			user_id, status, progress_percent, total_files, processed_files,
			created_count, file_errors, errored, archive_path, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.UserID, task.Status, task.ProgressPercent, task.TotalFiles, task.ProcessedFiles,
		task.CreatedCount, task.FileErrorsJSON, task.Errored, task.ArchivePath, task.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create import task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	return nil
}

// GetByID retrieves an import task by ID
func (r *ImportTaskRepository) GetByID(id int64) (*models.ImportTask, error) {
	task := &models.ImportTask{}
	err := r.db.QueryRow(`
		SELECT id, user_id, status, progress_percent, total_files, processed_files,
			   created_count, file_errors, errored, archive_path, error_message,
			   created_at, updated_at
		FROM import_tasks
		WHERE id = ?
	`, id).Scan(
		&task.ID, &task.UserID, &task.Status, &task.ProgressPercent, &task.TotalFiles,
		&task.ProcessedFiles, &task.CreatedCount, &task.FileErrorsJSON, &task.Errored,
		&task.ArchivePath, &task.ErrorMessage, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import task not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import task: %w", err)
	}
	return task, nil
}

// MarkAsRunning marks a task as running
func (r *ImportTaskRepository) MarkAsRunning(id int64) error {
	_, err := r.db.Exec(`
		UPDATE import_tasks
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, models.ImportStatusRunning, id)
	if err != nil {
		return fmt.Errorf("failed to mark import task as running: %w", err)
	}
	return nil
}

// UpdateProgress updates the progress counters of a running task
func (r *ImportTaskRepository) UpdateProgress(id int64, processed, created, percent int) error {
	_, err := r.db.Exec(`
		UPDATE import_tasks
		SET processed_files = ?, created_count = ?, progress_percent = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, processed, created, percent, id)
	if err != nil {
		return fmt.Errorf("failed to update import task progress: %w", err)
	}
	return nil
}

// MarkAsCompleted records the terminal state of a finished task
func (r *ImportTaskRepository) MarkAsCompleted(task *models.ImportTask) error {
	_, err := r.db.Exec(`
		UPDATE import_tasks
		SET status = ?, progress_percent = 100, processed_files = ?, created_count = ?,
		    file_errors = ?, errored = ?, error_message = ?, archive_path = '',
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		models.ImportStatusCompleted, task.ProcessedFiles, task.CreatedCount,
		task.FileErrorsJSON, task.Errored, task.ErrorMessage, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark import task as completed: %w", err)
	}
	return nil
}
