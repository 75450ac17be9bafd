package models

import "time"

// ImportTask tracks one archive import batch: the files to process,
// per-file outcomes, and an overall progress counter. It is created when
// the archive is accepted and mutated only by the import service.
type ImportTask struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"userId" db:"user_id"`

	Status          string `json:"status" db:"status"` // pending, running, completed
	ProgressPercent int    `json:"progressPercent" db:"progress_percent"`

	TotalFiles     int `json:"totalFiles" db:"total_files"`
	ProcessedFiles int `json:"processedFiles" db:"processed_files"`
	CreatedCount   int `json:"createdCount" db:"created_count"`

	// FileErrorsJSON is the per-file outcome map {filename: error message},
	// serialized as JSON. Empty object when every file succeeded.
	FileErrorsJSON string `json:"fileErrors" db:"file_errors"`
	Errored        bool   `json:"errored" db:"errored"`

	// ArchivePath is the staged archive for async processing; deleted
	// unconditionally once the task completes.
	ArchivePath string `json:"-" db:"archive_path"`

	ErrorMessage string `json:"errorMessage,omitempty" db:"error_message"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ImportTask status constants
const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
)
