package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jengzang/workouts-backend-go/internal/config"
	"github.com/jengzang/workouts-backend-go/internal/models"
	"github.com/jengzang/workouts-backend-go/internal/parser"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/internal/storage"
)

// Runner schedules the background half of an async import. The default
// runner starts a goroutine; tests substitute an inline one.
type Runner interface {
	Run(task func())
}

// GoRunner runs tasks on their own goroutine.
type GoRunner struct{}

func (GoRunner) Run(task func()) { go task() }

// ImportService processes zip archives of workout files. Small archives
// are imported inline; larger ones are staged to disk and processed by a
// background task whose progress is polled through the task row.
type ImportService struct {
	workouts  *WorkoutService
	tasks     *repository.ImportTaskRepository
	equipment *repository.EquipmentRepository
	store     *storage.Store
	runner    Runner
	cfg       *config.Config
}

// NewImportService creates a new import service.
func NewImportService(
	workouts *WorkoutService,
	tasks *repository.ImportTaskRepository,
	equipment *repository.EquipmentRepository,
	store *storage.Store,
	runner Runner,
	cfg *config.Config,
) *ImportService {
	return &ImportService{
		workouts:  workouts,
		tasks:     tasks,
		equipment: equipment,
		store:     store,
		runner:    runner,
		cfg:       cfg,
	}
}

// ImportOptions carries the batch-wide settings applied to every file in
// the archive.
type ImportOptions struct {
	UserID      int64
	SportID     int64
	EquipmentID *int64
	StopEvents  parser.StopEventPolicy
	Elevation   ElevationSource
}

// ImportResult is the outcome of an archive import request. For a sync
// import the task is already completed; for an async one it is pending
// and the caller polls GetTask.
type ImportResult struct {
	Task  *models.ImportTask
	Async bool
}

// ImportArchive validates the uploaded zip and either processes it inline
// or stages it for background processing, depending on how many workout
// files it holds.
func (s *ImportService) ImportArchive(ctx context.Context, archiveName string, data []byte, o ImportOptions) (*ImportResult, error) {
	if int64(len(data)) > s.cfg.MaxArchiveSize {
		return nil, &ArchiveError{Reason: fmt.Sprintf("archive exceeds %d bytes", s.cfg.MaxArchiveSize)}
	}

	entries, err := s.inspectArchive(data)
	if err != nil {
		return nil, err
	}

	if err := s.resolveEquipment(o.UserID, o.EquipmentID); err != nil {
		return nil, err
	}

	task := &models.ImportTask{
		UserID:         o.UserID,
		Status:         models.ImportStatusPending,
		TotalFiles:     len(entries),
		FileErrorsJSON: "{}",
	}

	if len(entries) <= s.cfg.SyncImportLimit {
		if err := s.tasks.Create(task); err != nil {
			return nil, err
		}
		s.process(ctx, task, entries, o)
		return &ImportResult{Task: task, Async: false}, nil
	}

	staged, err := s.store.StageArchive(o.UserID, archiveName, data)
	if err != nil {
		return nil, err
	}
	task.ArchivePath = staged
	if err := s.tasks.Create(task); err != nil {
		s.store.Remove(staged)
		return nil, err
	}

	s.runner.Run(func() {
		s.runStaged(task.ID, o)
	})
	return &ImportResult{Task: task, Async: true}, nil
}

// GetTask retrieves an import task, scoped to its owner.
func (s *ImportService) GetTask(userID, taskID int64) (*models.ImportTask, error) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, fmt.Errorf("import task not found: %d", taskID)
	}
	return task, nil
}

// inspectArchive opens the zip and returns the workout file entries in a
// stable order. Directories and entries without a workout extension
// (exporter metadata, readme files, nested zips) are skipped. An
// oversized entry, too many workout files, or none at all rejects the
// whole batch.
func (s *ImportService) inspectArchive(data []byte) ([]*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ArchiveError{Reason: "not a valid zip archive"}
	}

	var entries []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext == ".zip" || !s.allowedExtension(ext) {
			continue
		}
		if int64(f.UncompressedSize64) > s.cfg.MaxFileSize {
			return nil, &ArchiveError{Reason: fmt.Sprintf("file too large in archive: %s", f.Name)}
		}
		entries = append(entries, f)
	}

	if len(entries) == 0 {
		return nil, &ArchiveError{Reason: "archive contains no workout files"}
	}
	if len(entries) > s.cfg.MaxArchiveFiles {
		return nil, &ArchiveError{Reason: fmt.Sprintf("archive holds more than %d files", s.cfg.MaxArchiveFiles)}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *ImportService) allowedExtension(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// resolveEquipment checks the equipment reference once, before any file
// is touched. A missing or foreign row fails the whole import.
func (s *ImportService) resolveEquipment(userID int64, equipmentID *int64) error {
	if equipmentID == nil {
		return nil
	}
	eq, err := s.equipment.GetByID(userID, *equipmentID)
	if err != nil {
		return err
	}
	if eq == nil {
		return &EquipmentError{ID: *equipmentID}
	}
	return nil
}

// runStaged is the background task body: re-read the staged archive,
// process it, and delete the staged copy no matter the outcome.
func (s *ImportService) runStaged(taskID int64, o ImportOptions) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		log.Printf("import task %d: %v", taskID, err)
		return
	}
	defer s.store.Remove(task.ArchivePath)

	if err := s.tasks.MarkAsRunning(task.ID); err != nil {
		log.Printf("import task %d: %v", task.ID, err)
		return
	}

	data, err := os.ReadFile(task.ArchivePath)
	if err != nil {
		task.Errored = true
		task.ErrorMessage = "staged archive is gone"
		if err := s.tasks.MarkAsCompleted(task); err != nil {
			log.Printf("import task %d: %v", task.ID, err)
		}
		return
	}

	entries, err := s.inspectArchive(data)
	if err != nil {
		task.Errored = true
		task.ErrorMessage = err.Error()
		if err := s.tasks.MarkAsCompleted(task); err != nil {
			log.Printf("import task %d: %v", task.ID, err)
		}
		return
	}

	s.process(context.Background(), task, entries, o)
}

// process imports each entry in order, one at a time. A failed file is
// recorded in the outcome map and never stops the rest of the batch.
func (s *ImportService) process(ctx context.Context, task *models.ImportTask, entries []*zip.File, o ImportOptions) {
	fileErrors := map[string]string{}
	created := 0

	for i, entry := range entries {
		if err := s.importEntry(ctx, entry, o); err != nil {
			fileErrors[entry.Name] = err.Error()
		} else {
			created++
		}

		processed := i + 1
		percent := processed * 100 / len(entries)
		if err := s.tasks.UpdateProgress(task.ID, processed, created, percent); err != nil {
			log.Printf("import task %d: %v", task.ID, err)
		}
	}

	task.ProcessedFiles = len(entries)
	task.CreatedCount = created
	task.Errored = len(fileErrors) > 0
	task.FileErrorsJSON = encodeFileErrors(fileErrors)
	if err := s.tasks.MarkAsCompleted(task); err != nil {
		log.Printf("import task %d: %v", task.ID, err)
	}
	task.Status = models.ImportStatusCompleted
	task.ProgressPercent = 100
}

func (s *ImportService) importEntry(ctx context.Context, entry *zip.File, o ImportOptions) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry: %w", err)
	}
	defer rc.Close()

	contents, err := io.ReadAll(io.LimitReader(rc, s.cfg.MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read archive entry: %w", err)
	}
	if int64(len(contents)) > s.cfg.MaxFileSize {
		return fmt.Errorf("file exceeds %d bytes", s.cfg.MaxFileSize)
	}

	_, err = s.workouts.CreateFromFile(ctx, contents, CreateOptions{
		UserID:      o.UserID,
		SportID:     o.SportID,
		Filename:    filepath.Base(entry.Name),
		EquipmentID: o.EquipmentID,
		StopEvents:  o.StopEvents,
		Elevation:   o.Elevation,
	})
	return err
}

func encodeFileErrors(m map[string]string) string {
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
