// Package storage manages the per-user upload directories: the canonical
// track file written for each workout, the rendered map image, and the
// staged archives of async imports. Per-user directories keep concurrent
// imports for different users from contending on the same paths.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// StorageError indicates a write failure for a track file or map image.
// The whole activity fails and its partial writes are cleaned up.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store writes workout artifacts under a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) userDir(userID int64, sub string) string {
	return filepath.Join(s.root, strconv.FormatInt(userID, 10), sub)
}

// SaveTrackFile writes the canonical track file for a workout and
// returns its path.
func (s *Store) SaveTrackFile(userID int64, workoutUUID string, data []byte) (string, error) {
	dir := s.userDir(userID, "workouts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	path := filepath.Join(dir, workoutUUID+".gpx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// SaveMapImage writes the rendered map image named by its content hash.
func (s *Store) SaveMapImage(userID int64, mapID string, data []byte) (string, error) {
	dir := s.userDir(userID, "maps")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	path := filepath.Join(dir, mapID+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// StageArchive persists archive bytes to durable temporary storage for
// async import processing. The name comes from the client, so only its
// base component is used; a name that still resolves outside the user
// directory is rejected.
func (s *Store) StageArchive(userID int64, name string, data []byte) (string, error) {
	dir := s.userDir(userID, "archives")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", &StorageError{Op: "stage", Path: name, Err: fmt.Errorf("invalid archive name")}
	}
	path := filepath.Join(dir, base)
	if filepath.Dir(path) != dir {
		return "", &StorageError{Op: "stage", Path: name, Err: fmt.Errorf("invalid archive name")}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", &StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Remove deletes a stored file, ignoring already-missing paths.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Guard scopes the files written for one activity: register each written
// path, Commit on full success, and any non-committed guard releases its
// files on Cleanup. Sibling activities in the same batch are unaffected.
type Guard struct {
	store     *Store
	paths     []string
	committed bool
}

// NewGuard returns an empty guard bound to the store.
func (s *Store) NewGuard() *Guard {
	return &Guard{store: s}
}

// Add registers a path written for the guarded activity.
func (g *Guard) Add(path string) {
	g.paths = append(g.paths, path)
}

// Commit marks the activity fully created; its files are kept.
func (g *Guard) Commit() {
	g.committed = true
}

// Cleanup deletes all registered files unless the guard was committed.
func (g *Guard) Cleanup() {
	if g.committed {
		return
	}
	for _, p := range g.paths {
		_ = g.store.Remove(p)
	}
}
