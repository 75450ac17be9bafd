package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveTrackFile(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.SaveTrackFile(7, "abc-123", []byte("<gpx/>"))
	if err != nil {
		t.Fatalf("SaveTrackFile() error: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("7", "workouts", "abc-123.gpx")) {
		t.Errorf("path = %q, want per-user workouts layout", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<gpx/>" {
		t.Errorf("contents = %q", data)
	}
}

func TestStore_StageArchiveConfinesClientNames(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	archivesDir := filepath.Join(root, "1", "archives")

	t.Run("traversal name stays inside the user directory", func(t *testing.T) {
		path, err := store.StageArchive(1, "../../../escaped.zip", []byte("zipbytes"))
		if err != nil {
			t.Fatalf("StageArchive() error: %v", err)
		}
		if filepath.Dir(path) != archivesDir {
			t.Fatalf("path = %q, want it under %q", path, archivesDir)
		}
		if filepath.Base(path) != "escaped.zip" {
			t.Errorf("staged name = %q, want the base name only", filepath.Base(path))
		}
		if _, err := os.Stat(filepath.Join(archivesDir, "escaped.zip")); err != nil {
			t.Errorf("staged file missing: %v", err)
		}
	})

	t.Run("names with no base component are rejected", func(t *testing.T) {
		for _, name := range []string{"", ".", "..", "a/.."} {
			if _, err := store.StageArchive(1, name, []byte("x")); err == nil {
				t.Errorf("StageArchive(%q) accepted an invalid name", name)
			}
		}
	})
}

func TestStore_RemoveMissingIsNoError(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Remove(filepath.Join(t.TempDir(), "nope.gpx")); err != nil {
		t.Errorf("Remove(missing) error: %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Errorf("Remove(empty) error: %v", err)
	}
}

func TestGuard(t *testing.T) {
	t.Run("uncommitted guard removes its files", func(t *testing.T) {
		store := NewStore(t.TempDir())
		path, err := store.SaveTrackFile(1, "rollback", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		g := store.NewGuard()
		g.Add(path)
		g.Cleanup()

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("file should be gone after cleanup")
		}
	})

	t.Run("committed guard keeps its files", func(t *testing.T) {
		store := NewStore(t.TempDir())
		path, err := store.SaveTrackFile(1, "keep", []byte("x"))
		if err != nil {
			t.Fatal(err)
		}

		g := store.NewGuard()
		g.Add(path)
		g.Commit()
		g.Cleanup()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("file should survive a committed guard: %v", err)
		}
	})

	t.Run("guards are scoped per activity", func(t *testing.T) {
		store := NewStore(t.TempDir())
		kept, _ := store.SaveTrackFile(1, "first", []byte("x"))
		dropped, _ := store.SaveTrackFile(1, "second", []byte("x"))

		g1 := store.NewGuard()
		g1.Add(kept)
		g1.Commit()
		g1.Cleanup()

		g2 := store.NewGuard()
		g2.Add(dropped)
		g2.Cleanup()

		if _, err := os.Stat(kept); err != nil {
			t.Error("committed sibling lost its file")
		}
		if _, err := os.Stat(dropped); !os.IsNotExist(err) {
			t.Error("failed sibling kept its file")
		}
	})
}
