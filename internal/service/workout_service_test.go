package service

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jengzang/workouts-backend-go/internal/config"
	"github.com/jengzang/workouts-backend-go/internal/database"
	"github.com/jengzang/workouts-backend-go/internal/models"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/internal/stats"
	"github.com/jengzang/workouts-backend-go/internal/storage"
)

// stubRenderer replaces the tile-fetching map renderer in tests.
type stubRenderer struct{}

func (stubRenderer) Render(points []models.Point) ([]byte, error) {
	return []byte("png-bytes"), nil
}

const testGpx = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="TestDevice">
  <metadata><name>Lake Loop</name></metadata>
  <trk>
    <trkseg>
      <trkpt lat="47.0000" lon="8.0000"><ele>400</ele><time>2024-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="47.0010" lon="8.0000"><ele>405</ele><time>2024-05-01T08:00:30Z</time></trkpt>
      <trkpt lat="47.0020" lon="8.0000"><ele>402</ele><time>2024-05-01T08:01:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

const testGpxNoName = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="TestDevice">
  <trk>
    <trkseg>
      <trkpt lat="47.0000" lon="8.0000"><time>2024-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="47.0010" lon="8.0000"><time>2024-05-01T08:00:30Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StorageRoot:                  t.TempDir(),
		AllowedExtensions:            []string{".gpx", ".fit", ".tcx", ".kml", ".kmz"},
		MaxFileSize:                  10 * 1024 * 1024,
		MaxArchiveSize:               100 * 1024 * 1024,
		MaxArchiveFiles:              50,
		SyncImportLimit:              10,
		DefaultStoppedSpeedThreshold: 0.28,
		MaxWorkoutDistanceKm:         5000,
		MaxWorkoutDuration:           7 * 24 * time.Hour,
		MaxWorkoutAscent:             50000,
		MaxWorkoutSpeed:              400,
		MaxElevation:                 9000,
		MaxTitleLength:               255,
		MaxDescriptionLength:         10000,
		MaxNotesLength:               500,
	}
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db       *sql.DB
	cfg      *config.Config
	store    *storage.Store
	workouts *WorkoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)
	cfg := testConfig(t)
	store := storage.NewStore(cfg.StorageRoot)
	svc := NewWorkoutService(
		repository.NewWorkoutRepository(db),
		repository.NewSportRepository(db),
		store, nil, nil, stubRenderer{}, cfg,
	)
	return &testEnv{db: db, cfg: cfg, store: store, workouts: svc}
}

func TestCreateFromFile(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
		UserID:   1,
		SportID:  1, // Cycling
		Filename: "ride.gpx",
	})
	if err != nil {
		t.Fatalf("CreateFromFile() error: %v", err)
	}

	if w.UUID == "" {
		t.Error("workout UUID missing")
	}
	if w.Title != "Lake Loop" {
		t.Errorf("title = %q, want %q (from file)", w.Title, "Lake Loop")
	}
	if w.Source != "TestDevice" {
		t.Errorf("source = %q, want %q", w.Source, "TestDevice")
	}
	if w.DistanceKm <= 0 {
		t.Errorf("distance = %f, want > 0", w.DistanceKm)
	}
	if w.Duration != 60 {
		t.Errorf("duration = %d, want 60", w.Duration)
	}
	if w.Ascent == nil || *w.Ascent != 5 {
		t.Errorf("ascent = %v, want 5", w.Ascent)
	}
	if w.MapID == "" {
		t.Error("map id missing")
	}
	if _, err := os.Stat(w.TrackFilePath); err != nil {
		t.Errorf("track file not written: %v", err)
	}

	got, err := env.workouts.GetWorkout(1, w.UUID)
	if err != nil {
		t.Fatalf("GetWorkout() error: %v", err)
	}
	if got.Title != w.Title || got.DistanceKm != w.DistanceKm {
		t.Error("persisted workout does not round-trip")
	}

	segs, err := env.workouts.GetSegments(got.ID)
	if err != nil {
		t.Fatalf("GetSegments() error: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if segs[0].DistanceKm != w.DistanceKm {
		t.Errorf("segment distance = %f, workout distance = %f", segs[0].DistanceKm, w.DistanceKm)
	}
}

func TestCreateFromFile_TitleFallback(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpxNoName), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.gpx",
	})
	if err != nil {
		t.Fatalf("CreateFromFile() error: %v", err)
	}
	if !strings.HasPrefix(w.Title, "Cycling - 2024-05-01") {
		t.Errorf("title = %q, want generated sport-timestamp fallback", w.Title)
	}

	explicit, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.gpx",
		Title:    "My Ride",
	})
	if err != nil {
		t.Fatal(err)
	}
	if explicit.Title != "My Ride" {
		t.Errorf("title = %q, explicit title must win", explicit.Title)
	}
}

func TestCreateFromFile_LimitExceededRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.MaxWorkoutDistanceKm = 0.0001

	_, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.gpx",
	})
	vle, ok := err.(*stats.ValueLimitError)
	if !ok {
		t.Fatalf("error = %v, want *ValueLimitError", err)
	}
	if vle.Metric != "distance" {
		t.Errorf("metric = %q, want distance", vle.Metric)
	}

	var count int
	if err := env.db.QueryRow("SELECT COUNT(*) FROM workouts").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("workouts = %d, want 0 after rejected creation", count)
	}
}

func TestCreateFromFile_UnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.workouts.CreateFromFile(context.Background(), []byte("x"), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.csv",
	})
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.gpx",
	})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := env.workouts.Refresh(context.Background(), 1, w.UUID, ElevationFromFile)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if refreshed.DistanceKm != w.DistanceKm {
		t.Errorf("refresh changed distance: %f != %f", refreshed.DistanceKm, w.DistanceKm)
	}
	if refreshed.Duration != w.Duration {
		t.Errorf("refresh changed duration: %d != %d", refreshed.Duration, w.Duration)
	}

	segs, err := env.workouts.GetSegments(w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 {
		t.Errorf("segments = %d, want 1 after refresh", len(segs))
	}
}

func TestDeleteWorkout(t *testing.T) {
	env := newTestEnv(t)

	w, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
		UserID:   1,
		SportID:  1,
		Filename: "ride.gpx",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.workouts.DeleteWorkout(1, w.UUID); err != nil {
		t.Fatalf("DeleteWorkout() error: %v", err)
	}
	if _, err := env.workouts.GetWorkout(1, w.UUID); err == nil {
		t.Error("workout still retrievable after delete")
	}
	if _, err := os.Stat(w.TrackFilePath); !os.IsNotExist(err) {
		t.Error("track file survived delete")
	}
}

func TestListWorkouts(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		if _, err := env.workouts.CreateFromFile(context.Background(), []byte(testGpx), CreateOptions{
			UserID:   1,
			SportID:  1,
			Filename: "ride.gpx",
		}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := env.workouts.ListWorkouts(1, 10, 0)
	if err != nil {
		t.Fatalf("ListWorkouts() error: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("workouts = %d, want 3", len(list))
	}

	other, err := env.workouts.ListWorkouts(2, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("user 2 sees %d workouts, want 0", len(other))
	}
}
