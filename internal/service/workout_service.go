package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jengzang/workouts-backend-go/internal/config"
	"github.com/jengzang/workouts-backend-go/internal/elevation"
	"github.com/jengzang/workouts-backend-go/internal/mapimage"
	"github.com/jengzang/workouts-backend-go/internal/models"
	"github.com/jengzang/workouts-backend-go/internal/parser"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/internal/stats"
	"github.com/jengzang/workouts-backend-go/internal/storage"
	"github.com/jengzang/workouts-backend-go/internal/weather"
)

// ElevationSource selects where elevation values come from when
// recomputing an existing workout.
type ElevationSource string

const (
	// ElevationFromFile keeps whatever the uploaded file carried.
	ElevationFromFile ElevationSource = "file"
	// ElevationFromProvider fills missing elevations through the
	// configured lookup service.
	ElevationFromProvider ElevationSource = "provider"
)

// WorkoutService drives the full assembly of one workout: normalize the
// raw file, run the statistics engine, resolve titles, call the weather
// and map collaborators, and persist the result.
type WorkoutService struct {
	workouts  *repository.WorkoutRepository
	sports    *repository.SportRepository
	store     *storage.Store
	weather   weather.Provider
	elevation elevation.Provider
	renderer  mapimage.Renderer
	cfg       *config.Config
}

// NewWorkoutService creates a new workout service. Weather and elevation
// providers may be nil when the capability is not configured.
func NewWorkoutService(
	workouts *repository.WorkoutRepository,
	sports *repository.SportRepository,
	store *storage.Store,
	weatherProvider weather.Provider,
	elevationProvider elevation.Provider,
	renderer mapimage.Renderer,
	cfg *config.Config,
) *WorkoutService {
	return &WorkoutService{
		workouts:  workouts,
		sports:    sports,
		store:     store,
		weather:   weatherProvider,
		elevation: elevationProvider,
		renderer:  renderer,
		cfg:       cfg,
	}
}

// CreateOptions carries the per-upload settings of one workout file.
type CreateOptions struct {
	UserID      int64
	SportID     int64
	Filename    string
	Title       string
	Description string
	Notes       string
	EquipmentID *int64
	StopEvents  parser.StopEventPolicy
	Elevation   ElevationSource
}

// CreateFromFile builds and persists one workout from raw file bytes.
func (s *WorkoutService) CreateFromFile(ctx context.Context, data []byte, o CreateOptions) (*models.Workout, error) {
	normalizer, err := parser.ForExtension(filepath.Ext(o.Filename))
	if err != nil {
		return nil, err
	}

	track, err := normalizer.Normalize(data, parser.Options{StopEvents: o.StopEvents})
	if err != nil {
		return nil, err
	}

	sport, err := s.sports.GetByID(o.SportID)
	if err != nil {
		return nil, err
	}

	s.enrichElevation(ctx, track, o.Elevation)

	act, segMetrics := s.computeStats(track, sport)
	if err := stats.CheckLimits(act, s.limits()); err != nil {
		return nil, err
	}

	w := s.assembleWorkout(track, act, sport, o)
	segments := assembleSegments(segMetrics)

	guard := s.store.NewGuard()
	defer guard.Cleanup()

	if err := s.writeArtifacts(w, track, guard); err != nil {
		return nil, err
	}

	s.lookupWeather(ctx, w, track)

	if err := s.workouts.Create(w, segments); err != nil {
		return nil, err
	}

	guard.Commit()
	return w, nil
}

// Refresh re-parses the stored track file of an existing workout and
// recomputes every segment's statistics, honoring the elevation source
// selector. Metrics fully overwrite the prior values.
func (s *WorkoutService) Refresh(ctx context.Context, userID int64, workoutUUID string, source ElevationSource) (*models.Workout, error) {
	w, err := s.workouts.GetByUUID(userID, workoutUUID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(w.TrackFilePath)
	if err != nil {
		return nil, &storage.StorageError{Op: "read", Path: w.TrackFilePath, Err: err}
	}

	track, err := (&parser.GpxNormalizer{}).Normalize(data, parser.Options{})
	if err != nil {
		return nil, err
	}

	sport, err := s.sports.GetByID(w.SportID)
	if err != nil {
		return nil, err
	}

	s.enrichElevation(ctx, track, source)

	act, segMetrics := s.computeStats(track, sport)
	if err := stats.CheckLimits(act, s.limits()); err != nil {
		return nil, err
	}

	applyMetrics(w, act)
	if err := s.workouts.Update(w, assembleSegments(segMetrics)); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkoutService) computeStats(track *models.Track, sport *models.Sport) (models.ActivityMetrics, []models.SegmentMetrics) {
	threshold := sport.StoppedSpeedThreshold
	if threshold <= 0 {
		threshold = s.cfg.DefaultStoppedSpeedThreshold
	}
	sampling := stats.SpeedRaw
	if s.cfg.SmoothSpeed {
		sampling = stats.SpeedSmoothed
	}
	return stats.ActivityStats(track, stats.Options{
		StoppedSpeedThreshold: threshold,
		IsPaceSport:           sport.IsPaceSport,
		Sampling:              sampling,
	})
}

func (s *WorkoutService) limits() stats.Limits {
	return stats.Limits{
		MaxDistanceKm: s.cfg.MaxWorkoutDistanceKm,
		MaxDuration:   s.cfg.MaxWorkoutDuration,
		MaxAscent:     s.cfg.MaxWorkoutAscent,
		MaxSpeed:      s.cfg.MaxWorkoutSpeed,
		MaxElevation:  s.cfg.MaxElevation,
	}
}

// enrichElevation fills missing elevations through the configured
// provider. It only runs when the file carried no elevation at all, and
// the caller did not pin the source to the file values. Failures are
// logged and swallowed; enrichment is best effort.
func (s *WorkoutService) enrichElevation(ctx context.Context, track *models.Track, source ElevationSource) {
	if s.elevation == nil || source == ElevationFromFile || track.HasElevation() {
		return
	}
	for si := range track.Segments {
		seg := &track.Segments[si]
		if seg.IsEmpty() {
			continue
		}
		elevations, err := s.elevation.Fill(ctx, seg.Points)
		if err != nil {
			log.Printf("Elevation enrichment failed for segment %d: %v", si, err)
			continue
		}
		for pi := range seg.Points {
			ele := elevations[pi]
			seg.Points[pi].Elevation = &ele
		}
	}
}

// assembleWorkout builds the persisted record. Title resolution order:
// explicit user title, then the title embedded in the file, then a
// generated "sport - timestamp" fallback.
func (s *WorkoutService) assembleWorkout(track *models.Track, act models.ActivityMetrics, sport *models.Sport, o CreateOptions) *models.Workout {
	title := o.Title
	if title == "" {
		title = track.Name
	}
	if title == "" {
		title = fmt.Sprintf("%s - %s", sport.Label, act.StartTime.Format("2006-01-02 15:04:05"))
	}

	description := o.Description
	if description == "" {
		description = track.Description
	}

	w := &models.Workout{
		UUID:        uuid.NewString(),
		UserID:      o.UserID,
		SportID:     sport.ID,
		Title:       truncate(title, s.cfg.MaxTitleLength),
		Description: truncate(description, s.cfg.MaxDescriptionLength),
		Notes:       truncate(o.Notes, s.cfg.MaxNotesLength),
		Source:      track.Source,
		EquipmentID: o.EquipmentID,
	}
	applyMetrics(w, act)
	return w
}

func applyMetrics(w *models.Workout, act models.ActivityMetrics) {
	w.DistanceKm = act.DistanceKm
	w.Duration = int64(act.Duration.Seconds())
	w.MovingTime = int64(act.MovingTime.Seconds())
	w.StoppedTime = int64(act.StoppedTime.Seconds())
	w.AveSpeed = act.AveSpeed
	w.MaxSpeed = act.MaxSpeed
	w.Ascent = act.Ascent
	w.Descent = act.Descent
	w.MaxAlt = act.MaxAlt
	w.MinAlt = act.MinAlt
	w.AvePace = act.AvePace
	w.BestPace = act.BestPace
	w.AveCadence = act.AveCadence
	w.MaxCadence = act.MaxCadence
	w.AveHr = act.AveHr
	w.MaxHr = act.MaxHr
	w.AvePower = act.AvePower
	w.MaxPower = act.MaxPower
	if act.Bounds != nil {
		w.MinLat = &act.Bounds.MinLatitude
		w.MaxLat = &act.Bounds.MaxLatitude
		w.MinLon = &act.Bounds.MinLongitude
		w.MaxLon = &act.Bounds.MaxLongitude
	}
	w.StartTime = act.StartTime
	w.EndTime = act.EndTime
}

func assembleSegments(segMetrics []models.SegmentMetrics) []models.WorkoutSegment {
	segments := make([]models.WorkoutSegment, 0, len(segMetrics))
	for i, sm := range segMetrics {
		segments = append(segments, models.WorkoutSegment{
			SegmentNo:   i,
			DistanceKm:  sm.DistanceKm,
			Duration:    int64(sm.Duration.Seconds()),
			MovingTime:  int64(sm.MovingTime.Seconds()),
			StoppedTime: int64(sm.StoppedTime.Seconds()),
			AveSpeed:    sm.AveSpeed,
			MaxSpeed:    sm.MaxSpeed,
			Ascent:      sm.Ascent,
			Descent:     sm.Descent,
			MaxAlt:      sm.MaxAlt,
			MinAlt:      sm.MinAlt,
			AvePace:     sm.AvePace,
			BestPace:    sm.BestPace,
			AveCadence:  sm.AveCadence,
			MaxCadence:  sm.MaxCadence,
			AveHr:       sm.AveHr,
			MaxHr:       sm.MaxHr,
			AvePower:    sm.AvePower,
			MaxPower:    sm.MaxPower,
		})
	}
	return segments
}

// writeArtifacts writes the canonical track file and the rendered map
// image for this workout. Both paths are registered with the guard so a
// later failure rolls them back.
func (s *WorkoutService) writeArtifacts(w *models.Workout, track *models.Track, guard *storage.Guard) error {
	encoded, err := parser.EncodeGpx(track)
	if err != nil {
		return fmt.Errorf("encode track file: %w", err)
	}
	trackPath, err := s.store.SaveTrackFile(w.UserID, w.UUID, encoded)
	if err != nil {
		return err
	}
	guard.Add(trackPath)
	w.TrackFilePath = trackPath

	var routePoints []models.Point
	for _, seg := range track.Segments {
		routePoints = append(routePoints, seg.Points...)
	}
	imageBytes, err := s.renderer.Render(routePoints)
	if err != nil {
		// Map rendering is fatal for this activity, unlike the
		// best-effort collaborators.
		return fmt.Errorf("map rendering failed: %w", err)
	}
	mapID := mapimage.MapID(imageBytes)
	mapPath, err := s.store.SaveMapImage(w.UserID, mapID, imageBytes)
	if err != nil {
		return err
	}
	guard.Add(mapPath)
	w.MapID = mapID

	return nil
}

// lookupWeather fetches weather for the first and last timestamped
// points. Never called when either endpoint lacks a timestamp; any
// failure is logged and treated as no data.
func (s *WorkoutService) lookupWeather(ctx context.Context, w *models.Workout, track *models.Track) {
	if s.weather == nil {
		return
	}
	first, last := track.FirstPoint(), track.LastPoint()
	if first == nil || last == nil || first.Time.IsZero() || last.Time.IsZero() {
		return
	}

	if snap := s.lookupOne(ctx, *first); snap != nil {
		w.WeatherStart = snap
	}
	if snap := s.lookupOne(ctx, *last); snap != nil {
		w.WeatherEnd = snap
	}
}

func (s *WorkoutService) lookupOne(ctx context.Context, p models.Point) *string {
	snap, err := s.weather.Lookup(ctx, p, p.Time)
	if err != nil {
		log.Printf("Weather lookup failed: %v", err)
		return nil
	}
	if snap == nil {
		return nil
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Weather snapshot encoding failed: %v", err)
		return nil
	}
	str := string(encoded)
	return &str
}

// GetWorkout retrieves a workout by its public UUID.
func (s *WorkoutService) GetWorkout(userID int64, workoutUUID string) (*models.Workout, error) {
	return s.workouts.GetByUUID(userID, workoutUUID)
}

// GetSegments retrieves a workout's persisted segment metrics.
func (s *WorkoutService) GetSegments(workoutID int64) ([]models.WorkoutSegment, error) {
	return s.workouts.GetSegments(workoutID)
}

// ListWorkouts retrieves a user's workouts, newest first.
func (s *WorkoutService) ListWorkouts(userID int64, limit, offset int) ([]*models.Workout, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.workouts.List(userID, limit, offset)
}

// DeleteWorkout removes a workout and its on-disk artifacts. Artifact
// removal failures are logged; the database row always wins.
func (s *WorkoutService) DeleteWorkout(userID int64, workoutUUID string) error {
	w, err := s.workouts.GetByUUID(userID, workoutUUID)
	if err != nil {
		return err
	}
	if err := s.workouts.Delete(w.ID); err != nil {
		return err
	}
	if w.TrackFilePath != "" {
		if err := s.store.Remove(w.TrackFilePath); err != nil {
			log.Printf("failed to remove track file %s: %v", w.TrackFilePath, err)
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
