package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// WorkoutRepository handles database operations for workouts and their
// per-segment metric rows.
type WorkoutRepository struct {
	db *sql.DB
}

// NewWorkoutRepository creates a new workout repository
func NewWorkoutRepository(db *sql.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// Create inserts a workout and its segment rows in one transaction.
func (r *WorkoutRepository) Create(w *models.Workout, segments []models.WorkoutSegment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO workouts (
			uuid, user_id, sport_id, title, description, notes, source, equipment_id,
			distance_km, duration, moving_time, stopped_time, ave_speed, max_speed,
			ascent, descent, max_alt, min_alt, ave_pace, best_pace,
			ave_cadence, max_cadence, ave_hr, max_hr, ave_power, max_power,
			min_lat, max_lat, min_lon, max_lon,
			start_time, end_time, track_file_path, map_id, weather_start, weather_end
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.UUID, w.UserID, w.SportID, w.Title, w.Description, w.Notes, w.Source, w.EquipmentID,
		w.DistanceKm, w.Duration, w.MovingTime, w.StoppedTime, w.AveSpeed, w.MaxSpeed,
		w.Ascent, w.Descent, w.MaxAlt, w.MinAlt, w.AvePace, w.BestPace,
		w.AveCadence, w.MaxCadence, w.AveHr, w.MaxHr, w.AvePower, w.MaxPower,
		w.MinLat, w.MaxLat, w.MinLon, w.MaxLon,
		w.StartTime, w.EndTime, w.TrackFilePath, w.MapID, w.WeatherStart, w.WeatherEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	w.ID = id

	for i := range segments {
		seg := &segments[i]
		seg.WorkoutID = id
		_, err := tx.Exec(`
			INSERT INTO workout_segments (
				workout_id, segment_no, distance_km, duration, moving_time, stopped_time,
				ave_speed, max_speed, ascent, descent, max_alt, min_alt, ave_pace, best_pace,
				ave_cadence, max_cadence, ave_hr, max_hr, ave_power, max_power
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			seg.WorkoutID, seg.SegmentNo, seg.DistanceKm, seg.Duration, seg.MovingTime, seg.StoppedTime,
			seg.AveSpeed, seg.MaxSpeed, seg.Ascent, seg.Descent, seg.MaxAlt, seg.MinAlt, seg.AvePace, seg.BestPace,
			seg.AveCadence, seg.MaxCadence, seg.AveHr, seg.MaxHr, seg.AvePower, seg.MaxPower,
		)
		if err != nil {
			return fmt.Errorf("failed to create workout segment %d: %w", seg.SegmentNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update overwrites a workout's metric fields and replaces its segment
// rows. Used by the refresh flow; prior metric values are not preserved.
func (r *WorkoutRepository) Update(w *models.Workout, segments []models.WorkoutSegment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE workouts SET
			distance_km = ?, duration = ?, moving_time = ?, stopped_time = ?,
			ave_speed = ?, max_speed = ?, ascent = ?, descent = ?, max_alt = ?, min_alt = ?,
			ave_pace = ?, best_pace = ?, ave_cadence = ?, max_cadence = ?,
			ave_hr = ?, max_hr = ?, ave_power = ?, max_power = ?,
			min_lat = ?, max_lat = ?, min_lon = ?, max_lon = ?,
			start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		w.DistanceKm, w.Duration, w.MovingTime, w.StoppedTime,
		w.AveSpeed, w.MaxSpeed, w.Ascent, w.Descent, w.MaxAlt, w.MinAlt,
		w.AvePace, w.BestPace, w.AveCadence, w.MaxCadence,
		w.AveHr, w.MaxHr, w.AvePower, w.MaxPower,
		w.MinLat, w.MaxLat, w.MinLon, w.MaxLon,
		w.StartTime, w.EndTime, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM workout_segments WHERE workout_id = ?", w.ID); err != nil {
		return fmt.Errorf("failed to clear workout segments: %w", err)
	}
	for i := range segments {
		seg := &segments[i]
		seg.WorkoutID = w.ID
		_, err := tx.Exec(`
			INSERT INTO workout_segments (
				workout_id, segment_no, distance_km, duration, moving_time, stopped_time,
				ave_speed, max_speed, ascent, descent, max_alt, min_alt, ave_pace, best_pace,
				ave_cadence, max_cadence, ave_hr, max_hr, ave_power, max_power
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			seg.WorkoutID, seg.SegmentNo, seg.DistanceKm, seg.Duration, seg.MovingTime, seg.StoppedTime,
			seg.AveSpeed, seg.MaxSpeed, seg.Ascent, seg.Descent, seg.MaxAlt, seg.MinAlt, seg.AvePace, seg.BestPace,
			seg.AveCadence, seg.MaxCadence, seg.AveHr, seg.MaxHr, seg.AvePower, seg.MaxPower,
		)
		if err != nil {
			return fmt.Errorf("failed to insert workout segment %d: %w", seg.SegmentNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByUUID retrieves a workout by its public UUID.
func (r *WorkoutRepository) GetByUUID(userID int64, uuid string) (*models.Workout, error) {
	w := &models.Workout{}
	err := r.db.QueryRow(`
		SELECT id, uuid, user_id, sport_id, title, description, notes, source, equipment_id,
			   distance_km, duration, moving_time, stopped_time, ave_speed, max_speed,
			   ascent, descent, max_alt, min_alt, ave_pace, best_pace,
			   ave_cadence, max_cadence, ave_hr, max_hr, ave_power, max_power,
			   min_lat, max_lat, min_lon, max_lon,
			   start_time, end_time, track_file_path, map_id, weather_start, weather_end,
			   created_at, updated_at
		FROM workouts
		WHERE user_id = ? AND uuid = ?
	`, userID, uuid).Scan(
		&w.ID, &w.UUID, &w.UserID, &w.SportID, &w.Title, &w.Description, &w.Notes, &w.Source, &w.EquipmentID,
		&w.DistanceKm, &w.Duration, &w.MovingTime, &w.StoppedTime, &w.AveSpeed, &w.MaxSpeed,
		&w.Ascent, &w.Descent, &w.MaxAlt, &w.MinAlt, &w.AvePace, &w.BestPace,
		&w.AveCadence, &w.MaxCadence, &w.AveHr, &w.MaxHr, &w.AvePower, &w.MaxPower,
		&w.MinLat, &w.MaxLat, &w.MinLon, &w.MaxLon,
		&w.StartTime, &w.EndTime, &w.TrackFilePath, &w.MapID, &w.WeatherStart, &w.WeatherEnd,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workout not found: %s", uuid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return w, nil
}

// GetSegments retrieves a workout's segment metric rows in order.
func (r *WorkoutRepository) GetSegments(workoutID int64) ([]models.WorkoutSegment, error) {
	rows, err := r.db.Query(`
		SELECT id, workout_id, segment_no, distance_km, duration, moving_time, stopped_time,
			   ave_speed, max_speed, ascent, descent, max_alt, min_alt, ave_pace, best_pace,
			   ave_cadence, max_cadence, ave_hr, max_hr, ave_power, max_power
		FROM workout_segments
		WHERE workout_id = ?
		ORDER BY segment_no
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workout segments: %w", err)
	}
	defer rows.Close()

	var segments []models.WorkoutSegment
	for rows.Next() {
		var s models.WorkoutSegment
		err := rows.Scan(
			&s.ID, &s.WorkoutID, &s.SegmentNo, &s.DistanceKm, &s.Duration, &s.MovingTime, &s.StoppedTime,
			&s.AveSpeed, &s.MaxSpeed, &s.Ascent, &s.Descent, &s.MaxAlt, &s.MinAlt, &s.AvePace, &s.BestPace,
			&s.AveCadence, &s.MaxCadence, &s.AveHr, &s.MaxHr, &s.AvePower, &s.MaxPower,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

// List retrieves a user's workouts ordered by start time, newest first.
func (r *WorkoutRepository) List(userID int64, limit, offset int) ([]*models.Workout, error) {
	rows, err := r.db.Query(`
		SELECT id, uuid, user_id, sport_id, title, distance_km, duration, moving_time,
			   ave_speed, max_speed, start_time, end_time, map_id, created_at, updated_at
		FROM workouts
		WHERE user_id = ?
		ORDER BY start_time DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w := &models.Workout{}
		err := rows.Scan(
			&w.ID, &w.UUID, &w.UserID, &w.SportID, &w.Title, &w.DistanceKm, &w.Duration, &w.MovingTime,
			&w.AveSpeed, &w.MaxSpeed, &w.StartTime, &w.EndTime, &w.MapID, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// Delete removes a workout and its segments.
func (r *WorkoutRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM workout_segments WHERE workout_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete workout segments: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM workouts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil
}
