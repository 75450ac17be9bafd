package models

import "time"

// Sport describes how a workout's statistics should be interpreted.
type Sport struct {
	ID                    int64   `json:"id" db:"id"`
	Label                 string  `json:"label" db:"label"`
	IsPaceSport           bool    `json:"isPaceSport" db:"is_pace_sport"`
	StoppedSpeedThreshold float64 `json:"stoppedSpeedThreshold" db:"stopped_speed_threshold"` // m/s
}

// Workout is the persisted representation of one imported activity.
// The canonical track itself is not stored verbatim; only derived
// metrics plus a re-encoded track file on disk.
type Workout struct {
	ID      int64  `json:"id" db:"id"`
	UUID    string `json:"uuid" db:"uuid"`
	UserID  int64  `json:"userId" db:"user_id"`
	SportID int64  `json:"sportId" db:"sport_id"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Notes       string `json:"notes,omitempty" db:"notes"`
	Source      string `json:"source,omitempty" db:"source"`

	EquipmentID *int64 `json:"equipmentId,omitempty" db:"equipment_id"`

	// Derived metrics (activity level).
	DistanceKm  float64 `json:"distanceKm" db:"distance_km"`
	Duration    int64   `json:"duration" db:"duration"`      // seconds
	MovingTime  int64   `json:"movingTime" db:"moving_time"` // seconds
	StoppedTime int64   `json:"stoppedTime" db:"stopped_time"`
	AveSpeed    float64 `json:"aveSpeed" db:"ave_speed"`
	MaxSpeed    float64 `json:"maxSpeed" db:"max_speed"`

	Ascent  *float64 `json:"ascent,omitempty" db:"ascent"`
	Descent *float64 `json:"descent,omitempty" db:"descent"`
	MaxAlt  *float64 `json:"maxAlt,omitempty" db:"max_alt"`
	MinAlt  *float64 `json:"minAlt,omitempty" db:"min_alt"`

	AvePace  *float64 `json:"avePace,omitempty" db:"ave_pace"`
	BestPace *float64 `json:"bestPace,omitempty" db:"best_pace"`

	AveCadence *float64 `json:"aveCadence,omitempty" db:"ave_cadence"`
	MaxCadence *int     `json:"maxCadence,omitempty" db:"max_cadence"`
	AveHr      *float64 `json:"aveHr,omitempty" db:"ave_hr"`
	MaxHr      *int     `json:"maxHr,omitempty" db:"max_hr"`
	AvePower   *float64 `json:"avePower,omitempty" db:"ave_power"`
	MaxPower   *int     `json:"maxPower,omitempty" db:"max_power"`

	MinLat *float64 `json:"minLat,omitempty" db:"min_lat"`
	MaxLat *float64 `json:"maxLat,omitempty" db:"max_lat"`
	MinLon *float64 `json:"minLon,omitempty" db:"min_lon"`
	MaxLon *float64 `json:"maxLon,omitempty" db:"max_lon"`

	StartTime time.Time `json:"startTime" db:"start_time"`
	EndTime   time.Time `json:"endTime" db:"end_time"`

	// TrackFilePath is the per-user canonical track file written at
	// creation time; MapID is the content hash of the rendered map image.
	TrackFilePath string `json:"-" db:"track_file_path"`
	MapID         string `json:"mapId,omitempty" db:"map_id"`

	WeatherStart *string `json:"weatherStart,omitempty" db:"weather_start"` // JSON snapshot
	WeatherEnd   *string `json:"weatherEnd,omitempty" db:"weather_end"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// WorkoutSegment is the persisted per-segment metrics row of a workout.
type WorkoutSegment struct {
	ID        int64 `json:"id" db:"id"`
	WorkoutID int64 `json:"workoutId" db:"workout_id"`
	SegmentNo int   `json:"segmentNo" db:"segment_no"`

	DistanceKm  float64 `json:"distanceKm" db:"distance_km"`
	Duration    int64   `json:"duration" db:"duration"`
	MovingTime  int64   `json:"movingTime" db:"moving_time"`
	StoppedTime int64   `json:"stoppedTime" db:"stopped_time"`
	AveSpeed    float64 `json:"aveSpeed" db:"ave_speed"`
	MaxSpeed    float64 `json:"maxSpeed" db:"max_speed"`

	Ascent  *float64 `json:"ascent,omitempty" db:"ascent"`
	Descent *float64 `json:"descent,omitempty" db:"descent"`
	MaxAlt  *float64 `json:"maxAlt,omitempty" db:"max_alt"`
	MinAlt  *float64 `json:"minAlt,omitempty" db:"min_alt"`

	AvePace  *float64 `json:"avePace,omitempty" db:"ave_pace"`
	BestPace *float64 `json:"bestPace,omitempty" db:"best_pace"`

	AveCadence *float64 `json:"aveCadence,omitempty" db:"ave_cadence"`
	MaxCadence *int     `json:"maxCadence,omitempty" db:"max_cadence"`
	AveHr      *float64 `json:"aveHr,omitempty" db:"ave_hr"`
	MaxHr      *int     `json:"maxHr,omitempty" db:"max_hr"`
	AvePower   *float64 `json:"avePower,omitempty" db:"ave_power"`
	MaxPower   *int     `json:"maxPower,omitempty" db:"max_power"`
}

// Equipment is a piece of gear a workout may reference (a bike, shoes).
type Equipment struct {
	ID       int64  `json:"id" db:"id"`
	UserID   int64  `json:"userId" db:"user_id"`
	Label    string `json:"label" db:"label"`
	IsActive bool   `json:"isActive" db:"is_active"`
}
