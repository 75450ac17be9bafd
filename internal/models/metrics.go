package models

import "time"

// Bounds is the bounding box of a segment or activity.
type Bounds struct {
	MinLatitude  float64 `json:"minLatitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

// SegmentMetrics holds the kinematic statistics derived from one segment.
// Elevation and sensor aggregates are pointers: a nil value means the
// underlying data was absent, which is distinct from a measured zero.
type SegmentMetrics struct {
	DistanceKm  float64       `json:"distanceKm"`
	Duration    time.Duration `json:"duration"`
	MovingTime  time.Duration `json:"movingTime"`
	StoppedTime time.Duration `json:"stoppedTime"`
	AveSpeed    float64       `json:"aveSpeed"` // km/h
	MaxSpeed    float64       `json:"maxSpeed"` // km/h

	Ascent  *float64 `json:"ascent,omitempty"`
	Descent *float64 `json:"descent,omitempty"`
	MaxAlt  *float64 `json:"maxAlt,omitempty"`
	MinAlt  *float64 `json:"minAlt,omitempty"`

	// Pace values are minutes per kilometer, only set for pace sports.
	AvePace  *float64 `json:"avePace,omitempty"`
	BestPace *float64 `json:"bestPace,omitempty"`

	AveCadence *float64 `json:"aveCadence,omitempty"`
	MaxCadence *int     `json:"maxCadence,omitempty"`
	AveHr      *float64 `json:"aveHr,omitempty"`
	MaxHr      *int     `json:"maxHr,omitempty"`
	AvePower   *float64 `json:"avePower,omitempty"`
	MaxPower   *int     `json:"maxPower,omitempty"`

	Bounds *Bounds `json:"bounds,omitempty"`

	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// ActivityMetrics aggregates segment metrics over a whole activity.
// Pauses between segments count toward the activity's stopped time but
// toward no individual segment.
type ActivityMetrics struct {
	SegmentMetrics

	// StoppedTimeBetweenSegments is the part of StoppedTime contributed
	// by gaps between consecutive segments.
	StoppedTimeBetweenSegments time.Duration `json:"stoppedTimeBetweenSegments"`
}
