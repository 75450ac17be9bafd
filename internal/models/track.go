package models

import "time"

// Point represents a single GPS sample in the canonical track model.
// Longitude/latitude are in degrees. Elevation is in meters and may be
// absent; heart rate, cadence and power are optional sensor readings.
type Point struct {
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Elevation *float64  `json:"elevation,omitempty"`
	Time      time.Time `json:"time"`
	HeartRate *int      `json:"heartRate,omitempty"`
	Cadence   *int      `json:"cadence,omitempty"`
	Power     *int      `json:"power,omitempty"`
}

// Segment is a contiguous, time-ordered run of points with no pause
// marker splitting it further.
type Segment struct {
	Points []Point `json:"points"`
}

// IsEmpty reports whether the segment has no points.
func (s *Segment) IsEmpty() bool {
	return len(s.Points) == 0
}

// Track is the canonical representation of one parsed activity file:
// an ordered list of segments plus the metadata the file carried.
type Track struct {
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"` // recording device, when the format exposes it
	Segments    []Segment `json:"segments"`
}

// HasElevation reports whether any point in the track carries elevation.
func (t *Track) HasElevation() bool {
	for _, seg := range t.Segments {
		for _, p := range seg.Points {
			if p.Elevation != nil {
				return true
			}
		}
	}
	return false
}

// PointCount returns the total number of points across all segments.
func (t *Track) PointCount() int {
	n := 0
	for _, seg := range t.Segments {
		n += len(seg.Points)
	}
	return n
}

// FirstPoint returns the first point of the track, or nil for an empty track.
func (t *Track) FirstPoint() *Point {
	for i := range t.Segments {
		if len(t.Segments[i].Points) > 0 {
			return &t.Segments[i].Points[0]
		}
	}
	return nil
}

// LastPoint returns the last point of the track, or nil for an empty track.
func (t *Track) LastPoint() *Point {
	for i := len(t.Segments) - 1; i >= 0; i-- {
		pts := t.Segments[i].Points
		if len(pts) > 0 {
			return &pts[len(pts)-1]
		}
	}
	return nil
}
