package stats

import (
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// ActivityStats computes per-segment metrics for every segment of the
// track plus the activity-level aggregation. Averages are recomputed
// from totals rather than averaged-of-averages, so short segments do not
// skew them. Gaps between consecutive segments count toward the
// activity's stopped time only.
func ActivityStats(track *models.Track, opts Options) (models.ActivityMetrics, []models.SegmentMetrics) {
	segMetrics := make([]models.SegmentMetrics, 0, len(track.Segments))
	for _, seg := range track.Segments {
		segMetrics = append(segMetrics, SegmentStats(seg, opts))
	}

	var act models.ActivityMetrics
	if len(segMetrics) == 0 {
		return act, segMetrics
	}

	act.StartTime = segMetrics[0].StartTime
	act.EndTime = segMetrics[len(segMetrics)-1].EndTime
	act.Duration = act.EndTime.Sub(act.StartTime)

	var movingSec float64
	for i, sm := range segMetrics {
		act.DistanceKm += sm.DistanceKm
		act.MovingTime += sm.MovingTime
		act.StoppedTime += sm.StoppedTime
		movingSec += sm.MovingTime.Seconds()

		if sm.MaxSpeed > act.MaxSpeed {
			act.MaxSpeed = sm.MaxSpeed
		}

		act.Ascent = sumOptional(act.Ascent, sm.Ascent)
		act.Descent = sumOptional(act.Descent, sm.Descent)
		act.MaxAlt = maxOptional(act.MaxAlt, sm.MaxAlt)
		act.MinAlt = minOptional(act.MinAlt, sm.MinAlt)
		act.Bounds = mergeBounds(act.Bounds, sm.Bounds)
		// A zero best pace means the segment had no movement at all and
		// must not win the minimum.
		if sm.BestPace != nil && *sm.BestPace > 0 {
			act.BestPace = minOptional(act.BestPace, sm.BestPace)
		}

		if i > 0 {
			gap := sm.StartTime.Sub(segMetrics[i-1].EndTime)
			if gap > 0 {
				act.StoppedTime += gap
				act.StoppedTimeBetweenSegments += gap
			}
		}
	}

	if movingSec > 0 {
		act.AveSpeed = act.DistanceKm * 1000 / movingSec * 3.6
	}

	if opts.IsPaceSport {
		avePace := 0.0
		if act.AveSpeed > 0 {
			avePace = 60 / act.AveSpeed
		}
		act.AvePace = &avePace
		if act.BestPace == nil {
			bestPace := 0.0
			act.BestPace = &bestPace
		}
	}

	// Sensor aggregates are recomputed over every point of the track.
	all := make([]models.Point, 0, track.PointCount())
	for _, seg := range track.Segments {
		all = append(all, seg.Points...)
	}
	act.AveCadence, act.MaxCadence = sensorAggregate(all, func(p *models.Point) *int { return p.Cadence })
	act.AveHr, act.MaxHr = sensorAggregate(all, func(p *models.Point) *int { return p.HeartRate })
	act.AvePower, act.MaxPower = sensorAggregate(all, func(p *models.Point) *int { return p.Power })

	return act, segMetrics
}

func sumOptional(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	if acc == nil {
		total := *v
		return &total
	}
	total := *acc + *v
	return &total
}

func maxOptional(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	if acc == nil || *v > *acc {
		val := *v
		return &val
	}
	return acc
}

func minOptional(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	if acc == nil || *v < *acc {
		val := *v
		return &val
	}
	return acc
}

func mergeBounds(acc, b *models.Bounds) *models.Bounds {
	if b == nil {
		return acc
	}
	if acc == nil {
		merged := *b
		return &merged
	}
	if b.MinLatitude < acc.MinLatitude {
		acc.MinLatitude = b.MinLatitude
	}
	if b.MaxLatitude > acc.MaxLatitude {
		acc.MaxLatitude = b.MaxLatitude
	}
	if b.MinLongitude < acc.MinLongitude {
		acc.MinLongitude = b.MinLongitude
	}
	if b.MaxLongitude > acc.MaxLongitude {
		acc.MaxLongitude = b.MaxLongitude
	}
	return acc
}

// Limits are the configured ceilings a computed activity must stay
// under. Exceeding any of them fails the whole activity creation.
type Limits struct {
	MaxDistanceKm float64
	MaxDuration   time.Duration
	MaxAscent     float64
	MaxSpeed      float64 // km/h
	MaxElevation  float64 // meters
}

// CheckLimits validates computed activity metrics against the configured
// ceilings. It returns a *ValueLimitError naming the first offending
// metric, or nil.
func CheckLimits(m models.ActivityMetrics, lim Limits) error {
	if lim.MaxDistanceKm > 0 && m.DistanceKm > lim.MaxDistanceKm {
		return &ValueLimitError{Metric: "distance", Value: m.DistanceKm, Limit: lim.MaxDistanceKm}
	}
	if lim.MaxDuration > 0 && m.Duration > lim.MaxDuration {
		return &ValueLimitError{Metric: "duration", Value: m.Duration.Seconds(), Limit: lim.MaxDuration.Seconds()}
	}
	if lim.MaxAscent > 0 && m.Ascent != nil && *m.Ascent > lim.MaxAscent {
		return &ValueLimitError{Metric: "ascent", Value: *m.Ascent, Limit: lim.MaxAscent}
	}
	if lim.MaxSpeed > 0 && m.MaxSpeed > lim.MaxSpeed {
		return &ValueLimitError{Metric: "speed", Value: m.MaxSpeed, Limit: lim.MaxSpeed}
	}
	if lim.MaxElevation > 0 && m.MaxAlt != nil && *m.MaxAlt > lim.MaxElevation {
		return &ValueLimitError{Metric: "elevation", Value: *m.MaxAlt, Limit: lim.MaxElevation}
	}
	return nil
}
