package stats

import (
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
	"github.com/jengzang/workouts-backend-go/internal/spatial"
)

// SpeedSampling selects how interval speeds are sampled before the
// moving/stopped classification and the max-speed scan.
type SpeedSampling int

const (
	// SpeedRaw uses each interval's instantaneous speed as measured.
	SpeedRaw SpeedSampling = iota
	// SpeedSmoothed replaces each interval speed with a centered rolling
	// mean over its neighbors, damping single-interval GPS jitter.
	SpeedSmoothed
)

// Options controls how kinematic statistics are computed.
type Options struct {
	// StoppedSpeedThreshold is the interval speed (m/s) at or below
	// which an inter-point interval counts as stopped.
	StoppedSpeedThreshold float64
	// IsPaceSport enables the pace fields (min/km) on the result.
	IsPaceSport bool
	// Sampling selects raw or smoothed interval speeds.
	Sampling SpeedSampling
}

// SegmentStats computes the kinematic statistics of one segment. It is a
// pure function: the same segment and options always produce identical
// output.
func SegmentStats(seg models.Segment, opts Options) models.SegmentMetrics {
	m := models.SegmentMetrics{}
	pts := seg.Points
	if len(pts) == 0 {
		return m
	}

	m.StartTime = pts[0].Time
	m.EndTime = pts[len(pts)-1].Time
	// Total duration spans first to last point rather than summing the
	// classified intervals, so zero-length intervals cannot skew it.
	m.Duration = m.EndTime.Sub(m.StartTime)

	var distanceM float64
	intervals := make([]interval, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		d := spatial.HaversineDistance(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
		distanceM += d

		dt := cur.Time.Sub(prev.Time).Seconds()
		if dt <= 0 {
			continue
		}
		intervals = append(intervals, interval{dt: dt, speed: d / dt})
	}
	if opts.Sampling == SpeedSmoothed {
		smoothSpeeds(intervals)
	}

	var movingSec, stoppedSec float64
	var maxSpeedMs float64
	for _, iv := range intervals {
		if iv.speed > opts.StoppedSpeedThreshold {
			movingSec += iv.dt
		} else {
			stoppedSec += iv.dt
		}
		if iv.speed > maxSpeedMs {
			maxSpeedMs = iv.speed
		}
	}

	m.DistanceKm = distanceM / 1000
	m.MovingTime = time.Duration(movingSec * float64(time.Second))
	m.StoppedTime = time.Duration(stoppedSec * float64(time.Second))
	if movingSec > 0 {
		m.AveSpeed = distanceM / movingSec * 3.6
	}
	m.MaxSpeed = maxSpeedMs * 3.6

	fillElevation(&m, pts)
	if opts.IsPaceSport {
		fillPace(&m)
	}
	m.AveCadence, m.MaxCadence = sensorAggregate(pts, func(p *models.Point) *int { return p.Cadence })
	m.AveHr, m.MaxHr = sensorAggregate(pts, func(p *models.Point) *int { return p.HeartRate })
	m.AvePower, m.MaxPower = sensorAggregate(pts, func(p *models.Point) *int { return p.Power })
	m.Bounds = bounds(pts)

	return m
}

// interval is one inter-point step with a positive time delta.
type interval struct {
	dt    float64 // seconds
	speed float64 // m/s
}

// smoothSpeeds replaces each interval speed with the mean of itself and
// its immediate neighbors. Ends keep a two-sample window.
func smoothSpeeds(intervals []interval) {
	if len(intervals) < 2 {
		return
	}
	raw := make([]float64, len(intervals))
	for i, iv := range intervals {
		raw[i] = iv.speed
	}
	for i := range intervals {
		sum, n := raw[i], 1.0
		if i > 0 {
			sum += raw[i-1]
			n++
		}
		if i < len(raw)-1 {
			sum += raw[i+1]
			n++
		}
		intervals[i].speed = sum / n
	}
}

// fillElevation computes ascent/descent and altitude extremes. Absence of
// elevation data leaves all four fields nil; a flat track with measured
// elevation yields explicit zeros.
func fillElevation(m *models.SegmentMetrics, pts []models.Point) {
	var ascent, descent float64
	var maxAlt, minAlt float64
	var prevEle *float64
	seen := false

	for i := range pts {
		ele := pts[i].Elevation
		if ele == nil {
			continue
		}
		if !seen {
			maxAlt, minAlt = *ele, *ele
			seen = true
		} else {
			if *ele > maxAlt {
				maxAlt = *ele
			}
			if *ele < minAlt {
				minAlt = *ele
			}
		}
		if prevEle != nil {
			delta := *ele - *prevEle
			if delta > 0 {
				ascent += delta
			} else {
				descent += -delta
			}
		}
		prevEle = ele
	}

	if !seen {
		return
	}
	m.Ascent = &ascent
	m.Descent = &descent
	m.MaxAlt = &maxAlt
	m.MinAlt = &minAlt
}

// fillPace derives pace (min/km) from the speed fields. Best pace is the
// fastest interval, i.e. the reciprocal of the maximum interval speed.
func fillPace(m *models.SegmentMetrics) {
	avePace, bestPace := 0.0, 0.0
	if m.AveSpeed > 0 {
		avePace = 60 / m.AveSpeed
	}
	if m.MaxSpeed > 0 {
		bestPace = 60 / m.MaxSpeed
	}
	m.AvePace = &avePace
	m.BestPace = &bestPace
}

// sensorAggregate computes the mean and max over the points that carry
// the field. A field that is present on every point but always exactly
// zero is reported as absent: some devices emit a permanent zero instead
// of omitting the field.
func sensorAggregate(pts []models.Point, get func(*models.Point) *int) (*float64, *int) {
	sum, count, max := 0, 0, 0
	for i := range pts {
		v := get(&pts[i])
		if v == nil {
			continue
		}
		sum += *v
		count++
		if *v > max {
			max = *v
		}
	}
	if count == 0 {
		return nil, nil
	}
	if max == 0 && count == len(pts) {
		return nil, nil
	}
	ave := float64(sum) / float64(count)
	return &ave, &max
}

func bounds(pts []models.Point) *models.Bounds {
	if len(pts) == 0 {
		return nil
	}
	b := &models.Bounds{
		MinLatitude:  pts[0].Latitude,
		MaxLatitude:  pts[0].Latitude,
		MinLongitude: pts[0].Longitude,
		MaxLongitude: pts[0].Longitude,
	}
	for i := 1; i < len(pts); i++ {
		p := &pts[i]
		if p.Latitude < b.MinLatitude {
			b.MinLatitude = p.Latitude
		}
		if p.Latitude > b.MaxLatitude {
			b.MaxLatitude = p.Latitude
		}
		if p.Longitude < b.MinLongitude {
			b.MinLongitude = p.Longitude
		}
		if p.Longitude > b.MaxLongitude {
			b.MaxLongitude = p.Longitude
		}
	}
	return b
}
