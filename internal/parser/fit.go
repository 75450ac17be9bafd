package parser

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// semicirclesToDeg converts integer semicircle coordinates to degrees.
const semicirclesToDeg = 180.0 / 2147483648.0 // 2^31

// FitNormalizer parses binary FIT device recordings into the canonical
// model. Records and timer events are merged and sorted by timestamp
// before segmenting, since some devices interleave them out of order.
type FitNormalizer struct{}

// knownManufacturers maps device manufacturer codes to display names.
var knownManufacturers = map[fit.Manufacturer]string{
	fit.ManufacturerGarmin:       "Garmin",
	fit.ManufacturerSuunto:       "Suunto",
	fit.ManufacturerWahooFitness: "Wahoo Fitness",
	fit.ManufacturerSigmasport:   "Sigma Sport",
	fit.ManufacturerTacx:         "Tacx",
	fit.ManufacturerZwift:        "Zwift",
	fit.ManufacturerBryton:       "Bryton",
	fit.ManufacturerDevelopment:  "",
}

type fitFrame struct {
	ts   time.Time
	rec  *fit.RecordMsg // nil for event frames
	stop bool           // event frame closing the current segment
}

// Normalize decodes a FIT file. Timestamped record frames become points;
// recognized stop-timer events split segments according to opts.StopEvents.
func (n *FitNormalizer) Normalize(data []byte, opts Options) (*models.Track, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: "fit", Reason: "invalid binary stream", Err: err}
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, &StructureError{Format: "fit", Reason: "not an activity file"}
	}

	track := &models.Track{
		Source: deviceName(decoded.FileId),
	}

	frames := make([]fitFrame, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || !validFitTime(rec.Timestamp) {
			continue
		}
		frames = append(frames, fitFrame{ts: rec.Timestamp, rec: rec})
	}
	if opts.StopEvents != StopNone {
		for _, ev := range activity.Events {
			if ev == nil || !validFitTime(ev.Timestamp) {
				continue
			}
			if isStopEvent(ev, opts.StopEvents) {
				frames = append(frames, fitFrame{ts: ev.Timestamp, stop: true})
			}
		}
	}

	track.Segments = splitFrames(frames)

	if len(track.Segments) == 0 {
		return nil, &StructureError{Format: "fit", Reason: "no coordinates found (no GPS fix)"}
	}

	return track, nil
}

// splitFrames orders the merged record/event frames by timestamp and
// cuts a new segment at every stop frame. Empty segments, including a
// trailing one after a final stop, are dropped.
func splitFrames(frames []fitFrame) []models.Segment {
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].ts.Before(frames[j].ts)
	})

	var segments []models.Segment
	current := models.Segment{}
	for _, fr := range frames {
		if fr.stop {
			if !current.IsEmpty() {
				segments = append(segments, current)
				current = models.Segment{}
			}
			continue
		}
		p, ok := recordPoint(fr.rec)
		if !ok {
			continue
		}
		current.Points = append(current.Points, p)
	}
	if !current.IsEmpty() {
		segments = append(segments, current)
	}
	return segments
}

// recordPoint builds a canonical point from a record frame. Records
// missing longitude, latitude or time are skipped entirely.
func recordPoint(rec *fit.RecordMsg) (models.Point, bool) {
	if rec.PositionLat.Invalid() || rec.PositionLong.Invalid() || !validFitTime(rec.Timestamp) {
		return models.Point{}, false
	}

	p := models.Point{
		Latitude:  float64(rec.PositionLat.Semicircles()) * semicirclesToDeg,
		Longitude: float64(rec.PositionLong.Semicircles()) * semicirclesToDeg,
		Time:      rec.Timestamp,
	}

	// Altitude: scale 5, offset 500; scaled getters return NaN when the
	// raw field carries the invalid sentinel.
	if ele := rec.GetEnhancedAltitudeScaled(); isFiniteFit(ele) {
		p.Elevation = &ele
	} else if ele := rec.GetAltitudeScaled(); isFiniteFit(ele) {
		p.Elevation = &ele
	}

	if rec.HeartRate != math.MaxUint8 {
		hr := int(rec.HeartRate)
		p.HeartRate = &hr
	}
	if rec.Cadence != math.MaxUint8 {
		cad := int(rec.Cadence)
		p.Cadence = &cad
	}
	if rec.Power != math.MaxUint16 {
		pw := int(rec.Power)
		p.Power = &pw
	}

	return p, true
}

// isStopEvent reports whether ev closes the current segment under policy.
func isStopEvent(ev *fit.EventMsg, policy StopEventPolicy) bool {
	if ev.Event != fit.EventTimer {
		return false
	}
	switch ev.EventType {
	case fit.EventTypeStopAll, fit.EventTypeStopDisableAll:
		return policy == StopOnlyManual || policy == StopAll
	case fit.EventTypeStop, fit.EventTypeStopDisable:
		return policy == StopAll
	default:
		return false
	}
}

// deviceName builds a free-text source string from the file_id message.
func deviceName(fileID fit.FileIdMsg) string {
	name, known := knownManufacturers[fileID.Manufacturer]
	if !known {
		name = fileID.Manufacturer.String()
	}
	if name == "" {
		return ""
	}
	if product := fileID.GetProduct(); product != nil {
		if gp, ok := product.(fit.GarminProduct); ok && uint16(gp) != math.MaxUint16 {
			return fmt.Sprintf("%s %s", name, gp)
		}
		if pn, ok := product.(uint16); ok && pn != 0 && pn != math.MaxUint16 {
			return fmt.Sprintf("%s (%d)", name, pn)
		}
	}
	return name
}

func validFitTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func isFiniteFit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
