package parser

import (
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// EncodeGpx serializes a canonical track back to GPX. The encoded file
// is the durable per-user copy kept for re-display and re-parsing.
func EncodeGpx(track *models.Track) ([]byte, error) {
	doc := &gpx.GPX{
		Name:        track.Name,
		Description: track.Description,
		Creator:     track.Source,
	}

	gt := gpx.GPXTrack{Name: track.Name}
	for _, seg := range track.Segments {
		gseg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(seg.Points))}
		for _, p := range seg.Points {
			gp := gpx.GPXPoint{
				Point: gpx.Point{
					Latitude:  p.Latitude,
					Longitude: p.Longitude,
				},
				Timestamp: p.Time,
			}
			if p.Elevation != nil {
				gp.Elevation = *gpx.NewNullableFloat64(*p.Elevation)
			}
			gseg.Points = append(gseg.Points, gp)
		}
		gt.Segments = append(gt.Segments, gseg)
	}
	doc.Tracks = []gpx.GPXTrack{gt}

	return gpx.ToXml(doc, gpx.ToXmlParams{Indent: true})
}
