package parser

import (
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// GpxNormalizer parses GPX track XML into the canonical model.
type GpxNormalizer struct{}

// Normalize parses a GPX document. Track name and description are taken
// verbatim from the file metadata; each trkseg becomes one segment.
func (n *GpxNormalizer) Normalize(data []byte, _ Options) (*models.Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &ParseError{Format: "gpx", Reason: "invalid XML", Err: err}
	}

	if len(doc.Tracks) == 0 {
		return nil, &StructureError{Format: "gpx", Reason: "no tracks"}
	}

	track := &models.Track{
		Name:        doc.Name,
		Description: doc.Description,
	}
	if doc.Creator != "" {
		track.Source = doc.Creator
	}

	for _, trk := range doc.Tracks {
		if track.Name == "" && trk.Name != "" {
			track.Name = trk.Name
		}
		if track.Description == "" && trk.Description != "" {
			track.Description = trk.Description
		}
		for _, gseg := range trk.Segments {
			seg := models.Segment{Points: make([]models.Point, 0, len(gseg.Points))}
			for _, gp := range gseg.Points {
				p := models.Point{
					Longitude: gp.Longitude,
					Latitude:  gp.Latitude,
					Time:      gp.Timestamp,
				}
				if gp.Elevation.NotNull() {
					ele := gp.Elevation.Value()
					p.Elevation = &ele
				}
				seg.Points = append(seg.Points, p)
			}
			track.Segments = append(track.Segments, seg)
		}
	}

	return track, nil
}
