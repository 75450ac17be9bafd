package parser

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// KmlNormalizer parses KML multi-track documents. Two schema versions
// are supported: the one that prefixes track elements with "gx:" and the
// later one that moved them into the main namespace. The prefixed form
// is rewritten to the unprefixed one before generic handling, so a
// single set of element names covers both.
type KmlNormalizer struct{}

type kmlFile struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name        string         `xml:"name"`
	Description string         `xml:"description"`
	Folders     []kmlFolder    `xml:"Folder"`
	Placemarks  []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Name string `xml:"name"`
}

type kmlPlacemark struct {
	Name        string    `xml:"name"`
	Description string    `xml:"description"`
	MultiTrack  *kmlMulti `xml:"MultiTrack"`
	Track       *kmlTrack `xml:"Track"`
}

type kmlMulti struct {
	Tracks []kmlTrack `xml:"Track"`
}

// kmlTrack children alternate <when> timestamps and <coord>
// "lon lat ele" triplets; both lists are positionally paired.
type kmlTrack struct {
	Whens  []string `xml:"when"`
	Coords []string `xml:"coord"`
}

// Normalize parses a KML document into a canonical track.
func (n *KmlNormalizer) Normalize(data []byte, _ Options) (*models.Track, error) {
	data = rewriteGxPrefix(data)

	var doc kmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: "kml", Reason: "invalid XML", Err: err}
	}

	// Folder-grouped documents use a different schema variant that this
	// parser does not understand; reject rather than misread.
	if len(doc.Document.Folders) > 0 {
		return nil, &StructureError{Format: "kml", Reason: "unsupported: Folder-based document"}
	}

	track := &models.Track{
		Name:        strings.TrimSpace(doc.Document.Name),
		Description: strings.TrimSpace(doc.Document.Description),
	}

	for _, pm := range doc.Document.Placemarks {
		if track.Name == "" {
			track.Name = strings.TrimSpace(pm.Name)
		}
		if track.Description == "" {
			track.Description = strings.TrimSpace(pm.Description)
		}
		var kmlTracks []kmlTrack
		if pm.MultiTrack != nil {
			kmlTracks = pm.MultiTrack.Tracks
		} else if pm.Track != nil {
			kmlTracks = []kmlTrack{*pm.Track}
		}
		for _, kt := range kmlTracks {
			seg := trackToSegment(kt)
			if !seg.IsEmpty() {
				track.Segments = append(track.Segments, seg)
			}
		}
	}

	if len(track.Segments) == 0 {
		return nil, &StructureError{Format: "kml", Reason: "unsupported: no placemark with a track"}
	}

	return track, nil
}

func trackToSegment(kt kmlTrack) models.Segment {
	seg := models.Segment{}
	count := len(kt.Coords)
	if len(kt.Whens) < count {
		count = len(kt.Whens)
	}
	for i := 0; i < count; i++ {
		p, ok := parseCoord(kt.Coords[i])
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(kt.Whens[i])); err == nil {
			p.Time = ts
		}
		seg.Points = append(seg.Points, p)
	}
	return seg
}

// parseCoord parses a "lon lat [ele]" triplet.
func parseCoord(s string) (models.Point, bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return models.Point{}, false
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return models.Point{}, false
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return models.Point{}, false
	}
	p := models.Point{Longitude: lon, Latitude: lat}
	if len(fields) >= 3 {
		if ele, err := strconv.ParseFloat(fields[2], 64); err == nil {
			p.Elevation = &ele
		}
	}
	return p, true
}

// rewriteGxPrefix drops the "gx:" element prefix so both supported
// schema versions parse through the same element names.
func rewriteGxPrefix(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("<gx:"), []byte("<"))
	return bytes.ReplaceAll(data, []byte("</gx:"), []byte("</"))
}
