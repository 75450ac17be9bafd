package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// elevationSanityLimit rejects absurd altitudes some devices emit.
// Values outside ±9999.99 are discarded as absent, not propagated.
const elevationSanityLimit = 9999.99

// TcxNormalizer parses Training Center XML (Activities > Laps > Tracks >
// Trackpoints). All laps' tracks within one activity are concatenated
// into one segment; each activity contributes one segment to the track.
type TcxNormalizer struct{}

type tcxFile struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	Notes string   `xml:"Notes"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	Tracks []tcxTrack `xml:"Track"`
}

type tcxTrack struct {
	Points []tcxTrackpoint `xml:"Trackpoint"`
}

type tcxTrackpoint struct {
	Time      string       `xml:"Time"`
	Position  *tcxPosition `xml:"Position"`
	Altitude  *float64     `xml:"AltitudeMeters"`
	HeartRate *tcxHrValue  `xml:"HeartRateBpm"`
	Cadence   *int         `xml:"Cadence"`
	// Extensions carry vendor-namespaced TPX fields; parsed separately
	// because the namespace prefix varies between vendors.
	Extensions tcxExtensions `xml:"Extensions"`
}

type tcxPosition struct {
	Latitude  float64 `xml:"LatitudeDegrees"`
	Longitude float64 `xml:"LongitudeDegrees"`
}

type tcxHrValue struct {
	Value int `xml:"Value"`
}

type tcxExtensions struct {
	Inner []byte `xml:",innerxml"`
}

// tpxLookup caches the extension namespace discovered on the first
// extensions block of the file; subsequent lookups only accept fields
// from that namespace.
type tpxLookup struct {
	space    string
	resolved bool
}

// Normalize parses a TCX document into a canonical track.
func (n *TcxNormalizer) Normalize(data []byte, _ Options) (*models.Track, error) {
	var doc tcxFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: "tcx", Reason: "invalid XML", Err: err}
	}

	if len(doc.Activities) == 0 {
		return nil, &StructureError{Format: "tcx", Reason: "no activities"}
	}

	track := &models.Track{}
	lookup := &tpxLookup{}
	sawTrackpoint := false

	for _, act := range doc.Activities {
		if track.Description == "" && act.Notes != "" {
			track.Description = act.Notes
		}
		seg := models.Segment{}
		for _, lap := range act.Laps {
			for _, t := range lap.Tracks {
				for _, tp := range t.Points {
					sawTrackpoint = true
					p, ok := trackpointToPoint(tp, lookup)
					if !ok {
						continue
					}
					seg.Points = append(seg.Points, p)
				}
			}
		}
		if !seg.IsEmpty() {
			track.Segments = append(track.Segments, seg)
		}
	}

	if !sawTrackpoint {
		return nil, &StructureError{Format: "tcx", Reason: "no laps with tracks"}
	}
	if len(track.Segments) == 0 {
		// Trackpoints existed but none carried a position.
		return nil, &StructureError{Format: "tcx", Reason: "no coordinates found"}
	}

	return track, nil
}

func trackpointToPoint(tp tcxTrackpoint, lookup *tpxLookup) (models.Point, bool) {
	if tp.Position == nil {
		return models.Point{}, false
	}

	p := models.Point{
		Latitude:  tp.Position.Latitude,
		Longitude: tp.Position.Longitude,
	}
	if ts, err := time.Parse(time.RFC3339, tp.Time); err == nil {
		p.Time = ts
	}

	if tp.Altitude != nil && math.Abs(*tp.Altitude) <= elevationSanityLimit {
		ele := *tp.Altitude
		p.Elevation = &ele
	}

	if tp.HeartRate != nil {
		hr := tp.HeartRate.Value
		p.HeartRate = &hr
	}

	if tp.Cadence != nil {
		cad := *tp.Cadence
		p.Cadence = &cad
	} else if cad, ok := lookupExtension(tp.Extensions.Inner, "RunCadence", lookup); ok {
		p.Cadence = &cad
	}
	if watts, ok := lookupExtension(tp.Extensions.Inner, "Watts", lookup); ok {
		p.Power = &watts
	}

	return p, true
}

// lookupExtension scans an extensions block for a TPX field with the
// given local name. On first use it discovers which namespace the file's
// TPX block actually lives in and caches it; later blocks must match.
func lookupExtension(inner []byte, field string, lookup *tpxLookup) (int, bool) {
	if len(inner) == 0 {
		return 0, false
	}

	dec := xml.NewDecoder(bytes.NewReader(inner))
	inTPX := false
	want := ""
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, false
		}
		if err != nil {
			return 0, false
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "TPX" {
				if !lookup.resolved {
					lookup.space = el.Name.Space
					lookup.resolved = true
				}
				if el.Name.Space == lookup.space {
					inTPX = true
				}
			} else if inTPX && el.Name.Local == field && el.Name.Space == lookup.space {
				want = field
			}
		case xml.EndElement:
			if el.Name.Local == "TPX" {
				inTPX = false
			}
			if el.Name.Local == want {
				want = ""
			}
		case xml.CharData:
			if want != "" {
				v, ok := parseExtInt(string(el))
				if ok {
					return v, true
				}
				want = ""
			}
		}
	}
}

func parseExtInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
