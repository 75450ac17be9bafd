package parser

import (
	"testing"
	"time"
)

const sampleGpx = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="OpenTracks">
  <metadata>
    <name>Morning Ride</name>
    <desc>Loop around the lake</desc>
  </metadata>
  <trk>
    <trkseg>
      <trkpt lat="47.0001" lon="8.0001"><ele>401.5</ele><time>2024-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="47.0002" lon="8.0002"><ele>402.0</ele><time>2024-05-01T08:00:05Z</time></trkpt>
      <trkpt lat="47.0003" lon="8.0003"><time>2024-05-01T08:00:10Z</time></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="47.0010" lon="8.0010"><ele>405.0</ele><time>2024-05-01T08:10:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestGpxNormalize(t *testing.T) {
	track, err := (&GpxNormalizer{}).Normalize([]byte(sampleGpx), Options{})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if track.Name != "Morning Ride" {
		t.Errorf("name = %q, want %q", track.Name, "Morning Ride")
	}
	if track.Description != "Loop around the lake" {
		t.Errorf("description = %q, want %q", track.Description, "Loop around the lake")
	}
	if track.Source != "OpenTracks" {
		t.Errorf("source = %q, want %q", track.Source, "OpenTracks")
	}
	if len(track.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(track.Segments))
	}
	if len(track.Segments[0].Points) != 3 {
		t.Fatalf("points = %d, want 3", len(track.Segments[0].Points))
	}

	p := track.Segments[0].Points[0]
	if p.Latitude != 47.0001 || p.Longitude != 8.0001 {
		t.Errorf("point = %f/%f, want 47.0001/8.0001", p.Latitude, p.Longitude)
	}
	if p.Elevation == nil || *p.Elevation != 401.5 {
		t.Errorf("elevation = %v, want 401.5", p.Elevation)
	}
	want := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	if !p.Time.Equal(want) {
		t.Errorf("time = %v, want %v", p.Time, want)
	}
	if track.Segments[0].Points[2].Elevation != nil {
		t.Error("point without <ele> must have nil elevation")
	}
}

func TestGpxNormalize_Errors(t *testing.T) {
	t.Run("malformed xml", func(t *testing.T) {
		_, err := (&GpxNormalizer{}).Normalize([]byte("<gpx><broken"), Options{})
		if _, ok := err.(*ParseError); !ok {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})

	t.Run("no tracks", func(t *testing.T) {
		doc := `<?xml version="1.0"?><gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="x"><wpt lat="1" lon="2"></wpt></gpx>`
		_, err := (&GpxNormalizer{}).Normalize([]byte(doc), Options{})
		if _, ok := err.(*StructureError); !ok {
			t.Fatalf("error = %v, want *StructureError", err)
		}
	})
}

func TestForExtension(t *testing.T) {
	for _, ext := range []string{".gpx", ".GPX", ".fit", ".tcx", ".kml", ".kmz"} {
		if _, err := ForExtension(ext); err != nil {
			t.Errorf("ForExtension(%q) error: %v", ext, err)
		}
	}
	if _, err := ForExtension(".csv"); err == nil {
		t.Error("ForExtension(.csv) should fail")
	}
}
