package parser

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"
)

const sampleKmlGx = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">
  <Document>
    <name>Evening Walk</name>
    <description>Around the block</description>
    <Placemark>
      <gx:MultiTrack>
        <gx:Track>
          <when>2024-05-01T18:00:00Z</when>
          <when>2024-05-01T18:00:10Z</when>
          <gx:coord>8.0001 47.0001 401.5</gx:coord>
          <gx:coord>8.0002 47.0002 402.0</gx:coord>
        </gx:Track>
        <gx:Track>
          <when>2024-05-01T18:05:00Z</when>
          <gx:coord>8.0010 47.0010</gx:coord>
        </gx:Track>
      </gx:MultiTrack>
    </Placemark>
  </Document>
</kml>`

const sampleKmlPlain = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Short Track</name>
      <Track>
        <when>2024-05-01T18:00:00Z</when>
        <coord>8.0001 47.0001 401.5</coord>
      </Track>
    </Placemark>
  </Document>
</kml>`

func TestKmlNormalize_GxSchema(t *testing.T) {
	track, err := (&KmlNormalizer{}).Normalize([]byte(sampleKmlGx), Options{})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if track.Name != "Evening Walk" {
		t.Errorf("name = %q, want %q", track.Name, "Evening Walk")
	}
	if len(track.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(track.Segments))
	}

	p := track.Segments[0].Points[0]
	if p.Longitude != 8.0001 || p.Latitude != 47.0001 {
		t.Errorf("point = %f/%f, want lon 8.0001 lat 47.0001", p.Longitude, p.Latitude)
	}
	if p.Elevation == nil || *p.Elevation != 401.5 {
		t.Errorf("elevation = %v, want 401.5", p.Elevation)
	}
	want := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	if !p.Time.Equal(want) {
		t.Errorf("time = %v, want %v", p.Time, want)
	}
	if track.Segments[1].Points[0].Elevation != nil {
		t.Error("two-field coord must have nil elevation")
	}
}

func TestKmlNormalize_PlainSchema(t *testing.T) {
	track, err := (&KmlNormalizer{}).Normalize([]byte(sampleKmlPlain), Options{})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if track.Name != "Short Track" {
		t.Errorf("name = %q, want %q (from placemark)", track.Name, "Short Track")
	}
	if len(track.Segments) != 1 || len(track.Segments[0].Points) != 1 {
		t.Fatalf("unexpected shape: %d segments", len(track.Segments))
	}
}

func TestKmlNormalize_Errors(t *testing.T) {
	t.Run("folder document", func(t *testing.T) {
		doc := `<?xml version="1.0"?><kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder><name>Tracks</name></Folder></Document></kml>`
		_, err := (&KmlNormalizer{}).Normalize([]byte(doc), Options{})
		if _, ok := err.(*StructureError); !ok {
			t.Fatalf("error = %v, want *StructureError", err)
		}
	})

	t.Run("no placemark track", func(t *testing.T) {
		doc := `<?xml version="1.0"?><kml xmlns="http://www.opengis.net/kml/2.2"><Document><Placemark><name>Point only</name></Placemark></Document></kml>`
		_, err := (&KmlNormalizer{}).Normalize([]byte(doc), Options{})
		if _, ok := err.(*StructureError); !ok {
			t.Fatalf("error = %v, want *StructureError", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := (&KmlNormalizer{}).Normalize([]byte("<kml><Document"), Options{})
		if _, ok := err.(*ParseError); !ok {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})
}

func TestKmzNormalize(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("doc.kml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(sampleKmlPlain)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	track, err := (&KmzNormalizer{}).Normalize(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if track.Name != "Short Track" {
		t.Errorf("name = %q, want %q", track.Name, "Short Track")
	}
}

func TestKmzNormalize_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := (&KmzNormalizer{}).Normalize([]byte("plain text"), Options{})
		if _, ok := err.(*ParseError); !ok {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})

	t.Run("no kml entry", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		f, _ := zw.Create("readme.txt")
		f.Write([]byte("nothing here"))
		zw.Close()

		_, err := (&KmzNormalizer{}).Normalize(buf.Bytes(), Options{})
		if _, ok := err.(*ParseError); !ok {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})
}
