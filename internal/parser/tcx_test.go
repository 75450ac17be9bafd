package parser

import (
	"testing"
)

const sampleTcx = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Notes>Tempo run</Notes>
      <Lap StartTime="2024-05-01T08:00:00Z">
        <Track>
          <Trackpoint>
            <Time>2024-05-01T08:00:00Z</Time>
            <Position><LatitudeDegrees>47.0001</LatitudeDegrees><LongitudeDegrees>8.0001</LongitudeDegrees></Position>
            <AltitudeMeters>401.5</AltitudeMeters>
            <HeartRateBpm><Value>132</Value></HeartRateBpm>
            <Extensions>
              <ns3:TPX xmlns:ns3="http://www.garmin.com/xmlschemas/ActivityExtension/v2">
                <ns3:RunCadence>88</ns3:RunCadence>
                <ns3:Watts>250</ns3:Watts>
              </ns3:TPX>
            </Extensions>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T08:00:05Z</Time>
            <Position><LatitudeDegrees>47.0002</LatitudeDegrees><LongitudeDegrees>8.0002</LongitudeDegrees></Position>
            <AltitudeMeters>25000</AltitudeMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T08:00:10Z</Time>
          </Trackpoint>
        </Track>
      </Lap>
      <Lap StartTime="2024-05-01T08:05:00Z">
        <Track>
          <Trackpoint>
            <Time>2024-05-01T08:05:00Z</Time>
            <Position><LatitudeDegrees>47.0010</LatitudeDegrees><LongitudeDegrees>8.0010</LongitudeDegrees></Position>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func TestTcxNormalize(t *testing.T) {
	track, err := (&TcxNormalizer{}).Normalize([]byte(sampleTcx), Options{})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if track.Description != "Tempo run" {
		t.Errorf("description = %q, want %q", track.Description, "Tempo run")
	}
	// Both laps concatenate into the activity's single segment; the
	// positionless trackpoint is dropped.
	if len(track.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(track.Segments))
	}
	pts := track.Segments[0].Points
	if len(pts) != 3 {
		t.Fatalf("points = %d, want 3", len(pts))
	}

	if pts[0].HeartRate == nil || *pts[0].HeartRate != 132 {
		t.Errorf("heart rate = %v, want 132", pts[0].HeartRate)
	}
	if pts[0].Cadence == nil || *pts[0].Cadence != 88 {
		t.Errorf("cadence = %v, want 88 (from TPX extension)", pts[0].Cadence)
	}
	if pts[0].Power == nil || *pts[0].Power != 250 {
		t.Errorf("power = %v, want 250 (from TPX extension)", pts[0].Power)
	}
	if pts[0].Elevation == nil || *pts[0].Elevation != 401.5 {
		t.Errorf("elevation = %v, want 401.5", pts[0].Elevation)
	}
	// 25000m is beyond the sanity limit and must be treated as absent.
	if pts[1].Elevation != nil {
		t.Errorf("elevation = %v, want nil for out-of-range altitude", *pts[1].Elevation)
	}
}

func TestTcxNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no activities",
			doc:  `<?xml version="1.0"?><TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"><Activities></Activities></TrainingCenterDatabase>`,
		},
		{
			name: "no laps with tracks",
			doc:  `<?xml version="1.0"?><TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"><Activities><Activity Sport="Running"><Lap StartTime="2024-05-01T08:00:00Z"></Lap></Activity></Activities></TrainingCenterDatabase>`,
		},
		{
			name: "no coordinates",
			doc:  `<?xml version="1.0"?><TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"><Activities><Activity Sport="Running"><Lap StartTime="2024-05-01T08:00:00Z"><Track><Trackpoint><Time>2024-05-01T08:00:00Z</Time></Trackpoint></Track></Lap></Activity></Activities></TrainingCenterDatabase>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&TcxNormalizer{}).Normalize([]byte(tt.doc), Options{})
			if _, ok := err.(*StructureError); !ok {
				t.Fatalf("error = %v, want *StructureError", err)
			}
		})
	}

	t.Run("malformed xml", func(t *testing.T) {
		_, err := (&TcxNormalizer{}).Normalize([]byte("<TrainingCenterDatabase"), Options{})
		if _, ok := err.(*ParseError); !ok {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})
}
