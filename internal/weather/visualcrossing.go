package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

const visualCrossingBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// VisualCrossing queries the Visual Crossing timeline API for historical
// weather at a coordinate and timestamp.
type VisualCrossing struct {
	APIKey     string
	Retries    int
	RetryDelay time.Duration
	// Client defaults to a 10s-timeout http.Client when nil.
	Client *http.Client
	// BaseURL overrides the production endpoint in tests.
	BaseURL string
}

type vcResponse struct {
	Days []struct {
		Hours []struct {
			DatetimeEpoch int64   `json:"datetimeEpoch"`
			Temp          float64 `json:"temp"`
			Humidity      float64 `json:"humidity"`
			WindSpeed     float64 `json:"windspeed"`
			WindDir       float64 `json:"winddir"`
			Conditions    string  `json:"conditions"`
			Icon          string  `json:"icon"`
		} `json:"hours"`
	} `json:"days"`
}

// Lookup fetches the hourly observation closest to t. Transient failures
// are retried a bounded number of times with a fixed delay.
func (v *VisualCrossing) Lookup(ctx context.Context, point models.Point, t time.Time) (*Snapshot, error) {
	endpoint := v.BaseURL
	if endpoint == "" {
		endpoint = visualCrossingBaseURL
	}
	u := fmt.Sprintf("%s/%f,%f/%d?key=%s&unitGroup=metric&include=current",
		endpoint, point.Latitude, point.Longitude, t.Unix(), url.QueryEscape(v.APIKey))

	var lastErr error
	attempts := v.Retries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.RetryDelay):
			}
		}
		snap, err := v.fetch(ctx, u, t)
		if err == nil {
			return snap, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("weather lookup failed after %d attempts: %w", attempts, lastErr)
}

func (v *VisualCrossing) fetch(ctx context.Context, u string, t time.Time) (*Snapshot, error) {
	client := v.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var body vcResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(body.Days) == 0 || len(body.Days[0].Hours) == 0 {
		return nil, nil
	}

	// Pick the hour closest to the requested time.
	hours := body.Days[0].Hours
	best := hours[0]
	bestDiff := absInt64(best.DatetimeEpoch - t.Unix())
	for _, h := range hours[1:] {
		if diff := absInt64(h.DatetimeEpoch - t.Unix()); diff < bestDiff {
			best, bestDiff = h, diff
		}
	}

	return &Snapshot{
		Summary:     best.Conditions,
		Icon:        best.Icon,
		Temperature: best.Temp,
		Humidity:    best.Humidity / 100,
		WindSpeed:   best.WindSpeed / 3.6, // API reports km/h
		WindBearing: best.WindDir,
	}, nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
