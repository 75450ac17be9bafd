// Package elevation fills missing point elevations through an external
// lookup service. Enrichment is best effort and only runs when the
// uploaded file carried no elevation at all and a provider is configured.
package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// Provider resolves elevations for an ordered list of points.
type Provider interface {
	Fill(ctx context.Context, points []models.Point) ([]float64, error)
}

// HTTPProvider posts coordinates to an open-elevation compatible
// endpoint and reads back one elevation per point.
type HTTPProvider struct {
	URL        string
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

// New returns nil when no endpoint is configured; absence of the
// capability is a valid configuration.
func New(endpoint string, retries int, retryDelay time.Duration) Provider {
	if endpoint == "" {
		return nil
	}
	return &HTTPProvider{URL: endpoint, Retries: retries, RetryDelay: retryDelay}
}

type lookupRequest struct {
	Locations []location `json:"locations"`
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Fill returns one elevation per input point, in order.
func (p *HTTPProvider) Fill(ctx context.Context, points []models.Point) ([]float64, error) {
	req := lookupRequest{Locations: make([]location, 0, len(points))}
	for _, pt := range points {
		req.Locations = append(req.Locations, location{Latitude: pt.Latitude, Longitude: pt.Longitude})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	attempts := p.Retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.RetryDelay):
			}
		}
		elevations, err := p.post(ctx, payload, len(points))
		if err == nil {
			return elevations, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("elevation lookup failed after %d attempts: %w", attempts, lastErr)
}

func (p *HTTPProvider) post(ctx context.Context, payload []byte, expected int) ([]float64, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation api status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(body.Results) != expected {
		return nil, fmt.Errorf("elevation api returned %d results for %d points", len(body.Results), expected)
	}

	elevations := make([]float64, len(body.Results))
	for i, r := range body.Results {
		elevations[i] = r.Elevation
	}
	return elevations, nil
}
