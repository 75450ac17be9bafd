// Package weather looks up weather conditions for a workout's start and
// end points. Lookups are best effort: any failure is reported to the
// caller as an error to be logged and swallowed, never propagated into
// workout creation.
package weather

import (
	"context"
	"time"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// Snapshot is the weather at one point in time and space.
type Snapshot struct {
	Summary     string  `json:"summary,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // 0-1
	WindSpeed   float64 `json:"windSpeed"`   // m/s
	WindBearing float64 `json:"windBearing"` // degrees
}

// Provider resolves a weather snapshot for a point. Implementations
// return (nil, nil) when no data is available for the location/time.
type Provider interface {
	Lookup(ctx context.Context, point models.Point, t time.Time) (*Snapshot, error)
}

// New selects a provider by configured name. An empty name yields nil:
// the capability is simply absent, which is a valid configuration, not
// an error.
func New(provider, apiKey string, retries int, retryDelay time.Duration) Provider {
	switch provider {
	case "visualcrossing":
		return &VisualCrossing{
			APIKey:     apiKey,
			Retries:    retries,
			RetryDelay: retryDelay,
		}
	default:
		return nil
	}
}
