package parser

import (
	"fmt"
	"strings"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// StopEventPolicy selects when a FIT timer-stop event closes the current
// segment and opens a new one.
type StopEventPolicy int

const (
	// StopNone never splits segments on stop events.
	StopNone StopEventPolicy = iota
	// StopOnlyManual splits only on a manual stop (stop_all).
	StopOnlyManual
	// StopAll splits on any timer-stop event.
	StopAll
)

// Options carries per-parse settings. Zero value is valid.
type Options struct {
	// StopEvents controls FIT segment splitting; other formats ignore it.
	StopEvents StopEventPolicy
}

// Normalizer turns raw file bytes of one format into the canonical track
// model. Implementations fail with *ParseError for malformed input and
// *StructureError for well-formed input missing required elements.
type Normalizer interface {
	Normalize(data []byte, opts Options) (*models.Track, error)
}

var normalizers = make(map[string]Normalizer)

// Register associates a file extension (".gpx") with a normalizer.
func Register(ext string, n Normalizer) {
	normalizers[strings.ToLower(ext)] = n
}

// ForExtension returns the normalizer registered for ext, or an error
// when the extension is not a supported workout format.
func ForExtension(ext string) (Normalizer, error) {
	n, ok := normalizers[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	return n, nil
}

func init() {
	Register(".gpx", &GpxNormalizer{})
	Register(".fit", &FitNormalizer{})
	Register(".tcx", &TcxNormalizer{})
	Register(".kml", &KmlNormalizer{})
	Register(".kmz", &KmzNormalizer{})
}
