package parser

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// KmzNormalizer unpacks the zip container and delegates to the KML
// normalizer for the contained document.
type KmzNormalizer struct {
	kml KmlNormalizer
}

// Normalize locates the single KML entry inside the archive and parses it.
func (n *KmzNormalizer) Normalize(data []byte, opts Options) (*models.Track, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Format: "kmz", Reason: "invalid zip archive", Err: err}
	}

	for _, entry := range reader.File {
		if strings.ToLower(filepath.Ext(entry.Name)) != ".kml" {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, &ParseError{Format: "kmz", Reason: "cannot open KML entry", Err: err}
		}
		kmlData, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &ParseError{Format: "kmz", Reason: "cannot read KML entry", Err: err}
		}
		return n.kml.Normalize(kmlData, opts)
	}

	return nil, &ParseError{Format: "kmz", Reason: "no KML entry in archive"}
}
