// Package mapimage renders a static map image of a workout's route.
// Rendering fetches map tiles over the network; failures are fatal for
// the activity being created, unlike the best-effort collaborators.
package mapimage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image/color"
	"image/png"

	sm "github.com/flopp/go-staticmaps"
	"github.com/golang/geo/s2"

	"github.com/jengzang/workouts-backend-go/internal/models"
)

// Renderer turns an ordered coordinate sequence into image bytes.
type Renderer interface {
	Render(points []models.Point) ([]byte, error)
}

// StaticMapRenderer draws the route as a path over OpenStreetMap tiles.
type StaticMapRenderer struct {
	Width  int
	Height int
}

// NewStaticMapRenderer returns a renderer with the default image size.
func NewStaticMapRenderer() *StaticMapRenderer {
	return &StaticMapRenderer{Width: 400, Height: 225}
}

// Render draws the route and encodes it as PNG.
func (r *StaticMapRenderer) Render(points []models.Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to render")
	}

	positions := make([]s2.LatLng, 0, len(points))
	for _, p := range points {
		positions = append(positions, s2.LatLngFromDegrees(p.Latitude, p.Longitude))
	}

	ctx := sm.NewContext()
	ctx.SetSize(r.Width, r.Height)
	ctx.AddObject(sm.NewPath(positions, color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}, 3))

	img, err := ctx.Render()
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode map image: %w", err)
	}
	return buf.Bytes(), nil
}

// MapID derives the public, unguessable map identifier from the rendered
// image bytes.
func MapID(imageBytes []byte) string {
	sum := sha256.Sum256(imageBytes)
	return hex.EncodeToString(sum[:])
}
