// Package diagram renders the sensor-fit and lighting-placement plots
// as WebP images.
package diagram

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/logic/lighting"
)

const (
	diagramWidth  = 640
	diagramHeight = 480
	margin        = 40
)

// SensorFit renders the sensor frame with the object's image centered
// on it. On-film dimensions above the sensor size are drawn as-is so an
// overflowing object is visible at a glance.
func SensorFit(camera catalog.CameraSpec, objectWOnFilmMm, objectHOnFilmMm float64) image.Image {
	c := newCanvas(diagramWidth, diagramHeight)

	// Scale so the larger of sensor and object fits inside the margin.
	extentW := math.Max(camera.SensorWidthMm, objectWOnFilmMm)
	extentH := math.Max(camera.SensorHeightMm, objectHOnFilmMm)
	scale := math.Min(
		float64(diagramWidth-2*margin)/extentW,
		float64(diagramHeight-2*margin)/extentH,
	)

	cx, cy := float64(diagramWidth)/2, float64(diagramHeight)/2

	sw, sh := camera.SensorWidthMm*scale, camera.SensorHeightMm*scale
	c.fillRect(cx-sw/2, cy-sh/2, cx+sw/2, cy+sh/2, colSensor)
	c.strokeRect(cx-sw/2, cy-sh/2, cx+sw/2, cy+sh/2, colSensorEdge)

	ow, oh := objectWOnFilmMm*scale, objectHOnFilmMm*scale
	c.fillRect(cx-ow/2, cy-oh/2, cx+ow/2, cy+oh/2, colObject)
	c.strokeRect(cx-ow/2, cy-oh/2, cx+ow/2, cy+oh/2, colObjectEdge)

	c.label(cx, cy-sh/2-14, fmt.Sprintf("sensor %.1f x %.1f mm", camera.SensorWidthMm, camera.SensorHeightMm), colLine)
	c.label(cx, cy, fmt.Sprintf("object %.1f x %.1f mm", objectWOnFilmMm, objectHOnFilmMm), colLine)

	return c.finalize()
}

// Lighting renders the artwork in its plane with the two symmetric
// lights, the rays from center to each light, and the minimum coverage
// circle.
func Lighting(objectWidthMm, objectHeightMm float64, p lighting.Placement) image.Image {
	c := newCanvas(diagramWidth, diagramHeight)

	// Everything of interest fits in a box of 2*radius around center.
	extent := 2 * math.Max(p.RadiusMm, p.BaseRadiusMm)
	scale := math.Min(
		float64(diagramWidth-2*margin)/extent,
		float64(diagramHeight-2*margin)/extent,
	)

	cx, cy := float64(diagramWidth)/2, float64(diagramHeight)/2

	// Artwork rectangle.
	ow, oh := objectWidthMm*scale, objectHeightMm*scale
	c.fillRect(cx-ow/2, cy-oh/2, cx+ow/2, cy+oh/2, colSensor)
	c.strokeRect(cx-ow/2, cy-oh/2, cx+ow/2, cy+oh/2, colObjectEdge)

	// Minimum coverage circle (diagonal half-extent).
	c.dashedLine(cx-ow/2, cy-oh/2, cx+ow/2, cy+oh/2, colLine, 4)
	c.circle(cx, cy, p.BaseRadiusMm*scale, colLine)

	// Lights mirrored across the vertical centerline. Screen y grows
	// downward, plot y grows upward.
	lx, ly := p.OffsetXMm*scale, p.OffsetYMm*scale
	for _, side := range []float64{-1, 1} {
		x, y := cx+side*lx, cy-ly
		c.dashedLine(cx, cy, x, y, colLine, 4)
		c.fillCircle(x, y, 6, colAccent)
		c.circle(x, y, 6, colLine)
		c.label(x, y-16, "light", colLine)
	}

	c.label(cx, cy+oh/2+14, "artwork", colLine)
	c.label(cx, cy-p.BaseRadiusMm*scale-14,
		fmt.Sprintf("radius %.0f mm (x%.2f)", p.RadiusMm, p.RadiusMm/p.BaseRadiusMm), colLine)

	return c.finalize()
}

// EncodeWebP writes the image as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}
