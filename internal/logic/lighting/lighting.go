package lighting

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for non-positive or non-finite object
// dimensions or radius multiplier.
var ErrInvalidInput = errors.New("invalid lighting input")

// Placement holds symmetric two-point light offsets relative to the
// object center, in the object's plane. The two lights sit at
// (-OffsetXMm, OffsetYMm) and (+OffsetXMm, OffsetYMm).
type Placement struct {
	// BaseRadiusMm is the object's diagonal half-extent, the minimum
	// coverage radius for full illumination.
	BaseRadiusMm float64 `json:"base_radius_mm"`

	// RadiusMm is BaseRadiusMm scaled by the coverage multiplier.
	RadiusMm float64 `json:"radius_mm"`

	OffsetXMm float64 `json:"offset_x_mm"`
	OffsetYMm float64 `json:"offset_y_mm"`
}

// Offsets computes two-point light placement for a flat object of the
// given size. The multiplier scales the minimum coverage radius:
// >= 1 expands coverage, < 1 under-covers (permitted, caller's choice).
// Each light sits at distance RadiusMm from center, on the line through
// the object corner, mirrored across the vertical centerline. A square
// object degenerates to 45° placement with equal x and y offsets.
func Offsets(widthMm, heightMm, radiusMultiplier float64) (Placement, error) {
	if !positiveFinite(widthMm) || !positiveFinite(heightMm) {
		return Placement{}, fmt.Errorf("%w: object dimensions must be > 0 mm, got %g x %g",
			ErrInvalidInput, widthMm, heightMm)
	}
	if !positiveFinite(radiusMultiplier) {
		return Placement{}, fmt.Errorf("%w: radius multiplier must be > 0, got %g",
			ErrInvalidInput, radiusMultiplier)
	}

	halfW := widthMm / 2.0
	halfH := heightMm / 2.0
	baseRadius := math.Hypot(halfW, halfH)
	radius := baseRadius * radiusMultiplier

	return Placement{
		BaseRadiusMm: baseRadius,
		RadiusMm:     radius,
		OffsetXMm:    radius * halfW / baseRadius,
		OffsetYMm:    radius * halfH / baseRadius,
	}, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
