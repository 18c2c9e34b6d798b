// Package report assembles one full copy-stand calculation: framing,
// resolution and light placement, with distances broken down into every
// supported unit for display.
package report

import (
	"fmt"
	"strings"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/logic/lighting"
	"github.com/pjakub/copystand/internal/logic/optics"
	"github.com/pjakub/copystand/internal/trace"
	"github.com/pjakub/copystand/internal/units"
)

// Inputs are the raw calculation inputs, already converted to
// millimeters.
type Inputs struct {
	Camera           catalog.CameraSpec
	FocalLengthMm    float64
	ObjectWidthMm    float64
	ObjectHeightMm   float64
	TargetPPI        float64
	RadiusMultiplier float64
}

// Report is the full result set for one calculation.
type Report struct {
	Camera         catalog.CameraSpec `json:"camera"`
	FocalLengthMm  float64            `json:"focal_length_mm"`
	ObjectWidthMm  float64            `json:"object_width_mm"`
	ObjectHeightMm float64            `json:"object_height_mm"`
	TargetPPI      float64            `json:"ppi"`

	Optics   optics.Result      `json:"optics"`
	Lighting lighting.Placement `json:"lighting"`

	Distance units.Breakdown `json:"distance"`
	LightX   units.Breakdown `json:"light_x"`
	LightY   units.Breakdown `json:"light_y"`

	Warnings []string `json:"warnings"`
}

// Build runs both calculators and assembles the report.
func Build(in Inputs) (*Report, error) {
	trace.Section("Calculation")
	trace.Value("camera", in.Camera.Name)
	trace.Value("focal length mm", in.FocalLengthMm)
	trace.Value("object mm", fmt.Sprintf("%.2f x %.2f", in.ObjectWidthMm, in.ObjectHeightMm))
	trace.Value("target ppi", in.TargetPPI)

	calc, err := optics.NewCalculator(in.Camera, in.FocalLengthMm)
	if err != nil {
		return nil, err
	}
	res, err := calc.Compute(optics.Request{
		ObjectWidthMm:  in.ObjectWidthMm,
		ObjectHeightMm: in.ObjectHeightMm,
		TargetPPI:      in.TargetPPI,
	})
	if err != nil {
		return nil, err
	}
	trace.Value("binding axis", res.BindingAxis)
	trace.Value("magnification", res.Magnification)
	trace.Info("distance %.1f mm, max ppi %.2f", res.DistanceMm, res.MaxPPI)

	placement, err := lighting.Offsets(in.ObjectWidthMm, in.ObjectHeightMm, in.RadiusMultiplier)
	if err != nil {
		return nil, err
	}
	trace.Info("lights at (±%.1f, %.1f) mm", placement.OffsetXMm, placement.OffsetYMm)

	r := &Report{
		Camera:         in.Camera,
		FocalLengthMm:  in.FocalLengthMm,
		ObjectWidthMm:  in.ObjectWidthMm,
		ObjectHeightMm: in.ObjectHeightMm,
		TargetPPI:      in.TargetPPI,
		Optics:         res,
		Lighting:       placement,
		Distance:       units.Measurement{Mm: res.DistanceMm}.InAll(),
		LightX:         units.Measurement{Mm: placement.OffsetXMm}.InAll(),
		LightY:         units.Measurement{Mm: placement.OffsetYMm}.InAll(),
	}

	if res.SensorUsageWPct > 100 {
		r.Warnings = append(r.Warnings, "object width does not fit in frame at the requested resolution")
	}
	if res.SensorUsageHPct > 100 {
		r.Warnings = append(r.Warnings, "object height does not fit in frame at the requested resolution")
	}
	if res.ExceedsFrame {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("target %.0f ppi exceeds the maximum of %.2f ppi", in.TargetPPI, res.MaxPPI))
	}
	for _, w := range r.Warnings {
		trace.Warn("%s", w)
	}

	return r, nil
}

// String renders the report as a plain-text summary.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Camera: %s\n", r.Camera.Name)
	fmt.Fprintf(&sb, "Sensor size: %g x %g mm / %d x %d pixels\n",
		r.Camera.SensorWidthMm, r.Camera.SensorHeightMm,
		r.Camera.SensorWidthPx, r.Camera.SensorHeightPx)
	fmt.Fprintf(&sb, "Focal length: %g mm\n", r.FocalLengthMm)
	fmt.Fprintf(&sb, "Using %.2f%% of sensor's width and %.2f%% of height\n",
		r.Optics.SensorUsageWPct, r.Optics.SensorUsageHPct)
	fmt.Fprintf(&sb, "Max PPI: %.2f\n", r.Optics.MaxPPI)
	fmt.Fprintf(&sb, "5%% Fit PPI: %.2f\n", r.Optics.FitPPI95)
	fmt.Fprintf(&sb, "Dimensions: %d x %d pixels at %.0f ppi\n",
		r.Optics.OutputWidthPx, r.Optics.OutputHeightPx, r.TargetPPI)
	fmt.Fprintf(&sb, "Camera distance: %s\n", units.Measurement{Mm: r.Optics.DistanceMm})
	fmt.Fprintf(&sb, "Lights distance x: %s\n", units.Measurement{Mm: r.Lighting.OffsetXMm})
	fmt.Fprintf(&sb, "Lights distance y: %s\n", units.Measurement{Mm: r.Lighting.OffsetYMm})
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "Warning! %s\n", capitalize(w))
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
