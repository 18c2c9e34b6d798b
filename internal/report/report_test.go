package report

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/logic/lighting"
	"github.com/pjakub/copystand/internal/logic/optics"
)

func referenceInputs() Inputs {
	return Inputs{
		Camera: catalog.CameraSpec{
			Name:           "Reference 36x24",
			SensorWidthMm:  36,
			SensorHeightMm: 24,
			SensorWidthPx:  7360,
			SensorHeightPx: 4912,
		},
		FocalLengthMm:    50,
		ObjectWidthMm:    500,
		ObjectHeightMm:   400,
		TargetPPI:        300,
		RadiusMultiplier: 1.2,
	}
}

func TestBuild_FullReport(t *testing.T) {
	rep, err := Build(referenceInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Optics.BindingAxis != optics.AxisHeight {
		t.Errorf("binding axis = %s, want height", rep.Optics.BindingAxis)
	}
	if rep.Optics.DistanceMm <= rep.FocalLengthMm {
		t.Errorf("distance %v must exceed focal length %v", rep.Optics.DistanceMm, rep.FocalLengthMm)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("no warnings expected at 300 ppi, got %v", rep.Warnings)
	}

	// Unit breakdowns must agree with the mm values.
	if math.Abs(rep.Distance.Mm-rep.Optics.DistanceMm) > 1e-9 {
		t.Errorf("distance breakdown mm = %v, want %v", rep.Distance.Mm, rep.Optics.DistanceMm)
	}
	if math.Abs(rep.Distance.Inches-rep.Optics.DistanceMm/25.4) > 1e-9 {
		t.Errorf("distance breakdown in = %v", rep.Distance.Inches)
	}
	if math.Abs(rep.LightX.Mm-rep.Lighting.OffsetXMm) > 1e-9 {
		t.Errorf("light x breakdown mm = %v, want %v", rep.LightX.Mm, rep.Lighting.OffsetXMm)
	}
	if math.Abs(rep.LightY.Mm-rep.Lighting.OffsetYMm) > 1e-9 {
		t.Errorf("light y breakdown mm = %v, want %v", rep.LightY.Mm, rep.Lighting.OffsetYMm)
	}
}

func TestBuild_WarningsWhenTargetExceedsMax(t *testing.T) {
	in := referenceInputs()
	in.TargetPPI = 600 // max for this setup is ~312
	rep, err := Build(in)
	if err != nil {
		t.Fatalf("over-max target is a warning, not an error: %v", err)
	}
	if len(rep.Warnings) == 0 {
		t.Fatal("expected warnings for target above max ppi")
	}
	joined := strings.Join(rep.Warnings, "; ")
	if !strings.Contains(joined, "height does not fit") {
		t.Errorf("expected height warning, got %q", joined)
	}
	if !strings.Contains(joined, "exceeds the maximum") {
		t.Errorf("expected max-ppi warning, got %q", joined)
	}
}

func TestBuild_InvalidFocalLength(t *testing.T) {
	in := referenceInputs()
	in.FocalLengthMm = 0
	_, err := Build(in)
	if err == nil {
		t.Fatal("expected error for zero focal length, got nil")
	}
	if !errors.Is(err, optics.ErrInvalidInput) {
		t.Errorf("expected optics.ErrInvalidInput, got %v", err)
	}
}

func TestBuild_InvalidMultiplier(t *testing.T) {
	in := referenceInputs()
	in.RadiusMultiplier = -1
	_, err := Build(in)
	if err == nil {
		t.Fatal("expected error for negative multiplier, got nil")
	}
	if !errors.Is(err, lighting.ErrInvalidInput) {
		t.Errorf("expected lighting.ErrInvalidInput, got %v", err)
	}
}

func TestReport_String(t *testing.T) {
	rep, err := Build(referenceInputs())
	if err != nil {
		t.Fatal(err)
	}
	s := rep.String()

	for _, want := range []string{
		"Camera: Reference 36x24",
		"Sensor size: 36 x 24 mm / 7360 x 4912 pixels",
		"Focal length: 50 mm",
		"Max PPI:",
		"5% Fit PPI:",
		"Camera distance:",
		"Lights distance x:",
		"Lights distance y:",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Warning!") {
		t.Errorf("no warning expected at 300 ppi:\n%s", s)
	}
}

func TestReport_String_IncludesWarnings(t *testing.T) {
	in := referenceInputs()
	in.TargetPPI = 600
	rep, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rep.String(), "Warning!") {
		t.Errorf("expected warning lines in summary:\n%s", rep.String())
	}
}
