package optics

import (
	"errors"
	"fmt"
	"math"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/units"
)

// ErrInvalidInput is returned when a request contains a non-positive or
// non-finite dimension, focal length or target resolution.
var ErrInvalidInput = errors.New("invalid optics input")

// Axis identifies which sensor dimension binds the framing.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

// Calculator computes camera distance and resolution metrics for a
// given camera sensor and lens focal length.
type Calculator struct {
	camera        catalog.CameraSpec
	focalLengthMm float64
}

// NewCalculator creates an optics calculator.
// Returns an error if the focal length is not a positive finite number
// or the sensor spec is incomplete.
func NewCalculator(camera catalog.CameraSpec, focalLengthMm float64) (*Calculator, error) {
	if !positiveFinite(focalLengthMm) {
		return nil, fmt.Errorf("%w: focal length must be > 0 mm, got %g", ErrInvalidInput, focalLengthMm)
	}
	if camera.SensorWidthMm <= 0 || camera.SensorHeightMm <= 0 ||
		camera.SensorWidthPx <= 0 || camera.SensorHeightPx <= 0 {
		return nil, fmt.Errorf("%w: camera sensor spec is incomplete", ErrInvalidInput)
	}
	return &Calculator{camera: camera, focalLengthMm: focalLengthMm}, nil
}

// Camera returns the sensor spec the calculator was built with.
func (c *Calculator) Camera() catalog.CameraSpec { return c.camera }

// FocalLengthMm returns the focal length the calculator was built with.
func (c *Calculator) FocalLengthMm() float64 { return c.focalLengthMm }

// HorizontalFOV calculates the horizontal angle of view in degrees.
// Formula: FOV = 2 × arctan(sensor_width / (2 × focal_length))
func (c *Calculator) HorizontalFOV() float64 {
	return 2.0 * math.Atan(c.camera.SensorWidthMm/(2.0*c.focalLengthMm)) * 180.0 / math.Pi
}

// VerticalFOV calculates the vertical angle of view in degrees.
// Formula: FOV = 2 × arctan(sensor_height / (2 × focal_length))
func (c *Calculator) VerticalFOV() float64 {
	return 2.0 * math.Atan(c.camera.SensorHeightMm/(2.0*c.focalLengthMm)) * 180.0 / math.Pi
}

// Request holds the flat object to frame and the desired output
// resolution. Dimensions are in millimeters.
type Request struct {
	ObjectWidthMm  float64
	ObjectHeightMm float64
	TargetPPI      float64
}

// Result holds the framing geometry and resolution metrics for one
// request. All fields are derived; nothing is persisted.
type Result struct {
	// BindingAxis is the sensor axis that clips first as the object
	// image grows, so it governs the required distance.
	BindingAxis Axis `json:"binding_axis"`

	// Magnification is image size / object size on the binding axis
	// (< 1, the object is demagnified onto the sensor).
	Magnification float64 `json:"magnification"`

	// DistanceMm is the lens-to-subject distance at which the object
	// exactly fills the sensor on the binding axis.
	DistanceMm float64 `json:"distance_mm"`

	// MaxPPI is the highest output density achievable before the
	// object would exceed the frame on the binding axis.
	MaxPPI float64 `json:"max_ppi"`

	// FitPPI95 is MaxPPI with a 5% margin against edge clipping and
	// lens softness.
	FitPPI95 float64 `json:"fit_ppi_95"`

	// Sensor usage per axis at the target PPI, in percent. The binding
	// axis reaches exactly 100 at MaxPPI; values above 100 mean the
	// object does not fit in frame at the requested density.
	SensorUsageWPct float64 `json:"sensor_usage_w_pct"`
	SensorUsageHPct float64 `json:"sensor_usage_h_pct"`

	// Output image size at the target PPI, rounded to nearest pixel.
	OutputWidthPx  int `json:"output_width_px"`
	OutputHeightPx int `json:"output_height_px"`

	// Angle of view in degrees.
	HorizontalFOVDeg float64 `json:"horizontal_fov_deg"`
	VerticalFOVDeg   float64 `json:"vertical_fov_deg"`

	// Subject-plane coverage of the full frame at DistanceMm.
	FrameWidthMm  float64 `json:"frame_width_mm"`
	FrameHeightMm float64 `json:"frame_height_mm"`

	// ExceedsFrame is set when TargetPPI > MaxPPI. A warning, not an
	// error: the caller may still want the numbers.
	ExceedsFrame bool `json:"exceeds_frame"`
}

// Compute runs the full framing calculation for one request.
func (c *Calculator) Compute(req Request) (Result, error) {
	if !positiveFinite(req.ObjectWidthMm) || !positiveFinite(req.ObjectHeightMm) {
		return Result{}, fmt.Errorf("%w: object dimensions must be > 0 mm, got %g x %g",
			ErrInvalidInput, req.ObjectWidthMm, req.ObjectHeightMm)
	}
	if !positiveFinite(req.TargetPPI) {
		return Result{}, fmt.Errorf("%w: target ppi must be > 0, got %g", ErrInvalidInput, req.TargetPPI)
	}

	// The axis with the larger object/sensor ratio clips first.
	// Ties go to width.
	ratioW := req.ObjectWidthMm / c.camera.SensorWidthMm
	ratioH := req.ObjectHeightMm / c.camera.SensorHeightMm

	axis := AxisWidth
	bindingRatio := ratioW
	if ratioH > ratioW {
		axis = AxisHeight
		bindingRatio = ratioH
	}

	// Exact thin-lens conjugate relation; stays correct at macro
	// distances where focal length is not small against distance.
	magnification := 1.0 / bindingRatio
	distanceMm := c.focalLengthMm * (bindingRatio + 1.0)

	objectWidthIn := req.ObjectWidthMm / units.MmPerInch
	objectHeightIn := req.ObjectHeightMm / units.MmPerInch

	maxPPIW := float64(c.camera.SensorWidthPx) / objectWidthIn
	maxPPIH := float64(c.camera.SensorHeightPx) / objectHeightIn
	maxPPI := maxPPIW
	if axis == AxisHeight {
		maxPPI = maxPPIH
	}

	return Result{
		BindingAxis:      axis,
		Magnification:    magnification,
		DistanceMm:       distanceMm,
		MaxPPI:           maxPPI,
		FitPPI95:         maxPPI * 0.95,
		SensorUsageWPct:  req.TargetPPI / maxPPIW * 100.0,
		SensorUsageHPct:  req.TargetPPI / maxPPIH * 100.0,
		OutputWidthPx:    int(math.Round(objectWidthIn * req.TargetPPI)),
		OutputHeightPx:   int(math.Round(objectHeightIn * req.TargetPPI)),
		HorizontalFOVDeg: c.HorizontalFOV(),
		VerticalFOVDeg:   c.VerticalFOV(),
		FrameWidthMm:     c.camera.SensorWidthMm / magnification,
		FrameHeightMm:    c.camera.SensorHeightMm / magnification,
		ExceedsFrame:     req.TargetPPI > maxPPI,
	}, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
