package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Conversion factors to millimeters.
const (
	MmPerCm   = 10.0
	MmPerInch = 25.4
	MmPerFoot = 304.8
)

// Unit is a linear unit of measurement.
type Unit string

const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Inch       Unit = "in"
	Foot       Unit = "ft"
)

// ErrNegative is returned when a negative length is converted.
// Distances in this system are never physically negative.
var ErrNegative = errors.New("measurement must not be negative")

// ErrUnknownUnit is returned for a unit string that cannot be parsed.
var ErrUnknownUnit = errors.New("unknown unit")

// ParseUnit parses a unit name. Common aliases ("inch", "inches",
// "feet", "foot") are accepted.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "millimeter", "millimeters":
		return Millimeter, nil
	case "cm", "centimeter", "centimeters":
		return Centimeter, nil
	case "in", "inch", "inches":
		return Inch, nil
	case "ft", "foot", "feet":
		return Foot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// ToMillimeters converts a value in the given unit to millimeters.
func ToMillimeters(value float64, unit Unit) (float64, error) {
	if value < 0 {
		return 0, fmt.Errorf("%w: got %g %s", ErrNegative, value, unit)
	}
	switch unit {
	case Millimeter:
		return value, nil
	case Centimeter:
		return value * MmPerCm, nil
	case Inch:
		return value * MmPerInch, nil
	case Foot:
		return value * MmPerFoot, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// FromMillimeters converts a value in millimeters to the given unit.
func FromMillimeters(mm float64, unit Unit) (float64, error) {
	if mm < 0 {
		return 0, fmt.Errorf("%w: got %g mm", ErrNegative, mm)
	}
	switch unit {
	case Millimeter:
		return mm, nil
	case Centimeter:
		return mm / MmPerCm, nil
	case Inch:
		return mm / MmPerInch, nil
	case Foot:
		return mm / MmPerFoot, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// FeetInches decomposes a length in millimeters into whole feet and
// remaining inches.
func FeetInches(mm float64) (feet int, inches float64, err error) {
	if mm < 0 {
		return 0, 0, fmt.Errorf("%w: got %g mm", ErrNegative, mm)
	}
	totalInches := mm / MmPerInch
	feet = int(totalInches / 12)
	inches = totalInches - float64(feet)*12
	return feet, inches, nil
}

// Measurement is a length stored in millimeters, formattable in all
// supported unit representations.
type Measurement struct {
	Mm float64
}

// Breakdown is a measurement expressed in every supported unit.
type Breakdown struct {
	Mm     float64 `json:"mm"`
	Cm     float64 `json:"cm"`
	Inches float64 `json:"in"`
	Feet   int     `json:"ft"`
	FtIn   float64 `json:"ft_in"` // inches remaining after whole feet
}

// InAll returns the measurement in mm, cm, inches and feet+inches.
func (m Measurement) InAll() Breakdown {
	totalInches := m.Mm / MmPerInch
	feet := int(totalInches / 12)
	return Breakdown{
		Mm:     m.Mm,
		Cm:     m.Mm / MmPerCm,
		Inches: totalInches,
		Feet:   feet,
		FtIn:   totalInches - float64(feet)*12,
	}
}

// String formats the measurement in all four representations, e.g.
// "4088.90 mm / 408.89 cm / 160.98 in / 13 ft 4.98 in".
// Rounding happens here only; stored values stay exact.
func (m Measurement) String() string {
	b := m.InAll()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%.2f mm / %.2f cm / %.2f in / ", b.Mm, b.Cm, b.Inches)
	if b.Feet > 0 {
		fmt.Fprintf(&sb, "%d ft ", b.Feet)
	}
	fmt.Fprintf(&sb, "%s in", trimZeros(b.FtIn))
	return sb.String()
}

// trimZeros formats inches with two decimals, dropping a trailing ".00".
func trimZeros(v float64) string {
	if math.Abs(v-math.Round(v)) < 0.005 {
		return fmt.Sprintf("%d", int(math.Round(v)))
	}
	return fmt.Sprintf("%.2f", v)
}
