package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCamera is returned when a camera name is not in the catalog.
var ErrUnknownCamera = errors.New("unknown camera")

// CameraSpec describes the sensor of a camera body or digital back.
type CameraSpec struct {
	Name           string  `yaml:"-" json:"name"`
	SensorWidthMm  float64 `yaml:"sensor_w_mm" json:"sensor_w_mm"`
	SensorHeightMm float64 `yaml:"sensor_h_mm" json:"sensor_h_mm"`
	SensorWidthPx  int     `yaml:"sensor_w_px" json:"sensor_w_px"`
	SensorHeightPx int     `yaml:"sensor_h_px" json:"sensor_h_px"`
}

// AspectRatio returns sensor width / height in pixels.
func (c CameraSpec) AspectRatio() float64 {
	return float64(c.SensorWidthPx) / float64(c.SensorHeightPx)
}

// cameras.yaml is the built-in table of camera bodies and digital backs
// with sensor size and pixel dimensions.
//
//go:embed cameras.yaml
var embeddedCameras []byte

// Catalog is an immutable camera name → sensor spec lookup table,
// loaded once at startup.
type Catalog struct {
	specs map[string]CameraSpec
	names []string
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parse(data)
}

// Embedded returns the built-in catalog.
func Embedded() (*Catalog, error) {
	return parse(embeddedCameras)
}

func parse(data []byte) (*Catalog, error) {
	var raw map[string]CameraSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	specs := make(map[string]CameraSpec, len(raw))
	names := make([]string, 0, len(raw))
	for name, spec := range raw {
		spec.Name = name
		if err := validate(spec); err != nil {
			return nil, fmt.Errorf("camera %q: %w", name, err)
		}
		specs[name] = spec
		names = append(names, name)
	}
	sort.Strings(names)

	return &Catalog{specs: specs, names: names}, nil
}

func validate(spec CameraSpec) error {
	if spec.SensorWidthMm <= 0 || spec.SensorHeightMm <= 0 {
		return fmt.Errorf("sensor size must be positive, got %g x %g mm",
			spec.SensorWidthMm, spec.SensorHeightMm)
	}
	if spec.SensorWidthPx <= 0 || spec.SensorHeightPx <= 0 {
		return fmt.Errorf("sensor resolution must be positive, got %d x %d px",
			spec.SensorWidthPx, spec.SensorHeightPx)
	}
	return nil
}

// Lookup returns the spec for an exact camera name.
func (c *Catalog) Lookup(name string) (CameraSpec, error) {
	spec, ok := c.specs[name]
	if !ok {
		return CameraSpec{}, fmt.Errorf("%w: %q", ErrUnknownCamera, name)
	}
	return spec, nil
}

// Names returns all camera names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of cameras in the catalog.
func (c *Catalog) Len() int {
	return len(c.specs)
}
