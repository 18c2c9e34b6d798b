package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/config"
	"github.com/pjakub/copystand/internal/diagram"
	"github.com/pjakub/copystand/internal/report"
	"github.com/pjakub/copystand/internal/trace"
	"github.com/pjakub/copystand/internal/units"
	"github.com/pjakub/copystand/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{}
	flag.Var(webPort, "web", "start web server on port; -web= for the configured address, -web 8980 for a custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	cameraName := flag.String("camera", "", "camera body / digital back name from the catalog")
	focalLengthMm := flag.Float64("focal_length_mm", 0, "override lens focal length in mm")
	objectWidth := flag.Float64("object_width", 0, "override object width (in -unit)")
	objectHeight := flag.Float64("object_height", 0, "override object height (in -unit)")
	unitName := flag.String("unit", "", "unit of the object measurements: mm, cm, in, ft")
	targetPPI := flag.Float64("ppi", 0, "override target resolution in pixels per inch")
	radiusMultiplier := flag.Float64("radius_multiplier", 0, "override light coverage radius multiplier")
	diagramsDir := flag.String("diagrams_dir", "", "write sensor-fit and lighting diagrams (WebP) to this directory")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	if err := validateOverrides(*focalLengthMm, *targetPPI, *radiusMultiplier, *objectWidth, *objectHeight); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, *cameraName, *focalLengthMm, *objectWidth, *objectHeight, *unitName, *targetPPI, *radiusMultiplier)

	logger, err := newLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	trace.Init(cfg.TraceLevel, cfg.LogMode)
	defer trace.Sync()

	// Load the camera catalog
	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("load catalog failed: %v", err)
	}
	logger.Info("catalog loaded", zap.Int("cameras", cat.Len()))

	if cfg.Defaults.Camera == "" {
		cfg.Defaults.Camera = cat.Names()[0]
	}

	if addr, serve := webPort.addr(cfg.Web.Addr); serve {
		stream := web.NewTraceStream()
		trace.SetSink(cfg.LogMode, stream.Writer())

		staticFS, err := web.NewStaticFS()
		if err != nil {
			log.Fatalf("static assets: %v", err)
		}
		handlers := web.NewHandlers(cat, formDefaults(cfg), stream, staticFS)
		srv := web.NewServer(addr, handlers, logger)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	// One-shot calculation with the effective config
	rep, err := runCalculation(cfg, cat)
	if err != nil {
		log.Fatalf("calculation failed: %v", err)
	}
	fmt.Print(rep.String())

	if *diagramsDir != "" {
		if err := writeDiagrams(*diagramsDir, rep); err != nil {
			log.Fatalf("write diagrams: %v", err)
		}
		fmt.Printf("Diagrams written to %s\n", *diagramsDir)
	}
}

// runCalculation resolves inputs from the effective config and builds
// the full report.
func runCalculation(cfg *config.Config, cat *catalog.Catalog) (*report.Report, error) {
	spec, err := cat.Lookup(cfg.Defaults.Camera)
	if err != nil {
		return nil, err
	}
	unit, err := units.ParseUnit(cfg.Defaults.Unit)
	if err != nil {
		return nil, err
	}
	widthMm, err := units.ToMillimeters(cfg.Defaults.ObjectWidth, unit)
	if err != nil {
		return nil, err
	}
	heightMm, err := units.ToMillimeters(cfg.Defaults.ObjectHeight, unit)
	if err != nil {
		return nil, err
	}

	return report.Build(report.Inputs{
		Camera:           spec,
		FocalLengthMm:    cfg.Defaults.FocalLengthMm,
		ObjectWidthMm:    widthMm,
		ObjectHeightMm:   heightMm,
		TargetPPI:        cfg.Defaults.PPI,
		RadiusMultiplier: cfg.Defaults.RadiusMultiplier,
	})
}

// writeDiagrams renders both plots for the report into dir.
func writeDiagrams(dir string, rep *report.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sensorFit := diagram.SensorFit(rep.Camera,
		rep.Camera.SensorWidthMm*rep.Optics.SensorUsageWPct/100,
		rep.Camera.SensorHeightMm*rep.Optics.SensorUsageHPct/100)
	if err := writeWebP(filepath.Join(dir, "sensor_fit.webp"), sensorFit); err != nil {
		return err
	}

	lightingPlot := diagram.Lighting(rep.ObjectWidthMm, rep.ObjectHeightMm, rep.Lighting)
	return writeWebP(filepath.Join(dir, "lighting.webp"), lightingPlot)
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return diagram.EncodeWebP(f, img)
}

// loadCatalog returns the user-supplied catalog if configured, the
// built-in one otherwise.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.Load(cfg.CatalogPath)
	}
	return catalog.Embedded()
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func formDefaults(cfg *config.Config) web.FormDefaults {
	return web.FormDefaults{
		Camera:           cfg.Defaults.Camera,
		FocalLengthMm:    cfg.Defaults.FocalLengthMm,
		Unit:             cfg.Defaults.Unit,
		ObjectWidth:      cfg.Defaults.ObjectWidth,
		ObjectHeight:     cfg.Defaults.ObjectHeight,
		PPI:              cfg.Defaults.PPI,
		RadiusMultiplier: cfg.Defaults.RadiusMultiplier,
	}
}

// validateOverrides checks that non-zero CLI overrides are positive
// finite numbers. Zero values are ignored (they mean "use config
// default").
func validateOverrides(values ...float64) error {
	for _, v := range values {
		if v == 0 {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("override values must be positive finite numbers, got %g", v)
		}
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero values are applied.
func applyOverrides(cfg *config.Config, camera string, focal, width, height float64, unit string, ppi, mult float64) {
	if camera != "" {
		cfg.Defaults.Camera = camera
	}
	if focal > 0 {
		cfg.Defaults.FocalLengthMm = focal
	}
	if width > 0 {
		cfg.Defaults.ObjectWidth = width
	}
	if height > 0 {
		cfg.Defaults.ObjectHeight = height
	}
	if unit != "" {
		cfg.Defaults.Unit = unit
	}
	if ppi > 0 {
		cfg.Defaults.PPI = ppi
	}
	if mult > 0 {
		cfg.Defaults.RadiusMultiplier = mult
	}
}

// webPortFlag implements flag.Value for -web: unset = disabled, -web= =
// use the configured address, -web 8980 = listen on :8980.
type webPortFlag struct {
	set bool
	val int
}

func (w *webPortFlag) String() string {
	if !w.set || w.val == 0 {
		return ""
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	w.set = true
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

// addr resolves the listen address: the configured one for a bare
// -web=, an explicit port otherwise. serve is false when the flag was
// not given at all.
func (w *webPortFlag) addr(configured string) (addr string, serve bool) {
	if !w.set {
		return "", false
	}
	if w.val == 0 {
		return configured, true
	}
	return fmt.Sprintf(":%d", w.val), true
}
