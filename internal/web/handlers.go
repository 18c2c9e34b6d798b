package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/diagram"
	"github.com/pjakub/copystand/internal/logic/lighting"
	"github.com/pjakub/copystand/internal/logic/optics"
	"github.com/pjakub/copystand/internal/report"
	"github.com/pjakub/copystand/internal/units"
)

// FormDefaults holds the default form values served to the UI.
type FormDefaults struct {
	Camera           string  `json:"camera"`
	FocalLengthMm    float64 `json:"focal_length_mm"`
	Unit             string  `json:"unit"`
	ObjectWidth      float64 `json:"object_width"`
	ObjectHeight     float64 `json:"object_height"`
	PPI              float64 `json:"ppi"`
	RadiusMultiplier float64 `json:"radius_multiplier"`
}

// CalculateInput is the request body for POST /api/calculate. Object
// dimensions are in the given unit; everything else is unit-fixed.
type CalculateInput struct {
	Camera           string  `json:"camera"`
	FocalLengthMm    float64 `json:"focal_length_mm"`
	Unit             string  `json:"unit"`
	ObjectWidth      float64 `json:"object_width"`
	ObjectHeight     float64 `json:"object_height"`
	PPI              float64 `json:"ppi"`
	RadiusMultiplier float64 `json:"radius_multiplier"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Catalog  *catalog.Catalog
	Defaults FormDefaults
	Stream   *TraceStream
	staticFS fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(cat *catalog.Catalog, defaults FormDefaults, stream *TraceStream, staticFS fs.FS) *Handlers {
	return &Handlers{
		Catalog:  cat,
		Defaults: defaults,
		Stream:   stream,
		staticFS: staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleConfig returns the form default values as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Defaults)
}

// HandleCameras returns all catalog entries, sorted by name.
func (h *Handlers) HandleCameras(w http.ResponseWriter, r *http.Request) {
	specs := make([]catalog.CameraSpec, 0, h.Catalog.Len())
	for _, name := range h.Catalog.Names() {
		spec, err := h.Catalog.Lookup(name)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cameras": specs})
}

// HandleCalculate handles POST /api/calculate.
func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var in CalculateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	rep, err := h.buildReport(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleSensorDiagram renders the sensor-fit plot as WebP for the
// parameters given in the query string (GET, stateless).
func (h *Handlers) HandleSensorDiagram(w http.ResponseWriter, r *http.Request) {
	rep, err := h.buildReport(h.inputFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}

	// On-film size follows sensor usage so an overflowing object is
	// visible.
	img := diagram.SensorFit(rep.Camera,
		rep.Camera.SensorWidthMm*rep.Optics.SensorUsageWPct/100,
		rep.Camera.SensorHeightMm*rep.Optics.SensorUsageHPct/100)

	w.Header().Set("Content-Type", "image/webp")
	if err := diagram.EncodeWebP(w, img); err != nil {
		http.Error(w, "diagram rendering failed", http.StatusInternalServerError)
	}
}

// HandleLightingDiagram renders the light-placement plot as WebP for
// the parameters given in the query string.
func (h *Handlers) HandleLightingDiagram(w http.ResponseWriter, r *http.Request) {
	rep, err := h.buildReport(h.inputFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}

	img := diagram.Lighting(rep.ObjectWidthMm, rep.ObjectHeightMm, rep.Lighting)

	w.Header().Set("Content-Type", "image/webp")
	if err := diagram.EncodeWebP(w, img); err != nil {
		http.Error(w, "diagram rendering failed", http.StatusInternalServerError)
	}
}

// HandleTraceStream handles GET /status/stream for SSE.
func (h *Handlers) HandleTraceStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Stream.Subscribe()
	defer unsub()

	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// buildReport resolves the camera, converts object measurements to mm
// and runs the full calculation.
func (h *Handlers) buildReport(in CalculateInput) (*report.Report, error) {
	spec, err := h.Catalog.Lookup(in.Camera)
	if err != nil {
		return nil, err
	}

	unit, err := units.ParseUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	widthMm, err := units.ToMillimeters(in.ObjectWidth, unit)
	if err != nil {
		return nil, err
	}
	heightMm, err := units.ToMillimeters(in.ObjectHeight, unit)
	if err != nil {
		return nil, err
	}

	return report.Build(report.Inputs{
		Camera:           spec,
		FocalLengthMm:    in.FocalLengthMm,
		ObjectWidthMm:    widthMm,
		ObjectHeightMm:   heightMm,
		TargetPPI:        in.PPI,
		RadiusMultiplier: in.RadiusMultiplier,
	})
}

// inputFromQuery builds a CalculateInput from URL query parameters,
// falling back to form defaults for anything missing.
func (h *Handlers) inputFromQuery(q url.Values) CalculateInput {
	in := CalculateInput(h.Defaults)
	if v := q.Get("camera"); v != "" {
		in.Camera = v
	}
	if v := q.Get("unit"); v != "" {
		in.Unit = v
	}
	in.FocalLengthMm = queryFloat(q, "focal_length_mm", in.FocalLengthMm)
	in.ObjectWidth = queryFloat(q, "object_width", in.ObjectWidth)
	in.ObjectHeight = queryFloat(q, "object_height", in.ObjectHeight)
	in.PPI = queryFloat(q, "ppi", in.PPI)
	in.RadiusMultiplier = queryFloat(q, "radius_multiplier", in.RadiusMultiplier)
	return in
}

func queryFloat(q url.Values, key string, fallback float64) float64 {
	v := q.Get(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// writeError maps calculation errors to HTTP status codes: unknown
// camera → 404, invalid input → 400, anything else → 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCamera):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, optics.ErrInvalidInput),
		errors.Is(err, lighting.ErrInvalidInput),
		errors.Is(err, units.ErrUnknownUnit),
		errors.Is(err, units.ErrNegative):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":"encode failed"}`)
	}
}
