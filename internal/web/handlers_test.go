package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"

	"github.com/pjakub/copystand/internal/catalog"
	"github.com/pjakub/copystand/internal/report"
)

func testDefaults() FormDefaults {
	return FormDefaults{
		Camera:           "Nikon D810",
		FocalLengthMm:    110,
		Unit:             "in",
		ObjectWidth:      10,
		ObjectHeight:     8,
		PPI:              300,
		RadiusMultiplier: 1.2,
	}
}

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	static := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>copystand</html>")},
	}
	handlers := NewHandlers(cat, testDefaults(), NewTraceStream(), static)
	return NewServer(":0", handlers, zap.NewNop()).Mux()
}

func calculateBody(mutate func(*CalculateInput)) *bytes.Buffer {
	in := CalculateInput(testDefaults())
	if mutate != nil {
		mutate(&in)
	}
	data, _ := json.Marshal(in)
	return bytes.NewBuffer(data)
}

// ---------- POST /api/calculate ----------

func TestHandleCalculate_OK(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", calculateBody(nil))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var rep report.Report
	if err := json.NewDecoder(w.Body).Decode(&rep); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rep.Camera.Name != "Nikon D810" {
		t.Errorf("camera = %q, want \"Nikon D810\"", rep.Camera.Name)
	}
	if rep.Optics.DistanceMm <= rep.FocalLengthMm {
		t.Errorf("distance %v must exceed focal length %v", rep.Optics.DistanceMm, rep.FocalLengthMm)
	}
	if rep.Lighting.OffsetXMm <= 0 || rep.Lighting.OffsetYMm <= 0 {
		t.Errorf("light offsets must be positive, got (%v, %v)",
			rep.Lighting.OffsetXMm, rep.Lighting.OffsetYMm)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("no warnings expected, got %v", rep.Warnings)
	}
}

func TestHandleCalculate_ObjectInCentimeters(t *testing.T) {
	mux := newTestMux(t)
	body := calculateBody(func(in *CalculateInput) {
		in.Unit = "cm"
		in.ObjectWidth = 60
		in.ObjectHeight = 40
	})
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var rep report.Report
	if err := json.NewDecoder(w.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.ObjectWidthMm != 600 || rep.ObjectHeightMm != 400 {
		t.Errorf("object = %g x %g mm, want 600 x 400", rep.ObjectWidthMm, rep.ObjectHeightMm)
	}
}

func TestHandleCalculate_UnknownCamera(t *testing.T) {
	mux := newTestMux(t)
	body := calculateBody(func(in *CalculateInput) { in.Camera = "NoSuchCam" })
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; body: %s", w.Code, w.Body.String())
	}
}

func TestHandleCalculate_InvalidJSON(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleCalculate_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CalculateInput)
	}{
		{"zero_focal", func(in *CalculateInput) { in.FocalLengthMm = 0 }},
		{"negative_width", func(in *CalculateInput) { in.ObjectWidth = -10 }},
		{"zero_ppi", func(in *CalculateInput) { in.PPI = 0 }},
		{"zero_multiplier", func(in *CalculateInput) { in.RadiusMultiplier = 0 }},
		{"bad_unit", func(in *CalculateInput) { in.Unit = "furlong" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(t)
			req := httptest.NewRequest(http.MethodPost, "/api/calculate", calculateBody(tc.mutate))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleCalculate_GetNotAllowed(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/calculate", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

// ---------- GET /api/cameras, /api/config ----------

func TestHandleCameras(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/cameras", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Cameras []catalog.CameraSpec `json:"cameras"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Cameras) == 0 {
		t.Fatal("expected at least one camera")
	}
	found := false
	for _, c := range resp.Cameras {
		if c.Name == "Nikon D810" {
			found = true
			if c.SensorWidthPx != 7360 {
				t.Errorf("sensor_w_px = %d, want 7360", c.SensorWidthPx)
			}
		}
	}
	if !found {
		t.Error("catalog response missing \"Nikon D810\"")
	}
}

func TestHandleConfig(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var d FormDefaults
	if err := json.NewDecoder(w.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d != testDefaults() {
		t.Errorf("defaults = %+v, want %+v", d, testDefaults())
	}
}

// ---------- GET / ----------

func TestServeIndex(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "copystand") {
		t.Errorf("unexpected index body: %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
}

func TestServeIndex_UnknownPathIs404(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---------- GET /api/diagram/* ----------

func TestHandleSensorDiagram_ReturnsWebP(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/diagram/sensor?object_width=20&object_height=16", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/webp" {
		t.Errorf("content type = %q, want image/webp", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("RIFF")) {
		t.Error("body does not look like a RIFF/WebP container")
	}
}

func TestHandleLightingDiagram_ReturnsWebP(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/diagram/lighting?radius_multiplier=1.5", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("RIFF")) {
		t.Error("body does not look like a RIFF/WebP container")
	}
}

func TestHandleDiagram_UnknownCamera(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/diagram/sensor?camera=NoSuchCam", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
