package web

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP server and handlers.
type Server struct {
	addr     string
	handlers *Handlers
	log      *zap.Logger
}

// NewServer creates a server configured for the given address and dependencies.
func NewServer(addr string, handlers *Handlers, log *zap.Logger) *Server {
	return &Server{
		addr:     addr,
		handlers: handlers,
		log:      log,
	}
}

// NewStaticFS returns the embedded static assets rooted at static/.
func NewStaticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// Mux returns an http.Handler with all routes registered and request
// logging applied.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/config", s.handlers.HandleConfig)
	mux.HandleFunc("GET /api/cameras", s.handlers.HandleCameras)
	mux.HandleFunc("POST /api/calculate", s.handlers.HandleCalculate)
	mux.HandleFunc("GET /api/diagram/sensor", s.handlers.HandleSensorDiagram)
	mux.HandleFunc("GET /api/diagram/lighting", s.handlers.HandleLightingDiagram)
	mux.HandleFunc("GET /status/stream", s.handlers.HandleTraceStream)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.handlers.staticFS))))
	mux.HandleFunc("GET /{$}", s.handlers.ServeIndex) // exact match for root only

	return RequestLogger(s.log)(mux)
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Mux()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
