package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// TraceEvent is a single calculation-trace message for SSE delivery.
type TraceEvent struct {
	Time  string `json:"t"`
	Level string `json:"l,omitempty"`
	Msg   string `json:"msg"`
}

// TraceStream fans calculation-trace lines out to subscribed SSE
// clients. Slow clients drop messages rather than block a calculation.
type TraceStream struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewTraceStream creates an empty stream.
func NewTraceStream() *TraceStream {
	return &TraceStream{clients: make(map[chan string]struct{})}
}

// Subscribe registers a client and returns its channel plus a cleanup
// function the caller must invoke on disconnect.
func (s *TraceStream) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
		close(ch)
	}
}

// Publish sends one event to every subscriber, non-blocking.
func (s *TraceStream) Publish(level, msg string) {
	data, err := json.Marshal(TraceEvent{
		Time:  time.Now().Format(time.RFC3339),
		Level: level,
		Msg:   msg,
	})
	if err != nil {
		return
	}
	payload := string(data)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- payload:
		default:
			// client buffer full, drop
		}
	}
}

// Writer adapts the stream as an io.Writer so trace output can be teed
// into it; each Write publishes one event.
func (s *TraceStream) Writer() *streamWriter {
	return &streamWriter{s: s}
}

type streamWriter struct {
	s *TraceStream
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.s.Publish("trace", msg)
	}
	return len(p), nil
}
