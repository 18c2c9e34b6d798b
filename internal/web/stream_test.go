package web

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTraceStream_SubscribeAndReceive(t *testing.T) {
	s := NewTraceStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	s.Publish("trace", "distance 883.3 mm")

	select {
	case msg := <-ch:
		var evt TraceEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "distance 883.3 mm" {
			t.Errorf("msg = %q, want \"distance 883.3 mm\"", evt.Msg)
		}
		if evt.Level != "trace" {
			t.Errorf("level = %q, want \"trace\"", evt.Level)
		}
		if evt.Time == "" {
			t.Error("event should carry a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for publish")
	}
}

func TestTraceStream_MultipleSubscribers(t *testing.T) {
	s := NewTraceStream()
	ch1, unsub1 := s.Subscribe()
	defer unsub1()
	ch2, unsub2 := s.Subscribe()
	defer unsub2()

	s.Publish("trace", "multi")

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case msg := <-ch:
			var evt TraceEvent
			if err := json.Unmarshal([]byte(msg), &evt); err != nil {
				t.Fatalf("subscriber %d: unmarshal: %v", i, err)
			}
			if evt.Msg != "multi" {
				t.Errorf("subscriber %d: msg = %q, want \"multi\"", i, evt.Msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timeout", i)
		}
	}
}

func TestTraceStream_UnsubscribeClosesChannel(t *testing.T) {
	s := NewTraceStream()
	ch, unsub := s.Subscribe()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

func TestTraceStream_FullChannelDropsMessage(t *testing.T) {
	s := NewTraceStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	for i := 0; i < 64; i++ {
		s.Publish("trace", "fill")
	}
	// Must neither panic nor block; the message is dropped.
	s.Publish("trace", "overflow")

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count != 64 {
				t.Errorf("expected 64 buffered messages, got %d", count)
			}
			return
		}
	}
}

func TestStreamWriter_PublishesTrimmed(t *testing.T) {
	s := NewTraceStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	w := s.Writer()
	n, err := w.Write([]byte("  trimmed line  \n"))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len("  trimmed line  \n") {
		t.Errorf("n = %d, want full length", n)
	}

	select {
	case msg := <-ch:
		var evt TraceEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "trimmed line" {
			t.Errorf("msg = %q, want \"trimmed line\"", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestStreamWriter_WhitespaceIgnored(t *testing.T) {
	s := NewTraceStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	s.Writer().Write([]byte("   \n"))

	select {
	case <-ch:
		t.Error("expected no event for whitespace-only write")
	case <-time.After(50 * time.Millisecond):
	}
}
