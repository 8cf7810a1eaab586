package audio

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSink records sink calls. An optional script sets how many bytes
// each successive Write accepts; -1 accepts the whole write.
type fakeSink struct {
	data   []byte
	starts int
	stops  int
	script []int
}

func (s *fakeSink) Start() { s.starts++ }
func (s *fakeSink) Stop()  { s.stops++ }

func (s *fakeSink) Write(p []byte) int {
	n := len(p)
	if len(s.script) > 0 {
		n = s.script[0]
		s.script = s.script[1:]
		if n < 0 || n > len(p) {
			n = len(p)
		}
	}
	s.data = append(s.data, p[:n]...)
	return n
}

func newTestStaging(sink Sink) *StagingBuffer {
	s := NewStagingBuffer(testLogger())
	s.AttachSink(sink)
	s.sleep = func(time.Duration) {}
	return s
}

func TestStagingWriteRequiresOpenStream(t *testing.T) {
	s := newTestStaging(&fakeSink{})

	if s.Write([]byte{1, 2}) {
		t.Error("Write accepted without an open stream")
	}
	if s.RejectedWrites() != 1 {
		t.Errorf("Expected 1 rejected write, got %d", s.RejectedWrites())
	}
}

func TestStagingOpenResetsBuffer(t *testing.T) {
	s := newTestStaging(&fakeSink{})

	s.Open()
	s.Write([]byte{1, 2, 3})
	s.Open()

	if s.Size() != 0 {
		t.Errorf("Expected empty buffer after reopen, got %d bytes", s.Size())
	}
	if !s.Streaming() {
		t.Error("Expected stream open after Open")
	}
}

func TestStagingRejectsOverflowWholeWrite(t *testing.T) {
	s := newTestStaging(&fakeSink{})
	s.Open()

	if !s.Write(make([]byte, StagingCapacity)) {
		t.Fatal("Write up to capacity must succeed")
	}
	if s.Write([]byte{1}) {
		t.Error("Write past capacity must be rejected")
	}
	if s.Size() != StagingCapacity {
		t.Errorf("Rejected write changed buffer size to %d", s.Size())
	}

	// A partial-fit write is rejected whole, not truncated.
	s.Open()
	s.Write(make([]byte, StagingCapacity-10))
	if s.Write(make([]byte, 20)) {
		t.Error("Partially fitting write must be rejected whole")
	}
	if s.Size() != StagingCapacity-10 {
		t.Errorf("Buffer size changed by rejected write: %d", s.Size())
	}
}

func TestStagingCloseDrainsInBoundedChunks(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStaging(sink)

	payload := make([]byte, 1300)
	for i := range payload {
		payload[i] = byte(i)
	}

	s.Open()
	s.Write(payload)

	if !s.Close() {
		t.Fatal("Close reported no playback")
	}
	if !bytes.Equal(sink.data, payload) {
		t.Error("Drained bytes differ from staged bytes")
	}
	if sink.starts != 1 {
		t.Errorf("Expected 1 sink start, got %d", sink.starts)
	}
	if s.Streaming() {
		t.Error("Stream still open after Close")
	}
	if s.Drains() != 1 {
		t.Errorf("Expected 1 completed drain, got %d", s.Drains())
	}
}

func TestStagingCloseEmptyBuffer(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStaging(sink)

	s.Open()
	if s.Close() {
		t.Error("Close with no staged audio reported playback")
	}
	if sink.starts != 0 {
		t.Error("Sink started for an empty drain")
	}
}

func TestStagingCloseWithoutSink(t *testing.T) {
	s := NewStagingBuffer(testLogger())
	s.sleep = func(time.Duration) {}

	s.Open()
	s.Write([]byte{1, 2})

	if s.Close() {
		t.Error("Close without a sink reported playback")
	}
}

func TestStagingDrainRestartsStalledSink(t *testing.T) {
	// First write stalls; the retry after restart succeeds.
	sink := &fakeSink{script: []int{0, -1}}
	s := newTestStaging(sink)

	payload := []byte{9, 8, 7}
	s.Open()
	s.Write(payload)

	if !s.Close() {
		t.Fatal("Close reported no playback")
	}
	if !bytes.Equal(sink.data, payload) {
		t.Errorf("Drained %v, want %v", sink.data, payload)
	}
	if sink.stops != 1 {
		t.Errorf("Expected 1 sink stop, got %d", sink.stops)
	}
	if sink.starts != 2 {
		t.Errorf("Expected start, restart = 2 starts, got %d", sink.starts)
	}
	if s.StallRestarts() != 1 {
		t.Errorf("Expected 1 stall restart, got %d", s.StallRestarts())
	}
}

func TestStagingDrainHandlesPartialWrites(t *testing.T) {
	// Sink accepts 100 bytes at a time.
	sink := &fakeSink{}
	for i := 0; i < 20; i++ {
		sink.script = append(sink.script, 100)
	}
	s := newTestStaging(sink)

	payload := make([]byte, 900)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	s.Open()
	s.Write(payload)

	if !s.Close() {
		t.Fatal("Close reported no playback")
	}
	if !bytes.Equal(sink.data, payload) {
		t.Error("Partial-write drain lost or reordered bytes")
	}
}

func TestStagingDrainRepeatedStalls(t *testing.T) {
	// Stall on every other write; the loop must still finish.
	sink := &fakeSink{script: []int{0, 64, 0, 64, 0, -1}}
	s := newTestStaging(sink)

	payload := make([]byte, 600)
	s.Open()
	s.Write(payload)

	if !s.Close() {
		t.Fatal("Close reported no playback")
	}
	if len(sink.data) != len(payload) {
		t.Errorf("Drained %d bytes, want %d", len(sink.data), len(payload))
	}
}
