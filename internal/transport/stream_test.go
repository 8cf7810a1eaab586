package transport

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStreamPumpsBytes(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader("abc"), &out, testLogger())

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Pump did not finish")
	}

	var got []byte
	for {
		b, ok := s.ReadByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	if string(got) != "abc" {
		t.Errorf("Read %q, want abc", got)
	}
}

func TestStreamReadByteNonBlocking(t *testing.T) {
	s := NewStream(strings.NewReader(""), &bytes.Buffer{}, testLogger())

	if _, ok := s.ReadByte(); ok {
		t.Error("ReadByte reported a byte on an empty stream")
	}
}

func TestStreamWriteLineAppendsTerminator(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out, testLogger())

	if err := s.WriteLine(`{"type":"heartbeat_ack"}`); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	if out.String() != "{\"type\":\"heartbeat_ack\"}\n" {
		t.Errorf("Wrote %q", out.String())
	}
}

func TestStreamDropsOnFullQueue(t *testing.T) {
	big := strings.Repeat("z", streamQueueSize*2)
	s := NewStream(strings.NewReader(big), &bytes.Buffer{}, testLogger())

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Pump did not finish")
	}

	queued := 0
	for {
		if _, ok := s.ReadByte(); !ok {
			break
		}
		queued++
	}
	if queued != streamQueueSize {
		t.Errorf("Queued %d bytes, want %d", queued, streamQueueSize)
	}
	if s.Dropped() != streamQueueSize {
		t.Errorf("Dropped = %d, want %d", s.Dropped(), streamQueueSize)
	}
}
