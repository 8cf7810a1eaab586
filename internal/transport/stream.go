package transport

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// streamQueueSize buffers host bytes between the pump goroutine and the
// tick. Bytes arriving while the queue is full are dropped; the line
// assembler resyncs on the next terminator.
const streamQueueSize = 4096

// Stream adapts a byte-oriented io.Reader/io.Writer pair (stdio, a
// serial device, a PTY) into the device's non-blocking transport. A pump
// goroutine reads the underlying stream into a bounded queue.
type Stream struct {
	w       io.Writer
	bytes   chan byte
	logger  *slog.Logger
	done    chan struct{}
	dropped atomic.Uint64
}

// NewStream starts the pump goroutine. The pump exits on any read error
// from r, EOF included; the underlying reader is not closed here.
func NewStream(r io.Reader, w io.Writer, logger *slog.Logger) *Stream {
	s := &Stream{
		w:      w,
		bytes:  make(chan byte, streamQueueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	defer close(s.done)

	buf := make([]byte, 512)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			select {
			case s.bytes <- buf[i]:
			default:
				s.dropped.Add(1)
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("Transport read failed", slog.String("error", err.Error()))
			} else {
				s.logger.Info("Transport reached EOF")
			}
			return
		}
	}
}

// ReadByte returns the next queued host byte without blocking.
func (s *Stream) ReadByte() (byte, bool) {
	select {
	case b := <-s.bytes:
		return b, true
	default:
		return 0, false
	}
}

// WriteLine sends one response line with its terminator.
func (s *Stream) WriteLine(line string) error {
	if _, err := fmt.Fprintf(s.w, "%s\n", line); err != nil {
		return fmt.Errorf("writing response line: %w", err)
	}
	return nil
}

// Done is closed when the pump goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Dropped returns the number of host bytes discarded to a full queue.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}
