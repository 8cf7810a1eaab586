package audio

import (
	"log/slog"
	"time"
)

const (
	// StagingCapacity is the fixed size of the staging buffer, matching
	// the playback pipeline's 16 KiB buffer.
	StagingCapacity = 16384

	// DrainChunkSize bounds each write handed to the sink.
	DrainChunkSize = 512

	// Drain pacing.
	drainRestartPause = 10 * time.Millisecond
	drainPartialPause = 5 * time.Millisecond
	drainChunkPause   = time.Millisecond
)

// Sink is the audio output the staging buffer drains into. Write returns
// the number of bytes the sink accepted; zero signals a stalled sink.
type Sink interface {
	Start()
	Stop()
	Write(p []byte) int
}

// StagingBuffer accumulates one audio stream in a fixed-capacity buffer
// and drains it to a sink in bounded writes. At most one stream is open
// at a time; opening resets the buffer.
type StagingBuffer struct {
	buf       []byte
	streaming bool
	sink      Sink
	logger    *slog.Logger
	sleep     func(time.Duration)

	// Statistics
	rejectedWrites uint64
	drains         uint64
	stallRestarts  uint64
}

// NewStagingBuffer creates an empty, closed staging buffer with no sink.
func NewStagingBuffer(logger *slog.Logger) *StagingBuffer {
	return &StagingBuffer{
		buf:    make([]byte, 0, StagingCapacity),
		logger: logger,
		sleep:  time.Sleep,
	}
}

// AttachSink binds the output sink. With a nil sink every drain is a
// logged no-op.
func (s *StagingBuffer) AttachSink(sink Sink) {
	s.sink = sink
}

// Open resets the buffer and marks a stream in progress.
func (s *StagingBuffer) Open() {
	s.buf = s.buf[:0]
	s.streaming = true
}

// Write appends data to the open stream. A write that would exceed the
// fixed capacity is rejected whole, leaving the buffer unchanged. Writes
// while no stream is open are rejected.
func (s *StagingBuffer) Write(p []byte) bool {
	if !s.streaming {
		s.logger.Warn("Audio write without an open stream",
			slog.Int("bytes", len(p)),
		)
		s.rejectedWrites++
		return false
	}
	if len(s.buf)+len(p) > StagingCapacity {
		s.logger.Warn("Staging buffer full, dropping write",
			slog.Int("bytes", len(p)),
			slog.Int("buffered", len(s.buf)),
		)
		s.rejectedWrites++
		return false
	}
	s.buf = append(s.buf, p...)
	return true
}

// Close ends the stream and synchronously drains the staged bytes to the
// sink in DrainChunkSize writes. A zero-length write restarts the sink
// and retries the same chunk once; a partial write advances by the bytes
// accepted and retries the remainder after a short pause. There is no
// retry ceiling: a sink that never makes progress blocks the caller.
// It reports whether any audio reached the sink.
func (s *StagingBuffer) Close() bool {
	s.streaming = false

	if s.sink == nil {
		s.logger.Error("No audio sink attached, staged audio discarded",
			slog.Int("bytes", len(s.buf)),
		)
		return false
	}
	if len(s.buf) == 0 {
		s.logger.Warn("No staged audio to play")
		return false
	}

	s.logger.Info("Draining staged audio to sink",
		slog.Int("bytes", len(s.buf)),
	)

	s.sink.Start()

	offset := 0
	for offset < len(s.buf) {
		chunk := len(s.buf) - offset
		if chunk > DrainChunkSize {
			chunk = DrainChunkSize
		}

		written := s.sink.Write(s.buf[offset : offset+chunk])
		if written == 0 {
			// Sink stopped or its queue is full: restart and retry this
			// chunk once before looping.
			s.stallRestarts++
			s.logger.Warn("Sink accepted no bytes, restarting sink",
				slog.Int("offset", offset),
			)
			s.sink.Stop()
			s.sleep(drainRestartPause)
			s.sink.Start()
			s.sleep(drainRestartPause)
			written = s.sink.Write(s.buf[offset : offset+chunk])
		}

		offset += written

		if written < chunk {
			s.sleep(drainPartialPause)
		}
		s.sleep(drainChunkPause)
	}

	s.drains++
	s.logger.Info("Finished draining staged audio",
		slog.Int("bytes", offset),
	)
	return true
}

// Size returns the number of staged bytes.
func (s *StagingBuffer) Size() int {
	return len(s.buf)
}

// Streaming reports whether a stream is open.
func (s *StagingBuffer) Streaming() bool {
	return s.streaming
}

// Bytes returns the staged contents. The slice aliases the internal
// buffer and is valid only until the next Open.
func (s *StagingBuffer) Bytes() []byte {
	return s.buf
}

// RejectedWrites returns the number of writes refused for overflow or a
// closed stream.
func (s *StagingBuffer) RejectedWrites() uint64 {
	return s.rejectedWrites
}

// Drains returns the number of completed drains.
func (s *StagingBuffer) Drains() uint64 {
	return s.drains
}

// StallRestarts returns the number of sink restarts triggered by
// zero-length writes.
func (s *StagingBuffer) StallRestarts() uint64 {
	return s.stallRestarts
}
