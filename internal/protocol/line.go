package protocol

import (
	"log/slog"
	"time"
)

const (
	// MaxLineLength is the fixed capacity of the line accumulation buffer.
	MaxLineLength = 512

	// LineStaleTimeout bounds how long a partial line is held when no
	// terminator arrives.
	LineStaleTimeout = 5 * time.Second
)

// LineAssembler accumulates transport bytes into newline-terminated lines.
// Carriage returns are ignored, empty lines are never emitted, and a line
// that outgrows the fixed buffer is discarded whole, terminator included.
type LineAssembler struct {
	buf        []byte
	discarding bool
	lastLine   time.Time
	logger     *slog.Logger

	// Statistics
	linesCompleted uint64
	linesDropped   uint64
}

// NewLineAssembler creates an assembler whose staleness clock starts at now.
func NewLineAssembler(logger *slog.Logger, now time.Time) *LineAssembler {
	return &LineAssembler{
		buf:      make([]byte, 0, MaxLineLength),
		lastLine: now,
		logger:   logger,
	}
}

// Feed consumes one transport byte. It returns a complete line and true
// when the byte terminates a non-empty line.
func (a *LineAssembler) Feed(b byte, now time.Time) (string, bool) {
	switch b {
	case '\r':
		// Tolerated before LF, never part of a line.
	case '\n':
		if a.discarding {
			a.discarding = false
			return "", false
		}
		if len(a.buf) > 0 {
			line := string(a.buf)
			a.buf = a.buf[:0]
			a.lastLine = now
			a.linesCompleted++
			return line, true
		}
	default:
		if a.discarding {
			return "", false
		}
		if len(a.buf) >= MaxLineLength {
			a.logger.Warn("Line buffer overflow, discarding line",
				slog.Int("dropped_bytes", len(a.buf)+1),
			)
			a.buf = a.buf[:0]
			a.linesDropped++
			// Swallow the rest of the oversized line so its tail is not
			// misread as a fresh command.
			a.discarding = true
			return "", false
		}
		a.buf = append(a.buf, b)
	}
	return "", false
}

// Expire discards a stale partial line. It reports whether anything was
// discarded.
func (a *LineAssembler) Expire(now time.Time) bool {
	if len(a.buf) == 0 || now.Sub(a.lastLine) <= LineStaleTimeout {
		return false
	}
	a.logger.Warn("Discarding stale partial line",
		slog.Int("pending_bytes", len(a.buf)),
	)
	a.buf = a.buf[:0]
	a.lastLine = now
	a.linesDropped++
	return true
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (a *LineAssembler) Pending() int {
	return len(a.buf)
}

// LinesCompleted returns the number of lines emitted so far.
func (a *LineAssembler) LinesCompleted() uint64 {
	return a.linesCompleted
}

// LinesDropped returns the number of lines discarded to overflow or
// staleness.
func (a *LineAssembler) LinesDropped() uint64 {
	return a.linesDropped
}
