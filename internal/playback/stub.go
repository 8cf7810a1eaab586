//go:build !portaudio

package playback

import (
	"fmt"
	"log/slog"

	"github.com/voicelink/usb-voice-device/internal/audio"
	"github.com/voicelink/usb-voice-device/internal/metrics"
)

// Speaker is unavailable without the portaudio build tag.
type Speaker struct{}

// NewSpeaker always fails in this build.
func NewSpeaker(sampleRate int, logger *slog.Logger) (*Speaker, error) {
	return nil, fmt.Errorf("speaker output not available: rebuild with -tags portaudio")
}

// Start implements audio.Sink.
func (s *Speaker) Start() {}

// Stop implements audio.Sink.
func (s *Speaker) Stop() {}

// Write implements audio.Sink.
func (s *Speaker) Write(p []byte) int { return 0 }

// Close releases nothing.
func (s *Speaker) Close() {}

// Capture is unavailable without the portaudio build tag.
type Capture struct{}

// NewCapture always fails in this build.
func NewCapture(queue *audio.InjectionQueue, sampleRate, frameSize int,
	m *metrics.Metrics, logger *slog.Logger) (*Capture, error) {
	return nil, fmt.Errorf("microphone capture not available: rebuild with -tags portaudio")
}

// Start is never reached; NewCapture fails first.
func (c *Capture) Start() error {
	return fmt.Errorf("microphone capture not available: rebuild with -tags portaudio")
}

// Stop releases nothing.
func (c *Capture) Stop() {}
