//go:build portaudio

package playback

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/voicelink/usb-voice-device/internal/audio"
	"github.com/voicelink/usb-voice-device/internal/metrics"
)

// speakerFrames is one drain chunk worth of samples.
const speakerFrames = audio.DrainChunkSize / 2

// Speaker plays drained PCM through the default output device.
type Speaker struct {
	stream *portaudio.Stream
	out    []int16
	logger *slog.Logger
}

// NewSpeaker opens the default output stream at the given rate.
func NewSpeaker(sampleRate int, logger *slog.Logger) (*Speaker, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	s := &Speaker{
		out:    make([]int16, speakerFrames),
		logger: logger,
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), speakerFrames, s.out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening output stream: %w", err)
	}
	s.stream = stream

	logger.Info("Speaker output opened", slog.Int("sample_rate", sampleRate))
	return s, nil
}

// Start begins playback on the output stream.
func (s *Speaker) Start() {
	if err := s.stream.Start(); err != nil {
		s.logger.Warn("Failed to start output stream", slog.String("error", err.Error()))
	}
}

// Stop halts the output stream.
func (s *Speaker) Stop() {
	if err := s.stream.Stop(); err != nil {
		s.logger.Warn("Failed to stop output stream", slog.String("error", err.Error()))
	}
}

// Write plays up to one chunk of little-endian PCM-16 bytes and returns
// how many bytes were accepted. A short final chunk is zero padded to
// the hardware frame size.
func (s *Speaker) Write(p []byte) int {
	frames := len(p) / 2
	if frames == 0 {
		return 0
	}
	if frames > speakerFrames {
		frames = speakerFrames
	}

	for i := range s.out {
		s.out[i] = 0
	}
	for i := 0; i < frames; i++ {
		s.out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}

	if err := s.stream.Write(); err != nil {
		s.logger.Warn("Output stream write failed", slog.String("error", err.Error()))
		return 0
	}
	return frames * 2
}

// Close releases the stream and the portaudio runtime.
func (s *Speaker) Close() {
	s.stream.Close()
	portaudio.Terminate()
}

// Capture reads microphone frames from the default input device and
// pushes them into the injection queue from its own goroutine.
type Capture struct {
	stream  *portaudio.Stream
	queue   *audio.InjectionQueue
	metrics *metrics.Metrics
	logger  *slog.Logger
	buf     []int16

	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup
}

// NewCapture opens the default input stream. Metrics may be nil.
func NewCapture(queue *audio.InjectionQueue, sampleRate, frameSize int,
	m *metrics.Metrics, logger *slog.Logger) (*Capture, error) {

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Capture{
		queue:   queue,
		metrics: m,
		logger:  logger,
		buf:     make([]int16, frameSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), frameSize, c.buf)
	if err != nil {
		cancel()
		portaudio.Terminate()
		return nil, fmt.Errorf("opening input stream: %w", err)
	}
	c.stream = stream

	logger.Info("Microphone capture opened",
		slog.Int("sample_rate", sampleRate),
		slog.Int("frame_size", frameSize),
	)
	return c, nil
}

// Start begins the capture loop.
func (c *Capture) Start() error {
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("starting input stream: %w", err)
	}
	c.wg.Add(1)
	go c.loop()
	return nil
}

func (c *Capture) loop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			c.logger.Warn("Microphone read failed", slog.String("error", err.Error()))
			return
		}

		samples := make([]int16, len(c.buf))
		copy(samples, c.buf)
		c.queue.Push(samples)

		if c.metrics != nil {
			c.metrics.RecordMicInjected(len(samples), c.queue.Len())
		}
	}
}

// Stop ends the capture loop and releases the stream.
func (c *Capture) Stop() {
	c.cancel()
	if err := c.stream.Stop(); err != nil {
		c.logger.Warn("Failed to stop input stream", slog.String("error", err.Error()))
	}
	c.wg.Wait()
	c.stream.Close()
	portaudio.Terminate()
}
