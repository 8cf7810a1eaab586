package device

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voicelink/usb-voice-device/internal/audio"
	"github.com/voicelink/usb-voice-device/internal/metrics"
	"github.com/voicelink/usb-voice-device/internal/protocol"
)

const (
	// bootAnnounceDelay is how long after start the second boot_complete
	// announcement goes out.
	bootAnnounceDelay = 3 * time.Second

	// statusPeriod is the unsolicited status cadence.
	statusPeriod = 10 * time.Second

	// maxBytesPerTick bounds transport reads in one tick so a flooding
	// host cannot starve the timers.
	maxBytesPerTick = 4096

	// Confirmation tone staged in place of compressed audio payloads.
	confirmationToneFrequency  = 440
	confirmationToneDurationMS = 100
	confirmationToneAmplitude  = 16000

	// DefaultSampleRate is the PCM rate of the audio path.
	DefaultSampleRate = 16000
)

// Transport is the byte-oriented host link. ReadByte must not block: ok
// reports whether a byte was available. WriteLine sends one complete
// response line.
type Transport interface {
	ReadByte() (byte, bool)
	WriteLine(line string) error
}

// Options configures optional device collaborators.
type Options struct {
	Sink       audio.Sink       // audio output; nil leaves drains as logged no-ops
	Metrics    *metrics.Metrics // nil disables metric recording
	SampleRate int              // PCM rate; 0 means DefaultSampleRate
	DumpDir    string           // write each drained stream as a WAV file when set
	Now        func() time.Time // clock override for tests
}

// Device is the command subsystem core. Tick must be called from a
// single goroutine; Snapshot, LastActivity, State, Requests and
// Injection are safe from others.
type Device struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	transport Transport

	assembler *protocol.LineAssembler
	staging   *audio.StagingBuffer
	chunks    *audio.ChunkTable
	state     *State
	requests  *Requests
	injection *audio.InjectionQueue

	sampleRate int
	dumpDir    string
	dumpSeq    int

	now   func() time.Time
	start time.Time

	mu           sync.Mutex
	bootSent     bool
	lastActivity time.Time
	lastStatus   time.Time

	// Statistics
	linesProcessed uint64
	unknownLines   uint64
	responsesSent  uint64
}

// NewDevice wires the subsystem together. The clock starts at the first
// Now() call; protocol timestamps are milliseconds since then.
func NewDevice(logger *slog.Logger, transport Transport, opts Options) *Device {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	start := nowFn()
	d := &Device{
		logger:     logger,
		metrics:    opts.Metrics,
		transport:  transport,
		assembler:  protocol.NewLineAssembler(logger, start),
		staging:    audio.NewStagingBuffer(logger),
		chunks:     audio.NewChunkTable(),
		state:      NewState(),
		requests:   NewRequests(),
		injection:  audio.NewInjectionQueue(),
		sampleRate: sampleRate,
		dumpDir:    opts.DumpDir,
		now:        nowFn,
		start:      start,
		lastStatus: start,
	}
	d.staging.AttachSink(opts.Sink)
	return d
}

// Start announces the subsystem on the host link.
func (d *Device) Start() {
	d.logger.Info("Device subsystem ready",
		slog.Int("staging_capacity", audio.StagingCapacity),
		slog.Int("sample_rate", d.sampleRate),
	)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendResponse("boot_complete")
}

// Tick runs one cooperative invocation: it services the boot and
// staleness timers, drains available transport bytes, processes complete
// lines synchronously, and emits the periodic status. A drain inside
// line processing blocks the tick for its duration.
func (d *Device) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()

	if !d.bootSent && now.Sub(d.start) > bootAnnounceDelay {
		d.sendResponse("boot_complete")
		d.bootSent = true
	}

	if d.assembler.Expire(now) {
		d.recordLineDropped()
	}

	for i := 0; i < maxBytesPerTick; i++ {
		b, ok := d.transport.ReadByte()
		if !ok {
			break
		}
		if line, complete := d.assembler.Feed(b, now); complete {
			d.processLine(line)
			// A drain may have blocked for a while.
			now = d.now()
		}
	}

	if now.Sub(d.lastStatus) > statusPeriod {
		d.sendStatus()
		d.lastStatus = now
	}

	if d.metrics != nil {
		d.metrics.SetStagedBytes(d.staging.Size())
	}
}

func (d *Device) processLine(line string) {
	d.lastActivity = d.now()
	d.linesProcessed++
	if d.metrics != nil {
		d.metrics.RecordLineProcessed()
	}

	d.logger.Debug("Complete line received", slog.Int("length", len(line)))

	msg, err := protocol.Decode(line)
	if err != nil {
		d.unknownLines++
		if d.metrics != nil {
			d.metrics.RecordUnknownMessage()
		}
		d.logger.Info("Unknown message type", slog.String("line", line))
		return
	}

	if d.metrics != nil {
		d.metrics.RecordMessage(msg.Type.String())
	}

	switch msg.Type {
	case protocol.TypeHeartbeat:
		d.sendResponse("heartbeat_ack")
	case protocol.TypeGetStatus:
		d.sendStatus()
	case protocol.TypeGetWakeWordOptions:
		d.sendWakeWordOptions()
	case protocol.TypeConfig:
		d.applyConfig(msg.Config)
	case protocol.TypeDisconnect:
		// Zeroing last activity makes the external heartbeat timeout
		// policy fire immediately.
		d.lastActivity = time.Time{}
		d.logger.Info("Host requested disconnect")
	case protocol.TypePlayTone:
		d.handlePlayTone(msg.Tone)
	case protocol.TypePlayAudioCompressed:
		d.handlePlayAudioCompressed(msg.Compressed)
	case protocol.TypePlayAudio:
		d.handlePlayAudio(msg.Audio)
	case protocol.TypePlayAudioChunk:
		d.handlePlayAudioChunk(msg.Chunk)
	case protocol.TypeStartAudioStream:
		d.logger.Debug("Raw audio stream opened")
		d.staging.Open()
	case protocol.TypeAudioDataChunk:
		d.handleAudioDataChunk(msg.Data)
	case protocol.TypeFinishAudioStream:
		d.finishStream()
		d.sendResponse("audio_stream_complete")
	}
}

func (d *Device) applyConfig(cfg *protocol.ConfigFields) {
	if cfg.Unmute {
		d.logger.Info("Unmute requested")
		d.requests.SetUnmute()
	}
	if cfg.Volume != nil {
		d.logger.Info("Volume change requested", slog.Float64("volume", *cfg.Volume))
		d.requests.SetVolume(*cfg.Volume)
	}
	if cfg.WakeWord != nil {
		d.logger.Debug("Wake word updated", slog.String("wake_word", *cfg.WakeWord))
		d.state.SetWakeWord(*cfg.WakeWord)
	}
	if cfg.Sensitivity != nil {
		d.logger.Debug("Sensitivity updated", slog.String("sensitivity", *cfg.Sensitivity))
		d.state.SetSensitivity(*cfg.Sensitivity)
	}
	if cfg.VoicePhase != nil {
		d.state.SetPhase(PhaseFromName(*cfg.VoicePhase))
	}
	d.sendResponse("config_received")
}

func (d *Device) handlePlayTone(tone *protocol.ToneFields) {
	d.logger.Info("Tone playback requested",
		slog.Int("frequency", tone.Frequency),
		slog.Int("duration_ms", tone.DurationMS),
	)
	d.requests.SetTone(ToneRequest{
		Frequency:  tone.Frequency,
		DurationMS: tone.DurationMS,
	})
	d.sendResponse("audio_played")
}

func (d *Device) handlePlayAudio(a *protocol.AudioFields) {
	if a.IsBatch && a.Batch == 1 {
		d.logger.Debug("Batched audio stream opened",
			slog.Int("total_batches", a.TotalBatches),
		)
		d.staging.Open()
	}
	if !a.HasData {
		d.logger.Debug("play_audio without audio data")
		return
	}
	if !a.IsBatch {
		d.staging.Open()
	}

	d.stageSamples(a.Samples)

	if !a.IsBatch || a.Batch >= a.TotalBatches {
		d.finishStream()
		d.sendResponse("audio_played")
	} else {
		d.sendResponse("batch_received")
	}
}

func (d *Device) handlePlayAudioChunk(c *protocol.ChunkFields) {
	if c.IsStart {
		d.logger.Debug("Chunked audio transfer started",
			slog.Int("total_chunks", c.TotalChunks),
		)
		d.chunks.Start(c.TotalChunks)
		d.staging.Open()
		return
	}
	if !c.HasData || c.ChunkIndex < 1 {
		return
	}

	if !d.chunks.Add(c.ChunkIndex, c.Samples) {
		d.logger.Warn("Dropping out-of-range audio chunk",
			slog.Int("chunk_index", c.ChunkIndex),
			slog.Int("total_chunks", d.chunks.Expected()),
		)
		return
	}
	d.logger.Debug("Audio chunk stored",
		slog.Int("chunk_index", c.ChunkIndex),
		slog.Int("received", d.chunks.Received()),
		slog.Int("total", d.chunks.Expected()),
	)

	if d.chunks.Complete() {
		d.stageSamples(d.chunks.Linearize())
		d.finishStream()
		d.sendResponse("audio_played")
	}
}

func (d *Device) handlePlayAudioCompressed(c *protocol.CompressedFields) {
	if !c.HasPayload {
		d.logger.Debug("play_audio_compressed without payload")
		return
	}
	// The compressed payload is acknowledged, not decoded: a short
	// confirmation tone is staged in its place.
	d.logger.Debug("Staging confirmation tone for compressed audio",
		slog.Int("sample_count", c.SampleCount),
	)
	d.staging.Open()
	d.stageSamples(audio.SynthesizeTone(
		confirmationToneFrequency,
		confirmationToneDurationMS,
		d.sampleRate,
		confirmationToneAmplitude,
	))
	d.finishStream()
	d.sendResponse("audio_played")
}

func (d *Device) handleAudioDataChunk(data *protocol.DataFields) {
	if len(data.Bytes) == 0 {
		return
	}
	if !d.staging.Write(data.Bytes) {
		if d.metrics != nil {
			d.metrics.RecordRejectedWrite()
		}
	}
}

// stageSamples clamps and encodes samples through the staging write path
// one sample at a time, so an overflowing transfer keeps its leading
// samples and drops the tail.
func (d *Device) stageSamples(samples []int32) {
	var b [2]byte
	rejected := 0
	for _, s := range samples {
		binary.LittleEndian.PutUint16(b[:], uint16(audio.ClampSample(s)))
		if !d.staging.Write(b[:]) {
			rejected++
		}
	}
	if rejected > 0 && d.metrics != nil {
		d.metrics.RecordRejectedWrite()
	}
}

// finishStream closes the staging stream and drains it. A successful
// drain arms the playback one-shot and, when configured, dumps the
// drained stream to a WAV file.
func (d *Device) finishStream() {
	size := d.staging.Size()
	stallsBefore := d.staging.StallRestarts()
	started := d.now()

	if !d.staging.Close() {
		return
	}

	d.requests.SetPlayback()
	if d.metrics != nil {
		d.metrics.RecordDrain(size, d.now().Sub(started))
		d.metrics.RecordDrainStalls(d.staging.StallRestarts() - stallsBefore)
	}
	if d.dumpDir != "" {
		d.dumpStream()
	}
}

func (d *Device) dumpStream() {
	data, err := audio.EncodeWAV(d.staging.Bytes(), d.sampleRate)
	if err != nil {
		d.logger.Warn("Failed to encode drained stream", slog.String("error", err.Error()))
		return
	}
	if err := audio.ValidateWAV(data); err != nil {
		d.logger.Warn("Encoded stream failed validation", slog.String("error", err.Error()))
		return
	}
	d.dumpSeq++
	path := filepath.Join(d.dumpDir, fmt.Sprintf("drain_%04d.wav", d.dumpSeq))
	if err := os.WriteFile(path, data, 0644); err != nil {
		d.logger.Warn("Failed to write drained stream",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}
	d.logger.Debug("Drained stream written", slog.String("path", path))
}

func (d *Device) recordLineDropped() {
	if d.metrics != nil {
		d.metrics.RecordLineDropped()
	}
}

// State returns the host-updatable device settings.
func (d *Device) State() *State {
	return d.state
}

// Requests returns the one-shot request flags.
func (d *Device) Requests() *Requests {
	return d.requests
}

// Injection returns the microphone injection queue.
func (d *Device) Injection() *audio.InjectionQueue {
	return d.injection
}

// LastActivity returns the time of the last processed line. The zero
// time means no line has been processed, or the host disconnected.
func (d *Device) LastActivity() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActivity
}
