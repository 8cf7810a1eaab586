package device

import (
	"encoding/json"
	"log/slog"
	"time"
)

// statusMessage mirrors the host status schema. Most boolean and numeric
// fields are fixed placeholders for subsystems outside this core.
type statusMessage struct {
	Type                  string     `json:"type"`
	Timestamp             int64      `json:"timestamp"`
	WakeWordActive        bool       `json:"wake_word_active"`
	MicrophoneMuted       bool       `json:"microphone_muted"`
	VoiceAssistantPhase   VoicePhase `json:"voice_assistant_phase"`
	VoiceAssistantRunning bool       `json:"voice_assistant_running"`
	TimerActive           bool       `json:"timer_active"`
	TimerRinging          bool       `json:"timer_ringing"`
	LEDBrightness         float64    `json:"led_brightness"`
	Volume                float64    `json:"volume"`
	WakeWord              string     `json:"wake_word"`
	WakeWordSensitivity   string     `json:"wake_word_sensitivity"`
	WifiConnected         bool       `json:"wifi_connected"`
	APIConnected          bool       `json:"api_connected"`
}

// responseMessage is the minimal reply envelope.
type responseMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type wakeWordOptionsMessage struct {
	Type      string   `json:"type"`
	Options   []string `json:"options"`
	Timestamp int64    `json:"timestamp"`
}

// millis returns milliseconds since device start, the protocol's
// timestamp base.
func (d *Device) millis() int64 {
	return d.now().Sub(d.start).Milliseconds()
}

func (d *Device) sendStatus() {
	d.sendJSON(statusMessage{
		Type:                  "status",
		Timestamp:             d.millis(),
		VoiceAssistantPhase:   d.state.Phase(),
		VoiceAssistantRunning: true,
		LEDBrightness:         0.66,
		Volume:                0.7,
		WakeWord:              d.state.WakeWord(),
		WakeWordSensitivity:   d.state.Sensitivity(),
	})
}

func (d *Device) sendWakeWordOptions() {
	d.sendJSON(wakeWordOptionsMessage{
		Type:      "wake_word_options",
		Options:   WakeWordOptions,
		Timestamp: d.millis(),
	})
}

func (d *Device) sendResponse(responseType string) {
	d.sendJSON(responseMessage{
		Type:      responseType,
		Timestamp: d.millis(),
	})
}

func (d *Device) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		d.logger.Error("Failed to encode response", slog.String("error", err.Error()))
		return
	}
	if err := d.transport.WriteLine(string(data)); err != nil {
		d.logger.Warn("Failed to write response", slog.String("error", err.Error()))
		return
	}
	d.responsesSent++
	if d.metrics != nil {
		d.metrics.RecordResponseSent()
	}
}

// Info is a monitoring snapshot of the subsystem.
type Info struct {
	UptimeMS       int64      `json:"uptime_ms"`
	WakeWord       string     `json:"wake_word"`
	Sensitivity    string     `json:"wake_word_sensitivity"`
	VoicePhase     VoicePhase `json:"voice_assistant_phase"`
	LastActivity   time.Time  `json:"last_activity"`
	LinesProcessed uint64     `json:"lines_processed"`
	LinesDropped   uint64     `json:"lines_dropped"`
	UnknownLines   uint64     `json:"unknown_lines"`
	ResponsesSent  uint64     `json:"responses_sent"`
	StagedBytes    int        `json:"staged_bytes"`
	StreamOpen     bool       `json:"stream_open"`
	Drains         uint64     `json:"drains_completed"`
	StallRestarts  uint64     `json:"drain_stall_restarts"`
	RejectedWrites uint64     `json:"rejected_writes"`
	ChunksReceived int        `json:"chunks_received"`
	ChunksExpected int        `json:"chunks_expected"`
	MicQueueLen    int        `json:"mic_queue_len"`
	MicRecent      bool       `json:"mic_recent"`
}

// Snapshot returns a point-in-time view for the monitoring API.
func (d *Device) Snapshot() Info {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Info{
		UptimeMS:       d.millis(),
		WakeWord:       d.state.WakeWord(),
		Sensitivity:    d.state.Sensitivity(),
		VoicePhase:     d.state.Phase(),
		LastActivity:   d.lastActivity,
		LinesProcessed: d.linesProcessed,
		LinesDropped:   d.assembler.LinesDropped(),
		UnknownLines:   d.unknownLines,
		ResponsesSent:  d.responsesSent,
		StagedBytes:    d.staging.Size(),
		StreamOpen:     d.staging.Streaming(),
		Drains:         d.staging.Drains(),
		StallRestarts:  d.staging.StallRestarts(),
		RejectedWrites: d.staging.RejectedWrites(),
		ChunksReceived: d.chunks.Received(),
		ChunksExpected: d.chunks.Expected(),
		MicQueueLen:    d.injection.Len(),
		MicRecent:      d.injection.HasRecent(),
	}
}
