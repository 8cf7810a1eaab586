package protocol

import (
	"errors"
	"strings"
)

// ErrUnknownType reports a line that matched none of the recognized
// command markers.
var ErrUnknownType = errors.New("unknown message type")

// MessageType identifies a recognized host command.
type MessageType int

const (
	TypeHeartbeat MessageType = iota
	TypeGetStatus
	TypeGetWakeWordOptions
	TypeConfig
	TypeDisconnect
	TypePlayTone
	TypePlayAudioCompressed
	TypePlayAudio
	TypePlayAudioChunk
	TypeStartAudioStream
	TypeAudioDataChunk
	TypeFinishAudioStream
)

// String returns the wire name of the message type.
func (t MessageType) String() string {
	switch t {
	case TypeHeartbeat:
		return "heartbeat"
	case TypeGetStatus:
		return "get_status"
	case TypeGetWakeWordOptions:
		return "get_wake_word_options"
	case TypeConfig:
		return "config"
	case TypeDisconnect:
		return "disconnect"
	case TypePlayTone:
		return "play_tone"
	case TypePlayAudioCompressed:
		return "play_audio_compressed"
	case TypePlayAudio:
		return "play_audio"
	case TypePlayAudioChunk:
		return "play_audio_chunk"
	case TypeStartAudioStream:
		return "start_audio_stream"
	case TypeAudioDataChunk:
		return "audio_data_chunk"
	case TypeFinishAudioStream:
		return "finish_audio_stream"
	default:
		return "unknown"
	}
}

// Message is the decoded form of one host line. At most one payload field
// is set, matching Type; types without fields carry none.
type Message struct {
	Type       MessageType
	Config     *ConfigFields
	Tone       *ToneFields
	Audio      *AudioFields
	Chunk      *ChunkFields
	Compressed *CompressedFields
	Data       *DataFields
}

// ConfigFields carries the optional fields of a config line. A nil
// pointer means the field was absent or its value failed to parse.
type ConfigFields struct {
	Unmute      bool
	Volume      *float64
	WakeWord    *string
	Sensitivity *string
	VoicePhase  *string
}

// Default tone parameters used when the host omits the fields.
const (
	DefaultToneFrequency  = 440
	DefaultToneDurationMS = 500
)

// ToneFields carries the tone playback parameters.
type ToneFields struct {
	Frequency  int
	DurationMS int
}

// AudioFields carries inline audio samples and the optional batch
// markers. A line without a batch field is a complete single transfer.
type AudioFields struct {
	Samples      []int32
	HasData      bool
	IsBatch      bool
	Batch        int
	TotalBatches int
}

// ChunkFields carries one message of an indexed chunk transfer. A start
// message declares the chunk count; data messages carry a 1-based index.
type ChunkFields struct {
	IsStart     bool
	TotalChunks int
	ChunkIndex  int
	Samples     []int32
	HasData     bool
}

// CompressedFields describes a compressed audio payload. HasPayload is
// true only when both the base64 body and the sample count are present.
type CompressedFields struct {
	SampleCount int
	HasPayload  bool
}

// DataFields carries raw stream bytes from an audio_data_chunk line.
// Each wire integer is truncated to its low byte.
type DataFields struct {
	Bytes []byte
}

// typeMarkers lists the recognized markers in classification priority
// order. Classification is substring containment of the fully quoted
// marker, so a name that prefixes a longer one still matches only itself.
var typeMarkers = []struct {
	marker string
	mtype  MessageType
}{
	{`"type":"heartbeat"`, TypeHeartbeat},
	{`"type":"get_status"`, TypeGetStatus},
	{`"type":"get_wake_word_options"`, TypeGetWakeWordOptions},
	{`"type":"config"`, TypeConfig},
	{`"type":"disconnect"`, TypeDisconnect},
	{`"type":"play_tone"`, TypePlayTone},
	{`"type":"play_audio_compressed"`, TypePlayAudioCompressed},
	{`"type":"play_audio"`, TypePlayAudio},
	{`"type":"play_audio_chunk"`, TypePlayAudioChunk},
	{`"type":"start_audio_stream"`, TypeStartAudioStream},
	{`"type":"audio_data_chunk"`, TypeAudioDataChunk},
	{`"type":"finish_audio_stream"`, TypeFinishAudioStream},
}

// Decode classifies a complete line and extracts the fields its command
// carries. Lines matching no marker return ErrUnknownType.
func Decode(line string) (*Message, error) {
	for _, tm := range typeMarkers {
		if !strings.Contains(line, tm.marker) {
			continue
		}
		msg := &Message{Type: tm.mtype}
		switch tm.mtype {
		case TypeConfig:
			msg.Config = decodeConfig(line)
		case TypePlayTone:
			msg.Tone = decodeTone(line)
		case TypePlayAudio:
			msg.Audio = decodeAudio(line)
		case TypePlayAudioChunk:
			msg.Chunk = decodeChunk(line)
		case TypePlayAudioCompressed:
			msg.Compressed = decodeCompressed(line)
		case TypeAudioDataChunk:
			msg.Data = decodeData(line)
		}
		return msg, nil
	}
	return nil, ErrUnknownType
}

func decodeConfig(line string) *ConfigFields {
	f := &ConfigFields{
		Unmute: strings.Contains(line, `"unmute":true`),
	}
	if v, ok := scanFloat(line, `"volume":`); ok {
		f.Volume = &v
	}
	if s, ok := scanString(line, `"wake_word":`); ok {
		f.WakeWord = &s
	}
	if s, ok := scanString(line, `"sensitivity":`); ok {
		f.Sensitivity = &s
	}
	if s, ok := scanString(line, `"voice_phase":`); ok {
		f.VoicePhase = &s
	}
	return f
}

func decodeTone(line string) *ToneFields {
	f := &ToneFields{
		Frequency:  DefaultToneFrequency,
		DurationMS: DefaultToneDurationMS,
	}
	if n, ok := scanInt(line, `"frequency":`); ok {
		f.Frequency = n
	}
	if n, ok := scanInt(line, `"duration_ms":`); ok {
		f.DurationMS = n
	}
	return f
}

func decodeAudio(line string) *AudioFields {
	f := &AudioFields{Batch: 1, TotalBatches: 1}
	f.IsBatch = strings.Contains(line, `"batch":`)
	if f.IsBatch {
		if n, ok := scanInt(line, `"batch":`); ok {
			f.Batch = n
		}
		if n, ok := scanInt(line, `"total_batches":`); ok {
			f.TotalBatches = n
		}
	}
	f.Samples, f.HasData = scanIntArray(line, `"audio_data":[`)
	return f
}

func decodeChunk(line string) *ChunkFields {
	f := &ChunkFields{
		IsStart: strings.Contains(line, `"is_start":true`),
	}
	if n, ok := scanInt(line, `"total_chunks":`); ok {
		f.TotalChunks = n
	}
	if n, ok := scanInt(line, `"chunk_index":`); ok {
		f.ChunkIndex = n
	}
	f.Samples, f.HasData = scanIntArray(line, `"audio_data":[`)
	return f
}

func decodeCompressed(line string) *CompressedFields {
	f := &CompressedFields{}
	f.HasPayload = strings.Contains(line, `"sample_count":`) &&
		strings.Contains(line, `"audio_base64":"`)
	f.SampleCount, _ = scanInt(line, `"sample_count":`)
	return f
}

func decodeData(line string) *DataFields {
	values, ok := scanIntArray(line, `"data":[`)
	if !ok {
		return &DataFields{}
	}
	b := make([]byte, len(values))
	for i, v := range values {
		b[i] = byte(v)
	}
	return &DataFields{Bytes: b}
}
