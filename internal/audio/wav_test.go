package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := EncodeSamples([]int32{0, 100, -100, 200})

	data, err := EncodeWAV(pcm, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if err := ValidateWAV(data); err != nil {
		t.Fatalf("Encoded WAV failed validation: %v", err)
	}
	if len(data) != 44+len(pcm) {
		t.Errorf("WAV size = %d, want %d", len(data), 44+len(pcm))
	}

	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	if sampleRate != 16000 {
		t.Errorf("Sample rate = %d, want 16000", sampleRate)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if dataSize != uint32(len(pcm)) {
		t.Errorf("Data size = %d, want %d", dataSize, len(pcm))
	}
}

func TestEncodeWAVRejectsEmptyData(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("Expected error for empty data")
	}
}

func TestEncodeWAVRejectsOddLength(t *testing.T) {
	if _, err := EncodeWAV([]byte{1, 2, 3}, 16000); err == nil {
		t.Error("Expected error for odd PCM length")
	}
}

func TestEncodeWAVRejectsBadSampleRate(t *testing.T) {
	if _, err := EncodeWAV([]byte{1, 2}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestValidateWAVRejectsGarbage(t *testing.T) {
	if err := ValidateWAV([]byte("not a wav file")); err == nil {
		t.Error("Expected error for short data")
	}

	bad := make([]byte, 64)
	copy(bad, "RIFF")
	if err := ValidateWAV(bad); err == nil {
		t.Error("Expected error for missing WAVE marker")
	}
}
