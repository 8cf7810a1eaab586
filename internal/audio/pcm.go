package audio

import (
	"encoding/binary"
	"math"
)

// ClampSample saturates a decoded wire sample to the signed 16-bit PCM
// range.
func ClampSample(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// PutSample encodes one clamped sample as little-endian PCM-16 into b,
// which must hold at least 2 bytes.
func PutSample(b []byte, v int32) {
	binary.LittleEndian.PutUint16(b, uint16(ClampSample(v)))
}

// EncodeSamples clamps each sample and encodes the batch as little-endian
// PCM-16.
func EncodeSamples(samples []int32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		PutSample(out[i*2:], s)
	}
	return out
}

// SynthesizeTone generates a sine tone as raw samples.
func SynthesizeTone(frequency, durationMS, sampleRate int, amplitude float64) []int32 {
	n := sampleRate * durationMS / 1000
	samples := make([]int32, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int32(amplitude * math.Sin(2*math.Pi*float64(frequency)*t))
	}
	return samples
}
