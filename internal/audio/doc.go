// Package audio implements the device-side audio data path: the fixed
// staging buffer with its bounded sink drain, indexed chunk reassembly,
// PCM clamping and tone synthesis, WAV encoding, and the microphone
// injection queue.
package audio
