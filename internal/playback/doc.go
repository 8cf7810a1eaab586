// Package playback binds the audio data path to real hardware: a
// portaudio speaker sink for drained streams and a microphone capture
// loop feeding the injection queue. Both require the portaudio build
// tag; without it the constructors return an error and the device runs
// with audio disabled.
package playback
