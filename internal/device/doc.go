// Package device implements the command subsystem core: it assembles and
// decodes host lines, applies configuration, routes audio into the
// staging buffer, reports status, and exposes one-shot playback requests
// to the surrounding firmware glue. All protocol work happens inside the
// cooperative Tick; only the injection queue and the request flags are
// touched from other goroutines.
package device
