// Package transport provides byte-oriented host links for the device
// core: a pumped io.ReadWriter stream for stdio and serial devices, and
// a single-client websocket listener for networked hosts. Both expose a
// non-blocking ReadByte feeding the cooperative tick.
package transport
