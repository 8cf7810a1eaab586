// Package server provides the HTTP monitoring API for the device
// service: health, device state, configuration and Prometheus metrics.
package server
