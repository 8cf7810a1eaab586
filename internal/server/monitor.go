package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicelink/usb-voice-device/internal/config"
	"github.com/voicelink/usb-voice-device/internal/device"
	"github.com/voicelink/usb-voice-device/internal/metrics"
)

// Monitor provides HTTP API endpoints for observing the device subsystem
type Monitor struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	dev     *device.Device
	metrics *metrics.Metrics

	startTime time.Time
}

// NewMonitor creates a new monitoring HTTP server
func NewMonitor(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, dev *device.Device, m *metrics.Metrics) *Monitor {

	mon := &Monitor{
		logger:    logger,
		config:    appConfig,
		dev:       dev,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mon.setupRoutes(mux)

	mon.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return mon
}

// setupRoutes configures HTTP API routes
func (mon *Monitor) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", mon.withMetrics("/health", mon.handleHealth))
	mux.HandleFunc("/state", mon.withMetrics("/state", mon.handleState))
	mux.HandleFunc("/config", mon.withMetrics("/config", mon.handleConfig))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", mon.withMetrics("/", mon.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (mon *Monitor) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Response writer wrapper to capture the status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		statusCode := fmt.Sprintf("%d", ww.statusCode)
		mon.metrics.RecordHTTPRequest(endpoint, r.Method, statusCode, time.Since(startTime))

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			mon.metrics.RecordHTTPError(endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (mon *Monitor) Start() error {
	mon.logger.Info("Starting HTTP monitoring server",
		slog.String("address", mon.server.Addr),
	)

	go func() {
		if err := mon.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mon.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (mon *Monitor) Stop(ctx context.Context) error {
	mon.logger.Info("Stopping HTTP monitoring server...")

	return mon.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (mon *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := mon.dev.Snapshot()
	uptime := time.Since(mon.startTime)

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "usb-voice-device",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"host_link": map[string]interface{}{
				"status":          "running",
				"lines_processed": info.LinesProcessed,
				"lines_dropped":   info.LinesDropped,
				"unknown_lines":   info.UnknownLines,
				"responses_sent":  info.ResponsesSent,
				"last_activity":   info.LastActivity,
			},
			"audio": map[string]interface{}{
				"status":          "running",
				"staged_bytes":    info.StagedBytes,
				"stream_open":     info.StreamOpen,
				"drains":          info.Drains,
				"stall_restarts":  info.StallRestarts,
				"rejected_writes": info.RejectedWrites,
			},
			"microphone": map[string]interface{}{
				"queue_len": info.MicQueueLen,
				"recent":    info.MicRecent,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleState implements the /state endpoint
func (mon *Monitor) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mon.dev.Snapshot())
}

// handleConfig implements the /config endpoint
func (mon *Monitor) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"transport": map[string]interface{}{
			"mode":             mon.config.Transport.Mode,
			"tick_interval_ms": mon.config.Transport.TickIntervalMS,
		},
		"audio": map[string]interface{}{
			"sample_rate": mon.config.Audio.SampleRate,
			"playback":    mon.config.Audio.Playback,
		},
		"mic": map[string]interface{}{
			"capture":    mon.config.Mic.Capture,
			"frame_size": mon.config.Mic.FrameSize,
		},
		"logging": map[string]interface{}{
			"level":  mon.config.Logging.Level,
			"format": mon.config.Logging.Format,
			"output": mon.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleRoot implements the / endpoint with API documentation
func (mon *Monitor) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "USB Voice Device Bridge",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":        "API documentation",
			"GET /health":  "Service health check",
			"GET /state":   "Device subsystem snapshot",
			"GET /config":  "Service configuration",
			"GET /metrics": "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
