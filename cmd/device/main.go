package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicelink/usb-voice-device/internal/config"
	"github.com/voicelink/usb-voice-device/internal/device"
	"github.com/voicelink/usb-voice-device/internal/metrics"
	"github.com/voicelink/usb-voice-device/internal/playback"
	"github.com/voicelink/usb-voice-device/internal/server"
	"github.com/voicelink/usb-voice-device/internal/transport"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "usb-voice-device"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// In stdio mode stdout carries protocol responses; logs must not
	// interleave with them.
	if cfg.Transport.Mode == "stdio" && (cfg.Logging.Output == "stdout" || cfg.Logging.Output == "") {
		cfg.Logging.Output = "stderr"
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("transport_mode", cfg.Transport.Mode),
		slog.Int("tick_interval_ms", cfg.Transport.TickIntervalMS),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.String("playback", cfg.Audio.Playback),
		slog.Bool("mic_capture", cfg.Mic.Capture),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Select the host link transport
	var link device.Transport
	var wsLink *transport.WebSocketLink
	switch cfg.Transport.Mode {
	case "stdio":
		link = transport.NewStream(os.Stdin, os.Stdout, logger)
		logger.Info("Host link on stdio")
	case "serial":
		f, err := os.OpenFile(cfg.Transport.SerialDevice, os.O_RDWR, 0)
		if err != nil {
			logger.Error("Failed to open serial device",
				slog.String("device", cfg.Transport.SerialDevice),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		defer f.Close()
		link = transport.NewStream(f, f, logger)
		logger.Info("Host link on serial device",
			slog.String("device", cfg.Transport.SerialDevice),
		)
	case "websocket":
		wsLink = transport.NewWebSocketLink(cfg.Transport.ListenAddress, logger)
		if err := wsLink.Start(); err != nil {
			logger.Error("Failed to start websocket link", slog.String("error", err.Error()))
			os.Exit(1)
		}
		link = wsLink
	}

	// Open the speaker sink when configured. A missing audio backend is
	// not fatal: drains become logged no-ops.
	opts := device.Options{
		Metrics:    appMetrics,
		SampleRate: cfg.Audio.SampleRate,
		DumpDir:    cfg.Audio.DumpDir,
	}
	var speaker *playback.Speaker
	if cfg.Audio.Playback == "portaudio" {
		speaker, err = playback.NewSpeaker(cfg.Audio.SampleRate, logger)
		if err != nil {
			logger.Warn("Speaker unavailable, audio output disabled",
				slog.String("error", err.Error()),
			)
		} else {
			opts.Sink = speaker
		}
	}

	dev := device.NewDevice(logger, link, opts)
	logger.Info("Device subsystem initialized")

	// Start microphone capture when configured
	var capture *playback.Capture
	if cfg.Mic.Capture {
		capture, err = playback.NewCapture(dev.Injection(),
			cfg.Audio.SampleRate, cfg.Mic.FrameSize, appMetrics, logger)
		if err != nil {
			logger.Warn("Microphone capture unavailable",
				slog.String("error", err.Error()),
			)
			capture = nil
		} else if err := capture.Start(); err != nil {
			logger.Warn("Failed to start microphone capture",
				slog.String("error", err.Error()),
			)
			capture.Stop()
			capture = nil
		}
	}

	// Initialize HTTP monitoring server (if enabled)
	var monitor *server.Monitor
	if cfg.HTTP.Enabled {
		monitor = server.NewMonitor(cfg.HTTP, logger, cfg, dev, appMetrics)
		if err := monitor.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	dev.Start()

	// Run the cooperative tick loop
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Transport.GetTickInterval())
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				dev.Tick()
			}
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	// Stop the tick loop first so nothing touches the link mid-shutdown
	close(stop)
	<-done

	if capture != nil {
		capture.Stop()
	}

	if monitor != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := monitor.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	if wsLink != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := wsLink.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping websocket link", slog.String("error", err.Error()))
		}
	}

	if speaker != nil {
		speaker.Close()
	}

	// Final statistics
	info := dev.Snapshot()
	logger.Info("Final device statistics",
		slog.Uint64("lines_processed", info.LinesProcessed),
		slog.Uint64("lines_dropped", info.LinesDropped),
		slog.Uint64("unknown_lines", info.UnknownLines),
		slog.Uint64("responses_sent", info.ResponsesSent),
		slog.Uint64("drains_completed", info.Drains),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
