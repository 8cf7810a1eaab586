package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	HTTP      HTTPConfig      `yaml:"http"`
	Audio     AudioConfig     `yaml:"audio"`
	Mic       MicConfig       `yaml:"mic"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TransportConfig contains host link settings
type TransportConfig struct {
	Mode           string `yaml:"mode"`             // "stdio", "serial" or "websocket"
	SerialDevice   string `yaml:"serial_device"`    // device path for serial mode
	ListenAddress  string `yaml:"listen_address"`   // bind address for websocket mode
	TickIntervalMS int    `yaml:"tick_interval_ms"` // cooperative tick period
}

// HTTPConfig contains monitoring HTTP API settings
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// AudioConfig contains audio path settings
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Playback   string `yaml:"playback"` // "portaudio" or "none"
	DumpDir    string `yaml:"dump_dir"` // write drained streams as WAV files when set
}

// MicConfig contains microphone capture settings
type MicConfig struct {
	Capture   bool `yaml:"capture"`    // feed the injection queue from the default input
	FrameSize int  `yaml:"frame_size"` // samples per capture push
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Mode:           "stdio",
			SerialDevice:   "/dev/ttyACM0",
			ListenAddress:  "0.0.0.0:8765",
			TickIntervalMS: 10,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: "0.0.0.0",
			Port:    8080,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Playback:   "none",
		},
		Mic: MicConfig{
			Capture:   false,
			FrameSize: 320,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Mic.Validate(); err != nil {
		return fmt.Errorf("mic config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks transport configuration
func (t *TransportConfig) Validate() error {
	switch t.Mode {
	case "stdio", "serial", "websocket":
	default:
		return fmt.Errorf("mode must be stdio, serial or websocket, got %q", t.Mode)
	}
	if t.Mode == "serial" && t.SerialDevice == "" {
		return fmt.Errorf("serial_device is required in serial mode")
	}
	if t.Mode == "websocket" && t.ListenAddress == "" {
		return fmt.Errorf("listen_address is required in websocket mode")
	}
	if t.TickIntervalMS < 1 || t.TickIntervalMS > 1000 {
		return fmt.Errorf("tick_interval_ms must be between 1 and 1000, got %d", t.TickIntervalMS)
	}
	return nil
}

// Validate checks HTTP configuration
func (h *HTTPConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}
	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	return nil
}

// Validate checks audio configuration
func (a *AudioConfig) Validate() error {
	// The injection queue sizing and tone synthesis assume 16 kHz.
	if a.SampleRate != 16000 {
		return fmt.Errorf("sample_rate must be 16000, got %d", a.SampleRate)
	}
	switch a.Playback {
	case "portaudio", "none", "":
	default:
		return fmt.Errorf("playback must be portaudio or none, got %q", a.Playback)
	}
	return nil
}

// Validate checks microphone configuration
func (m *MicConfig) Validate() error {
	if !m.Capture {
		return nil
	}
	if m.FrameSize < 16 || m.FrameSize > 1600 {
		return fmt.Errorf("frame_size must be between 16 and 1600, got %d", m.FrameSize)
	}
	return nil
}

// Validate checks logging configuration
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", l.Level)
	}
	switch l.Format {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text, got %q", l.Format)
	}
	return nil
}

// GetTickInterval returns the cooperative tick period as a duration
func (t *TransportConfig) GetTickInterval() time.Duration {
	return time.Duration(t.TickIntervalMS) * time.Millisecond
}
