package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
transport:
  mode: websocket
  listen_address: 127.0.0.1:9000
  tick_interval_ms: 20
http:
  enabled: true
  address: 127.0.0.1
  port: 9001
audio:
  sample_rate: 16000
  playback: portaudio
mic:
  capture: true
  frame_size: 160
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Transport.Mode != "websocket" {
		t.Errorf("Mode = %q", cfg.Transport.Mode)
	}
	if cfg.Transport.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("ListenAddress = %q", cfg.Transport.ListenAddress)
	}
	if cfg.HTTP.Port != 9001 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Audio.Playback != "portaudio" {
		t.Errorf("Playback = %q", cfg.Audio.Playback)
	}
	if cfg.Mic.FrameSize != 160 {
		t.Errorf("FrameSize = %d", cfg.Mic.FrameSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Transport.Mode != "stdio" {
		t.Errorf("Default mode = %q, want stdio", cfg.Transport.Mode)
	}
	if cfg.Transport.TickIntervalMS != 10 {
		t.Errorf("Default tick = %d, want 10", cfg.Transport.TickIntervalMS)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Default sample rate = %d", cfg.Audio.SampleRate)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "transport: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Transport.Mode = "carrier-pigeon" }, "mode"},
		{"serial without device", func(c *Config) {
			c.Transport.Mode = "serial"
			c.Transport.SerialDevice = ""
		}, "serial_device"},
		{"websocket without address", func(c *Config) {
			c.Transport.Mode = "websocket"
			c.Transport.ListenAddress = ""
		}, "listen_address"},
		{"tick too small", func(c *Config) { c.Transport.TickIntervalMS = 0 }, "tick_interval_ms"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "port"},
		{"bad sample rate", func(c *Config) { c.Audio.SampleRate = 8000 }, "sample_rate"},
		{"bad playback", func(c *Config) { c.Audio.Playback = "gramophone" }, "playback"},
		{"bad frame size", func(c *Config) {
			c.Mic.Capture = true
			c.Mic.FrameSize = 0
		}, "frame_size"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "format"},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestValidateDisabledHTTPSkipsChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.Enabled = false
	cfg.HTTP.Port = -1

	if err := cfg.Validate(); err != nil {
		t.Errorf("Disabled HTTP section validated: %v", err)
	}
}

func TestGetTickInterval(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Transport.GetTickInterval().Milliseconds() != 10 {
		t.Errorf("GetTickInterval = %v, want 10ms", cfg.Transport.GetTickInterval())
	}
}
