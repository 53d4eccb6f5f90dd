package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration
type Config struct {
	ServerURL            string  `toml:"server_url"`
	CameraDevice         string  `toml:"camera_device"`
	DataDir              string  `toml:"data_dir"`               // Durable store and lock file location
	TempDir              string  `toml:"temp_dir"`               // Raw and compressed clips before delivery
	LogDir               string  `toml:"log_dir"`                // Daily rotating log files
	MaxRecordingSeconds  int     `toml:"max_recording_seconds"`  // Hard ceiling for a single recording
	CaptureCodec         string  `toml:"capture_codec"`          // Codec for the raw capture (e.g., "MJPG")
	CaptureFrameRate     float64 `toml:"capture_frame_rate"`     // Frame rate for the raw capture
	ProbeIntervalSeconds int     `toml:"probe_interval_seconds"` // How often to probe connectivity
	ServerTimeoutSeconds int     `toml:"server_timeout_seconds"` // HTTP timeout for server requests
	DownscaleResolution  string  `toml:"downscale_resolution"`   // Delivery downscale target ("360p", "640x360")
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file doesn't exist, create a default one
			defaultCfg := defaultConfig()
			if err := saveConfig(filename, defaultCfg); err != nil {
				return nil, fmt.Errorf("failed to create default config file: %w", err)
			}
			fmt.Printf("Default config file created at %s\n", filename)
			return defaultCfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in defaults for missing values
func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = "https://feedback.mandirparikrama.com"
	}
	if c.CameraDevice == "" {
		c.CameraDevice = "/dev/video0"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.TempDir == "" {
		c.TempDir = "./temp"
	}
	if c.LogDir == "" {
		c.LogDir = "./logs"
	}
	if c.MaxRecordingSeconds == 0 {
		c.MaxRecordingSeconds = 60
	}
	if c.CaptureCodec == "" {
		c.CaptureCodec = "MJPG"
	}
	if c.CaptureFrameRate == 0 {
		c.CaptureFrameRate = 15.0
	}
	if c.ProbeIntervalSeconds == 0 {
		c.ProbeIntervalSeconds = 5
	}
	if c.ServerTimeoutSeconds == 0 {
		c.ServerTimeoutSeconds = 30
	}
	if c.DownscaleResolution == "" {
		c.DownscaleResolution = "360p"
	}
}

// EnsureDirectories creates the directories the client writes to
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.TempDir, c.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the durable key-value store
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "feedback.db")
}

// LockPath returns the location of the single-instance lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "feedback-capture.lock")
}

// ConfigOverrides holds potential override values for configuration
type ConfigOverrides struct {
	ServerURL            *string
	CameraDevice         *string
	DataDir              *string
	TempDir              *string
	MaxRecordingSeconds  *int
	CaptureCodec         *string
	CaptureFrameRate     *float64
	ProbeIntervalSeconds *int
	ServerTimeoutSeconds *int
}

// Override allows overriding specific configuration values using ConfigOverrides struct
func (c *Config) Override(overrides ConfigOverrides) {
	if overrides.ServerURL != nil && *overrides.ServerURL != "" {
		c.ServerURL = *overrides.ServerURL
	}
	if overrides.CameraDevice != nil && *overrides.CameraDevice != "" {
		c.CameraDevice = *overrides.CameraDevice
	}
	if overrides.DataDir != nil && *overrides.DataDir != "" {
		c.DataDir = *overrides.DataDir
	}
	if overrides.TempDir != nil && *overrides.TempDir != "" {
		c.TempDir = *overrides.TempDir
	}
	if overrides.MaxRecordingSeconds != nil && *overrides.MaxRecordingSeconds > 0 {
		c.MaxRecordingSeconds = *overrides.MaxRecordingSeconds
	}
	if overrides.CaptureCodec != nil && *overrides.CaptureCodec != "" {
		c.CaptureCodec = *overrides.CaptureCodec
	}
	if overrides.CaptureFrameRate != nil && *overrides.CaptureFrameRate > 0 {
		c.CaptureFrameRate = *overrides.CaptureFrameRate
	}
	if overrides.ProbeIntervalSeconds != nil && *overrides.ProbeIntervalSeconds > 0 {
		c.ProbeIntervalSeconds = *overrides.ProbeIntervalSeconds
	}
	if overrides.ServerTimeoutSeconds != nil && *overrides.ServerTimeoutSeconds > 0 {
		c.ServerTimeoutSeconds = *overrides.ServerTimeoutSeconds
	}
}

// saveConfig saves a configuration to a TOML file
func saveConfig(filename string, config *Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
