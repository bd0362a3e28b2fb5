package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/LaserTower/internal/tower"
)

// TowerConfig holds the channel assignment for the tower hardware.
type TowerConfig struct {
	BasePin  int `yaml:"base_pin"`  // base servo channel (BCM)
	TopPin   int `yaml:"top_pin"`   // top servo channel (BCM)
	LaserPin int `yaml:"laser_pin"` // laser diode channel (BCM)
}

// PulseConfig describes the servo drive signal timing in microseconds.
type PulseConfig struct {
	MinPulseWidthUs int `yaml:"min_pulse_width_us"`
	MaxPulseWidthUs int `yaml:"max_pulse_width_us"`
	FrameWidthUs    int `yaml:"frame_width_us"`
}

// NotifierConfig describes the remote event collector.
type NotifierConfig struct {
	Endpoint string `yaml:"endpoint"`  // collector URL; empty = notifications disabled
	DeviceID string `yaml:"device_id"` // identifier sent with each event; empty = generated
}

// DefaultsConfig contains generic runtime parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Tower    TowerConfig    `yaml:"tower"`
	Pulse    PulseConfig    `yaml:"pulse"`
	Notifier NotifierConfig `yaml:"notifier"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath rejects traversal outside the working tree and
// non-YAML files.
func ValidateConfigPath(path string) error {
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("config path must not traverse upward: %s", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation and default backfill
	if cfg.Tower.BasePin < 0 || cfg.Tower.TopPin < 0 || cfg.Tower.LaserPin < 0 {
		return nil, fmt.Errorf("tower pins must be positive BCM channels")
	}
	if cfg.Tower.BasePin == 0 {
		cfg.Tower.BasePin = tower.DefaultBasePin
	}
	if cfg.Tower.TopPin == 0 {
		cfg.Tower.TopPin = tower.DefaultTopPin
	}
	if cfg.Tower.LaserPin == 0 {
		cfg.Tower.LaserPin = tower.DefaultLaserPin
	}
	if cfg.Tower.BasePin == cfg.Tower.TopPin ||
		cfg.Tower.BasePin == cfg.Tower.LaserPin ||
		cfg.Tower.TopPin == cfg.Tower.LaserPin {
		return nil, fmt.Errorf("tower pins must be distinct: base=%d top=%d laser=%d",
			cfg.Tower.BasePin, cfg.Tower.TopPin, cfg.Tower.LaserPin)
	}

	if cfg.Pulse.MinPulseWidthUs == 0 {
		cfg.Pulse.MinPulseWidthUs = 500 // 0.5ms
	}
	if cfg.Pulse.MaxPulseWidthUs == 0 {
		cfg.Pulse.MaxPulseWidthUs = 2500 // 2.5ms
	}
	if cfg.Pulse.FrameWidthUs == 0 {
		cfg.Pulse.FrameWidthUs = 20000 // 20ms
	}
	if cfg.Pulse.MinPulseWidthUs <= 0 || cfg.Pulse.MaxPulseWidthUs <= cfg.Pulse.MinPulseWidthUs {
		return nil, fmt.Errorf("pulse widths must satisfy 0 < min < max, got min=%dus max=%dus",
			cfg.Pulse.MinPulseWidthUs, cfg.Pulse.MaxPulseWidthUs)
	}
	if cfg.Pulse.FrameWidthUs <= cfg.Pulse.MaxPulseWidthUs {
		return nil, fmt.Errorf("frame width must exceed max pulse width, got frame=%dus max=%dus",
			cfg.Pulse.FrameWidthUs, cfg.Pulse.MaxPulseWidthUs)
	}

	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be between 0 and 4, got %d", cfg.Defaults.DebugLevel)
	}

	return &cfg, nil
}

// Pins returns the configured channel assignment.
func (c *Config) Pins() tower.Pins {
	return tower.Pins{
		Base:  c.Tower.BasePin,
		Top:   c.Tower.TopPin,
		Laser: c.Tower.LaserPin,
	}
}

// PulseProfile returns the configured servo signal timing.
func (c *Config) PulseProfile() tower.PulseProfile {
	return tower.PulseProfile{
		MinPulseWidth: time.Duration(c.Pulse.MinPulseWidthUs) * time.Microsecond,
		MaxPulseWidth: time.Duration(c.Pulse.MaxPulseWidthUs) * time.Microsecond,
		FrameWidth:    time.Duration(c.Pulse.FrameWidthUs) * time.Microsecond,
	}
}
