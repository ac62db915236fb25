package main

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the simulator configuration file.
type Config struct {
	Log     LogConfig      `yaml:"log"`
	Host    HostConfig     `yaml:"host"`
	Devices []DeviceConfig `yaml:"devices"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// HostConfig tunes the host library.
type HostConfig struct {
	Degamma *bool    `yaml:"degamma"` // default on
	Settle  Duration `yaml:"settle"`
	Timeout Duration `yaml:"timeout"`
	// SerialPorts lists real boards on UART links, listed next to the
	// emulated devices.
	SerialPorts []string `yaml:"serial_ports"`
	Baud        int      `yaml:"baud"`
}

// DeviceConfig describes one emulated device.
type DeviceConfig struct {
	Serial string `yaml:"serial"` // empty: random
	EEPROM string `yaml:"eeprom"` // image file, created on save
	// Plugged devices are attached to the virtual USB host at start;
	// unplugged ones run on power only and autostart their pattern.
	Plugged   *bool  `yaml:"plugged"`
	Degamma   bool   `yaml:"degamma"`
	StartTick uint32 `yaml:"start_tick"`
	BootFade  bool   `yaml:"boot_fade"`
}

// IsPlugged defaults to true.
func (d DeviceConfig) IsPlugged() bool { return d.Plugged == nil || *d.Plugged }

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Host.Degamma == nil {
		on := true
		c.Host.Degamma = &on
	}
	if c.Host.Settle == 0 {
		c.Host.Settle = Duration(50 * time.Millisecond)
	}
	if c.Host.Timeout == 0 {
		c.Host.Timeout = Duration(time.Second)
	}
	if len(c.Devices) == 0 {
		c.Devices = []DeviceConfig{{}}
	}
}
