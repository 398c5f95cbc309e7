package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/notnil/linkio/netutil"
)

// Config holds the linkctl configuration.
type Config struct {
	LogLevel string    `yaml:"log_level"`
	CAN      CANConfig `yaml:"can"`
	UDP      UDPConfig `yaml:"udp"`
}

// CANConfig holds defaults for the can subcommands.
type CANConfig struct {
	Interface string   `yaml:"interface"`
	Timeout   Duration `yaml:"timeout"`
}

// UDPConfig holds defaults for the udp subcommands.
type UDPConfig struct {
	Port        int      `yaml:"port"`
	Destination string   `yaml:"destination"`
	Bind        string   `yaml:"bind"`
	Family      string   `yaml:"family"`
	Timeout     Duration `yaml:"timeout"`
	Buffer      int      `yaml:"buffer"`
}

// Duration is a time.Duration written as a Go duration string ("250ms").
// "forever" maps to netutil.Forever.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	if d < 0 {
		return "forever", nil
	}
	return time.Duration(d).String(), nil
}

// ParseDuration accepts Go duration strings and "forever".
func ParseDuration(s string) (time.Duration, error) {
	if strings.EqualFold(strings.TrimSpace(s), "forever") {
		return netutil.Forever, nil
	}
	return time.ParseDuration(s)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		CAN: CANConfig{
			Interface: "vcan0",
			Timeout:   Duration(time.Second),
		},
		UDP: UDPConfig{
			Port:        5005,
			Destination: "127.0.0.1",
			Family:      "ipv4",
			Timeout:     Duration(time.Second),
			Buffer:      2048,
		},
	}
}

// DefaultPath returns the default config file path: ~/.linkio/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".linkio", "config.yaml")
	}
	return filepath.Join(home, ".linkio", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns Default() with no error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.UDP.AddressFamily(); err != nil {
		return err
	}
	if c.UDP.Port < 0 || c.UDP.Port > 0xFFFF {
		return fmt.Errorf("udp.port %d out of range", c.UDP.Port)
	}
	if c.UDP.Buffer <= 0 {
		return fmt.Errorf("udp.buffer must be positive, got %d", c.UDP.Buffer)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// AddressFamily parses Family.
func (u UDPConfig) AddressFamily() (netutil.Family, error) {
	return netutil.ParseFamily(u.Family)
}
