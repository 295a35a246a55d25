// ABOUTME: YAML config file loading for both binaries
// ABOUTME: Flags parsed by cobra always override values loaded here
// Package config loads the optional YAML configuration file accepted by
// both binaries. Command-line flags always take precedence: a config value
// is a default that cobra flag parsing is free to overwrite.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/driftsync-project/driftsync-go/internal/logging"
)

// ServerConfig is the configuration for driftsyncd.
type ServerConfig struct {
	// Logging configuration.
	Logging logging.Config `yaml:"logging"`
	// ListenAddr is the UDP address to listen on (e.g. ":4318").
	ListenAddr string `yaml:"listen_addr"`
	// Verbose logs every processed request at debug level.
	Verbose bool `yaml:"verbose"`
	// Advertise enables mDNS advertisement of this server.
	Advertise bool `yaml:"advertise"`
	// ServiceName is the mDNS instance name to advertise under.
	ServiceName string `yaml:"service_name"`
}

// DefaultServerConfig returns the default configuration, mirroring the C
// reference's compiled-in defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Logging:     logging.Config{Level: zapcore.InfoLevel},
		ListenAddr:  ":4318",
		Verbose:     false,
		Advertise:   false,
		ServiceName: "driftsync-server",
	}
}

// LoadServerConfig loads a ServerConfig from the given path, layered over
// DefaultServerConfig.
func LoadServerConfig(path string) (*ServerConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultServerConfig()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to deserialize config: %w", err)
	}

	return cfg, nil
}

// ClientConfig is the configuration for driftsync-client.
type ClientConfig struct {
	// Logging configuration.
	Logging logging.Config `yaml:"logging"`
	// ServerAddr is the host:port of the driftsync server. Empty triggers
	// mDNS discovery.
	ServerAddr string `yaml:"server_addr"`
	// Scale converts internal microseconds to the caller's unit.
	Scale float64 `yaml:"scale"`
	// Interval between probe emissions.
	Interval time.Duration `yaml:"interval"`
	// Capacity of the retained sample windows.
	Capacity int `yaml:"capacity"`
	// MeasureAccuracy enables the accuracy self-probe.
	MeasureAccuracy bool `yaml:"measure_accuracy"`
	// Stream runs the demo stream-only reporting loop instead of the
	// default statistics/accuracy loop.
	Stream bool `yaml:"stream"`
	// StatusAddr, if non-empty, serves /status, /metrics and /healthz.
	StatusAddr string `yaml:"status_addr"`
}

// DefaultClientConfig returns the default configuration, mirroring the C
// reference's SCALE_MS/interval/measureAccuracy defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Logging:         logging.Config{Level: zapcore.InfoLevel},
		ServerAddr:      "",
		Scale:           0.001,
		Interval:        5 * time.Second,
		Capacity:        10,
		MeasureAccuracy: true,
		Stream:          false,
		StatusAddr:      "",
	}
}

// LoadClientConfig loads a ClientConfig from the given path, layered over
// DefaultClientConfig.
func LoadClientConfig(path string) (*ClientConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultClientConfig()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to deserialize config: %w", err)
	}

	return cfg, nil
}
