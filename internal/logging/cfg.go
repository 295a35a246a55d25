// ABOUTME: Logging subsystem configuration struct
// ABOUTME: Wraps a zapcore.Level for YAML config files
package logging

import "go.uber.org/zap/zapcore"

// Config is the configuration for the logging subsystem.
type Config struct {
	// Level is the logging level.
	Level zapcore.Level `yaml:"level"`
}
