package depot

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build returns the logger described by c.
func (c LogConfig) Build() (*zap.Logger, error) {
	if !c.Enabled {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if c.Level != "" {
		parsed, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	encoding := c.Encoding
	if encoding == "" {
		encoding = "json"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}
