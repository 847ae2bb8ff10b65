// Package observability builds the zap loggers used by the command line tool.
package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/wanmail/vaadin-selenium/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported values of logger.format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w at the configured level and format.
func New(cfg config.LoggerConfig, w zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logger.level: %w", err)
		}
	}
	enc, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, w, level)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)), nil
}

// NewStderr is New writing to a locked standard error.
func NewStderr(cfg config.LoggerConfig) (*zap.Logger, error) {
	return New(cfg, zapcore.Lock(os.Stderr))
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	switch strings.ToLower(format) {
	case FormatJSON:
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case FormatConsole, "":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.ConsoleSeparator = " "
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	}
	return nil, fmt.Errorf("logger.format must be %q or %q, got %q", FormatConsole, FormatJSON, format)
}
