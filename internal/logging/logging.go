// Package logging builds the zap loggers used by readers and directories.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names, so that every component logs the same concept under the same key.
const (
	FieldComponent = "component"
	FieldSession   = "session"
	FieldOperation = "operation"
	FieldDN        = "dn"
	FieldBase      = "base"
	FieldScope     = "scope"
	FieldAttribute = "attribute"
	FieldCount     = "count"
	FieldError     = "error"
)

// Config selects the output format and level of a logger.
type Config struct {
	// JSON selects structured JSON output instead of the console encoder.
	JSON bool
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
}

// New builds a logger writing to stderr.
func New(config Config) (logger *zap.Logger, err error) {
	level, err := zapcore.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return
	}
	var encoder zapcore.Encoder
	if config.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	logger = zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	return
}

// Nop returns a logger that discards everything, used when no logger is configured.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Component returns a named child logger for a component.
func Component(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = Nop()
	}
	return logger.Named(name).With(zap.String(FieldComponent, name))
}
