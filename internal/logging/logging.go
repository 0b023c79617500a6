// Package logging builds the process logger from a verbosity level.
package logging

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerbosityEnvVar is consulted when no -v flag was passed.
const VerbosityEnvVar = "TITAN_LOG_VERBOSITY"

// Level maps a verbosity count to a zap level: 0 warn, 1 info, 2+ debug.
func Level(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New returns a console logger writing to w at the level for verbosity.
func New(verbosity int, w io.Writer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(Level(verbosity)),
	)
	return zap.New(core)
}

// Verbosity returns flagValue when it is set, otherwise the value of
// TITAN_LOG_VERBOSITY from lookup. An unset variable means 0.
func Verbosity(flagValue int, lookup func(string) (string, bool)) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	raw, ok := lookup(VerbosityEnvVar)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s value %q: expected a non-negative integer", VerbosityEnvVar, raw)
	}
	return v, nil
}
