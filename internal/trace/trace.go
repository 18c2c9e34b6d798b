// Package trace provides a leveled calculation trace for the
// calculators, backed by zap. Output can be teed to additional sinks
// (e.g. the web status stream).
package trace

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Trace levels
const (
	LevelOff     = 0 // no output
	LevelInfo    = 1 // results and warnings
	LevelVerbose = 2 // intermediate values (ratios, magnification, axes)
)

var (
	level  int
	logger *zap.SugaredLogger
)

// Init initializes the trace system with a level (0-2) and a log mode
// ("production" or "development"). In development mode output is
// human-readable console encoding; production uses JSON.
func Init(traceLevel int, mode string) {
	level = traceLevel
	logger = build(mode, os.Stdout)
}

// SetSink rebuilds the logger so every trace line is also written to w,
// in addition to stdout. Used to stream calculation traces to web
// clients.
func SetSink(mode string, w io.Writer) {
	logger = build(mode, os.Stdout, w)
}

func build(mode string, sinks ...io.Writer) *zap.SugaredLogger {
	var enc zapcore.Encoder
	if mode == "production" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(sinks))
	for _, s := range sinks {
		syncers = append(syncers, zapcore.AddSync(s))
	}
	ws := zapcore.NewMultiWriteSyncer(syncers...)

	core := zapcore.NewCore(enc, ws, zapcore.InfoLevel)
	return zap.New(core).Sugar()
}

// Level returns the current trace level.
func Level() int {
	return level
}

// IsEnabled returns true if the trace level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// Sync flushes buffered output.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// --- Level 1 (Info): results and warnings ---

// Info prints an important message.
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Infof(format, args...)
	}
}

// Warn prints a warning condition (e.g. object exceeds frame).
func Warn(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Warnf(format, args...)
	}
}

// Error prints an error.
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Errorf("%v", err)
	}
}

// Section prints a section separator.
func Section(name string) {
	if level >= LevelInfo && logger != nil {
		logger.Infof("━━━ %s ━━━", name)
	}
}

// --- Level 2 (Verbose): intermediate values ---

// Verbose prints a calculation detail.
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Infof(format, args...)
	}
}

// Value prints a named intermediate value.
func Value(name string, value interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Infof("  %s = %v", name, value)
	}
}

// Step prints a numbered calculation step.
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Infof("step %d: %s", num, description)
	}
}
