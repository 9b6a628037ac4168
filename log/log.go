// Package log provides a thin, structured logging wrapper used across the
// module. It mirrors the key-value logging style of go.vocdoni.io/dvote/log
// (Infow/Debugw/Warnw taking alternating key/value pairs) on top of zap, so
// that every package in this repository logs the same way regardless of
// which third-party logger ends up wired underneath.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	level  atomic.Value // string

	// panicOnInvalidChars causes Printf-style calls to panic if the rendered
	// message contains non-printable characters, invalid UTF-8 or U+FFFD
	// (invalid bytes decode to U+FFFD, which is printable). Off by default; tests flip
	// it on to catch log-injection style bugs.
	panicOnInvalidChars = false

	// logTestWriter/logTestWriterName let tests redirect output without
	// touching the filesystem.
	logTestWriter     io.Writer
	logTestWriterName = "test"
)

func init() {
	level.Store("info")
	Init("info", "stderr", nil)
}

// Init (re)configures the global logger. output is "stdout", "stderr", or the
// sentinel test writer name; any other value, a file path included, writes
// to stderr. writer, if non-nil, overrides output entirely (used by tests).
func Init(lvl, output string, writer io.Writer) {
	level.Store(lvl)

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(lvl)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var sink zapcore.WriteSyncer
	switch {
	case writer != nil:
		sink = zapcore.AddSync(writer)
	case output == logTestWriterName && logTestWriter != nil:
		sink = zapcore.AddSync(logTestWriter)
	case output == "stdout":
		sink = zapcore.AddSync(os.Stdout)
	default:
		sink = zapcore.AddSync(os.Stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, zapLevel)
	logger = zap.New(core).Sugar()
}

// Level returns the currently configured log level.
func Level() string {
	v, _ := level.Load().(string)
	return v
}

func checkPrintable(msg string) {
	if !panicOnInvalidChars {
		return
	}
	for _, r := range msg {
		if r == unicode.ReplacementChar || (r != '\n' && r != '\t' && !unicode.IsPrint(r)) {
			panic(fmt.Sprintf("log message contains non-printable character: %q", msg))
		}
	}
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	checkPrintable(msg)
	logger.Debug(msg)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	checkPrintable(msg)
	logger.Info(msg)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	checkPrintable(msg)
	logger.Warn(msg)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	checkPrintable(msg)
	logger.Error(msg)
}

// Error logs an error value at error level.
func Error(err error) {
	logger.Error(err.Error())
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(format string, args ...any) {
	logger.Fatalf(format, args...)
}

// Debugw logs a message with structured key/value pairs at debug level.
func Debugw(msg string, kv ...any) {
	logger.Debugw(msg, kv...)
}

// Infow logs a message with structured key/value pairs at info level.
func Infow(msg string, kv ...any) {
	logger.Infow(msg, kv...)
}

// Warnw logs a message with structured key/value pairs at warn level.
func Warnw(msg string, kv ...any) {
	logger.Warnw(msg, kv...)
}

// Errorw logs a message with structured key/value pairs at error level.
func Errorw(msg string, kv ...any) {
	logger.Errorw(msg, kv...)
}
