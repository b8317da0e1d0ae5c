package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput is true when structured JSON logs were requested
	JSONOutput bool
)

func init() {
	// Nop until Initialize so packages can log before main sets things up
	Logger = zap.NewNop().Sugar()
}

// Options configures the global logger
type Options struct {
	JSON   bool      // JSON lines instead of the console encoder
	Level  string    // debug, info, warn or error
	Output io.Writer // defaults to stderr
}

// Initialize sets up the global logger
func Initialize(opts Options) error {
	zapLogger, err := New(opts)
	if err != nil {
		return err
	}
	JSONOutput = opts.JSON
	Logger = zapLogger.Sugar()
	return nil
}

// New builds a zap logger without touching the global one
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(defaultString(opts.Level, "warn")))
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeCaller = nil
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), level)), nil
}

// Cleanup flushes buffered log entries
func Cleanup() {
	_ = Logger.Sync()
}

// Debugw logs a debug message with key/value pairs on the global logger
func Debugw(msg string, keysAndValues ...interface{}) {
	Logger.Debugw(msg, keysAndValues...)
}

// Infow logs an info message with key/value pairs on the global logger
func Infow(msg string, keysAndValues ...interface{}) {
	Logger.Infow(msg, keysAndValues...)
}

// Warnw logs a warning with key/value pairs on the global logger
func Warnw(msg string, keysAndValues ...interface{}) {
	Logger.Warnw(msg, keysAndValues...)
}

// Errorw logs an error with key/value pairs on the global logger
func Errorw(msg string, keysAndValues ...interface{}) {
	Logger.Errorw(msg, keysAndValues...)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
