package internal

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LoggingConfig configures the optional rotated log file
type LoggingConfig struct {
	Enabled    bool   `toml:"enabled"`
	Level      string `toml:"level"` // debug, info, warn, error
	Path       string `toml:"path"`
	MaxSize    int    `toml:"max_size"` // megabytes before rotation
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger      = newSugaredLogger(zapcore.Lock(os.Stderr))
)

func newSugaredLogger(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, atomicLevel)
	return zap.New(core).Sugar()
}

// InitLogging redirects log output to a rotated file when enabled
func InitLogging(cfg LoggingConfig) error {
	if lvl, ok := parseLevel(cfg.Level); ok {
		SetLogLevel(lvl)
	}
	if !cfg.Enabled || cfg.Path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	logger = newSugaredLogger(zapcore.AddSync(rotator))
	logDebug("Logging to %s", cfg.Path)
	return nil
}

// SyncLogger flushes buffered log entries
func SyncLogger() error {
	return logger.Sync()
}

func parseLevel(s string) (LogLevel, bool) {
	switch s {
	case "error":
		return LogLevelError, true
	case "warn":
		return LogLevelWarn, true
	case "info":
		return LogLevelInfo, true
	case "debug":
		return LogLevelDebug, true
	}
	return LogLevelInfo, false
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	switch level {
	case LogLevelError:
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case LogLevelDebug:
		atomicLevel.SetLevel(zapcore.DebugLevel)
	default:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// GetLogLevel returns the current global log level
func GetLogLevel() LogLevel {
	switch atomicLevel.Level() {
	case zapcore.ErrorLevel:
		return LogLevelError
	case zapcore.WarnLevel:
		return LogLevelWarn
	case zapcore.DebugLevel:
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

func logError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

func logWarn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func logInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func logDebug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logError(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logWarn(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logInfo(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logDebug(format, args...)
}
