package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the optional log file.
const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 5
	logFileMaxAgeDays = 28
)

var (
	logMu  sync.RWMutex
	logger = newConsoleLogger(zapcore.InfoLevel, false)
)

func newConsoleLogger(level zapcore.Level, colored bool) *zap.SugaredLogger {
	return zap.New(consoleCore(level, colored)).Sugar()
}

func consoleCore(level zapcore.Level, colored bool) zapcore.Core {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	if colored {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
}

// InitLogger replaces the package logger. Console output always goes to stderr so that
// stdout stays reserved for results and the MCP protocol. When logFile is set, a JSON
// copy of every entry is written to a size-rotated file. The returned func flushes and
// closes the sinks.
func InitLogger(level, logFile string, colored bool) (func(), error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return func() {}, fmt.Errorf("%w: invalid log level %q", ErrConfiguration, level)
	}

	cores := []zapcore.Core{consoleCore(lvl, colored)}
	var rotator *lumberjack.Logger
	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return func() {}, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		rotator = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			lvl,
		))
	}

	l := zap.New(zapcore.NewTee(cores...)).Sugar()
	logMu.Lock()
	logger = l
	logMu.Unlock()

	return func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}, nil
}

func current() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	l := current()
	l.Errorw("Fatal "+msg, "error", err)
	_ = l.Sync()
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	current().Warnw(msg, "error", err)
}

// LogInfo logs an informational message with optional key/value pairs.
func LogInfo(msg string, keysAndValues ...any) {
	current().Infow(msg, keysAndValues...)
}

// LogDebug logs a debug message with optional key/value pairs.
func LogDebug(msg string, keysAndValues ...any) {
	current().Debugw(msg, keysAndValues...)
}
