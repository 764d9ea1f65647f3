package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process wide logger. It starts as a no-op so packages can log
// before (or without) Init being called, e.g. from tests.
var Log = zap.NewNop()

// Init installs the default logger. CRYSTAL_DEBUG=1 switches to the
// development config with debug level enabled.
func Init() {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("CRYSTAL_DEBUG") == "1" {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	}
	if err != nil {
		// Keep the previous logger rather than failing the host
		Log.Warn("Failed to build logger", zap.Error(err))
		return
	}
	Log = l
}

// InitWith replaces the global logger, mostly for hosts that own their own zap setup.
func InitWith(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Log.Sync()
}
