package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leozw/pdns-rest/internal/config"
)

const FileName = "pdns.log"

// ParseLevel maps the configured level name to a zap level. Anything
// unrecognised falls back to warn.
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.WarnLevel
	}
}

// New builds the process logger. With an empty Dir it writes to stdout,
// otherwise it appends to Dir/pdns.log and falls back to stdout when the
// file cannot be opened.
func New(cfg config.LogConfig) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	if cfg.Dir == "" {
		logger := newLogger(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level)
		logger.Info("using stdout for logging")
		return logger
	}

	path := filepath.Join(cfg.Dir, FileName)
	sink, _, err := zap.Open(path)
	if err != nil {
		logger := newLogger(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level)
		logger.Error(path+" is not writable, logging to stdout", zap.Error(err))
		return logger
	}

	return newLogger(zapcore.NewJSONEncoder(encoderCfg), sink, level)
}

func newLogger(enc zapcore.Encoder, ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	core := zapcore.NewCore(enc, ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
