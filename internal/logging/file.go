package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var sink atomic.Pointer[zap.Logger]

func fileLogger() *zap.Logger {
	if l := sink.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// OpenFile starts mirroring every log line, including debug lines, into a
// rotating JSON log at path. The returned func flushes and detaches the file.
func OpenFile(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)
	l := zap.New(core)
	sink.Store(l)

	return func() error {
		sink.CompareAndSwap(l, nil)
		_ = l.Sync()
		return rotator.Close()
	}, nil
}

// Request records one backend call in the log file. It never prints to the
// console; console tracing goes through Debug.
func Request(requestID, method, path string, status int, elapsed time.Duration, kind string) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if kind != "" {
		fields = append(fields, zap.String("error_kind", kind))
		fileLogger().Warn("backend call failed", fields...)
		return
	}
	fileLogger().Info("backend call", fields...)
}

// StdLogger adapts the file sink for packages that log through *log.Logger,
// such as net/http servers.
func StdLogger() *log.Logger {
	l, err := zap.NewStdLogAt(fileLogger(), zap.ErrorLevel)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}
