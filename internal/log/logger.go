package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/doridoridoriand/pingtap/internal/probe"
)

const fileName = "pingtap.log"

// Options selects where log entries go.
type Options struct {
	// Dir enables a rotated JSON log file inside Dir.
	Dir      string
	MaxMB    int
	MaxFiles int
	Level    string
	// Console receives entries when Dir is empty. Nil disables logging.
	Console io.Writer
}

// Logger provides structured logging
type Logger struct {
	z      *zap.Logger
	closer io.Closer
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	var sink zapcore.WriteSyncer
	var closer io.Closer

	switch {
	case opts.Dir != "":
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, fileName),
			MaxSize:    opts.MaxMB,
			MaxBackups: opts.MaxFiles,
		}
		sink = zapcore.AddSync(lj)
		closer = lj
	case opts.Console != nil:
		sink = zapcore.AddSync(opts.Console)
	default:
		return Nop(), nil
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, ParseLevel(opts.Level))
	return &Logger{z: zap.New(core), closer: closer}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	_ = l.z.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Debug(message string, fields ...zap.Field) {
	l.z.Debug(message, fields...)
}

func (l *Logger) Info(message string, fields ...zap.Field) {
	l.z.Info(message, fields...)
}

func (l *Logger) Warn(message string, fields ...zap.Field) {
	l.z.Warn(message, fields...)
}

func (l *Logger) Error(message string, fields ...zap.Field) {
	l.z.Error(message, fields...)
}

// LogProbeResult logs the outcome of one measurement.
func (l *Logger) LogProbeResult(target string, variant probe.Variant, result probe.Result) {
	fields := []zap.Field{
		zap.String("target", target),
		zap.String("variant", string(variant)),
		zap.Bool("success", result.Success),
	}
	if result.Success {
		fields = append(fields, zap.Float64("latency_ms", result.LatencyMS))
		l.Info("probe result", fields...)
		return
	}
	fields = append(fields, zap.String("kind", string(probe.KindOf(result.Err))), zap.Error(result.Err))
	l.Warn("probe failed", fields...)
}

// LogConfigLoad logs a config load event
func (l *Logger) LogConfigLoad(success bool, path string, err error) {
	if success {
		l.Info("config loaded", zap.String("path", path))
		return
	}
	l.Error("config load failed", zap.String("path", path), zap.Error(err))
}

// LogError logs a general error
func (l *Logger) LogError(component string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("component", component), zap.Error(err))
	l.Error("error occurred", fields...)
}

// ParseLevel parses a log level string. Unknown values mean info.
func ParseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
