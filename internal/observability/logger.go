package observability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until InitLogger runs so
// that packages and tests can log without setup.
var Logger = zap.NewNop()

// LoggerConfig selects the level, console encoding and file sink directory
// of the process logger. An empty Dir disables the file sinks.
type LoggerConfig struct {
	Level  string
	Format string
	Dir    string
}

const (
	combinedLogFile = "combined.log"
	errorLogFile    = "error.log"
	flushInterval   = time.Second
)

// sinkClosers flush and close the file sinks opened by InitLogger.
var sinkClosers []func() error

func InitLogger(cfg LoggerConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(cfg.Format), zapcore.Lock(os.Stdout), level),
	}

	if cfg.Dir != "" {
		fc, err := fileCores(cfg.Dir, level)
		if err != nil {
			return err
		}
		cores = append(cores, fc...)
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).
		With(zap.String("service", ServiceName()))

	return nil
}

func SyncLogger() {
	_ = Logger.Sync()

	for _, closeSink := range sinkClosers {
		_ = closeSink()
	}
	sinkClosers = nil
}

func consoleEncoder(format string) zapcore.Encoder {
	if format == "console" {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
		return zapcore.NewConsoleEncoder(encCfg)
	}

	return zapcore.NewJSONEncoder(fileEncoderConfig())
}

func fileEncoderConfig() zapcore.EncoderConfig {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encCfg
}

// fileCores returns two append-only JSON cores: combined.log receives every
// entry at or above level, error.log only errors. Writes are buffered so a
// request never waits on disk.
func fileCores(dir string, level zapcore.Level) ([]zapcore.Core, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	combined, err := openSink(filepath.Join(dir, combinedLogFile))
	if err != nil {
		return nil, err
	}

	errs, err := openSink(filepath.Join(dir, errorLogFile))
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewJSONEncoder(fileEncoderConfig())

	return []zapcore.Core{
		zapcore.NewCore(enc, combined, level),
		zapcore.NewCore(enc.Clone(), errs, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel && l >= level
		})),
	}, nil
}

func openSink(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	ws := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(f),
		FlushInterval: flushInterval,
	}

	sinkClosers = append(sinkClosers, func() error {
		if err := ws.Stop(); err != nil {
			return err
		}
		return f.Close()
	})

	return ws, nil
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// fields from the active OTel span in ctx.
//
// The ctx itself is attached as zap.Any("context", ctx). The otelzap bridge
// picks up any field holding a context.Context and passes it to
// log.Logger.Emit, which fills the native TraceID/SpanID of the exported
// OTLP record. The plain string fields keep stdout and file logs greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	return WithTrace(Logger, ctx)
}

// WithTrace is LoggerWithTrace for an explicit base logger.
func WithTrace(base *zap.Logger, ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return base
	}

	return base.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
