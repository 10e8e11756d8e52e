// Package logging builds the zap loggers used by the dynapi command.
package logging

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02 15:04:05.000"

type config struct {
	level    string
	encoding string
	filename string
	caller   bool
	service  string
	output   io.Writer
}

// Option configures New
type Option func(*config)

// WithLevel sets the minimum level: debug, info, warn or error
func WithLevel(level string) Option {
	return func(c *config) { c.level = level }
}

// WithEncoding selects console or json output
func WithEncoding(encoding string) Option {
	return func(c *config) { c.encoding = encoding }
}

// WithFilename also writes json logs to a rotated file
func WithFilename(filename string) Option {
	return func(c *config) { c.filename = filename }
}

// WithCaller records the calling file and line
func WithCaller(enabled bool) Option {
	return func(c *config) { c.caller = enabled }
}

// WithService adds a service field to every entry
func WithService(name string) Option {
	return func(c *config) { c.service = name }
}

// WithOutput replaces stderr as the console destination
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// New builds a logger and returns it with a function flushing its buffers
func New(opts ...Option) (*zap.Logger, func(), error) {
	cfg := config{level: "info", encoding: "console", output: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.level)); err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	encoderConfig.StacktraceKey = ""

	var console zapcore.Encoder
	if cfg.encoding == "json" {
		console = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		console = zapcore.NewConsoleEncoder(encoderConfig)
	}
	cores := []zapcore.Core{zapcore.NewCore(console, zapcore.AddSync(cfg.output), level)}

	if cfg.filename != "" {
		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.TimeKey = "time"
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.filename,
				MaxSize:    10, // MB
				MaxBackups: 7,
				MaxAge:     30, // days
				Compress:   true,
			}),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if cfg.caller {
		logger = logger.WithOptions(zap.AddCaller())
	}
	if cfg.service != "" {
		logger = logger.With(zap.String("service", cfg.service))
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// Elapsed is a zap field holding the time since start
func Elapsed(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
