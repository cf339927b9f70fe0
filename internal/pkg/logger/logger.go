// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextKey represents keys for context values
type ContextKey string

// Context keys for logging
const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string `json:"level"`
	Format         string `json:"format"` // json, text, pretty
	Output         string `json:"output"`
	AddSource      bool   `json:"add_source"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	Environment    string `json:"environment"`
}

// Logger wraps slog.Logger with context enrichment
type Logger struct {
	*slog.Logger
	config      *LogConfig
	contextKeys []ContextKey
}

var defaultLogger *Logger

// SetupLogger initializes the logger and installs it as the slog default
func SetupLogger(level string, format string) *Logger {
	config := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      true,
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	}

	logger := NewLogger(config)
	defaultLogger = logger
	slog.SetDefault(logger.Logger)

	return logger
}

// NewLogger creates a new logger from config
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{Level: "info", Format: "json", Output: "stdout"}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
	}

	writer := getWriter(config.Output)

	var handler slog.Handler
	switch config.Format {
	case "text", "pretty":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	handler = &ContextHandler{handler: handler, keys: defaultContextKeys()}

	base := slog.New(handler)
	if config.ServiceName != "" {
		base = base.With(
			slog.String("service", config.ServiceName),
			slog.String("version", config.ServiceVersion),
			slog.String("environment", config.Environment),
		)
	}

	return &Logger{
		Logger:      base,
		config:      config,
		contextKeys: defaultContextKeys(),
	}
}

// WithContext returns a logger enriched with request-scoped attributes
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx, l.contextKeys)
	if len(attrs) == 0 {
		return l.Logger
	}
	return l.Logger.With(attrs...)
}

// GetDefault returns the process-wide logger
func GetDefault() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// ContextHandler copies known context values onto every record
type ContextHandler struct {
	handler slog.Handler
	keys    []ContextKey
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, key := range h.keys {
		if v := ctx.Value(key); v != nil {
			record.AddAttrs(slog.Any(string(key), v))
		}
	}
	return h.handler.Handle(ctx, record)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs), keys: h.keys}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name), keys: h.keys}
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch output {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyTraceID,
		ContextKeyClientIP,
		ContextKeyMethod,
		ContextKeyPath,
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []any {
	var attrs []any
	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			attrs = append(attrs, slog.Any(string(key), v))
		}
	}
	return attrs
}
