package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	otellog "go.opentelemetry.io/otel/log"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// severity maps a LogLevel onto the OpenTelemetry log severity scale.
func (l LogLevel) severity() otellog.Severity {
	switch l {
	case LevelDebug:
		return otellog.SeverityDebug
	case LevelWarn:
		return otellog.SeverityWarn
	case LevelError:
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}

// structuredLogger is a JSON structured logger implementation. When an
// emitter is attached, every record is also forwarded to the OTel log
// pipeline so application logs reach the collector alongside traces and
// metrics.
type structuredLogger struct {
	level     LogLevel
	writer    io.Writer
	mu        sync.Mutex
	emitter   otellog.Logger
	component string
}

// NewLogger creates a new structured logger with the given level.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a new structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &structuredLogger{
		level:  ParseLogLevel(level),
		writer: w,
	}
}

// WithEmitter returns a copy of logger that also forwards records to emit.
// If logger is not a structured logger it is returned unchanged.
func WithEmitter(logger Logger, emit otellog.Logger) Logger {
	l, ok := logger.(*structuredLogger)
	if !ok {
		return logger
	}
	return &structuredLogger{
		level:     l.level,
		writer:    l.writer,
		emitter:   emit,
		component: l.component,
	}
}

// WithComponent returns a logger with the component name attached to every
// record.
func (l *structuredLogger) WithComponent(name string) Logger {
	return &structuredLogger{
		level:     l.level,
		writer:    l.writer,
		emitter:   l.emitter,
		component: name,
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelError, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, LevelDebug, msg, fields)
}

func (l *structuredLogger) log(ctx context.Context, level LogLevel, msg string, fields []Field) {
	// Filter by level
	if level < l.level {
		return
	}

	// Build log entry
	entry := make(map[string]any, len(fields)+4)

	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg
	if l.component != "" {
		entry["component"] = l.component
	}

	// Add fields (with credential redaction)
	for _, f := range fields {
		if isRedactedField(f.Key) {
			entry[f.Key] = "[REDACTED]"
		} else {
			entry[f.Key] = f.Value
		}
	}

	// Serialize and write
	l.mu.Lock()
	data, err := json.Marshal(entry)
	if err == nil {
		l.writer.Write(data)
		l.writer.Write([]byte("\n"))
	}
	l.mu.Unlock()

	if l.emitter != nil {
		l.emit(ctx, level, msg, fields)
	}
}

// emit forwards one record to the OTel log pipeline.
func (l *structuredLogger) emit(ctx context.Context, level LogLevel, msg string, fields []Field) {
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(level.severity())
	record.SetSeverityText(level.String())
	record.SetBody(otellog.StringValue(msg))
	if l.component != "" {
		record.AddAttributes(otellog.String("component", l.component))
	}
	for _, f := range fields {
		if isRedactedField(f.Key) {
			record.AddAttributes(otellog.String(f.Key, "[REDACTED]"))
			continue
		}
		record.AddAttributes(otellog.String(f.Key, fmt.Sprintf("%v", f.Value)))
	}
	l.emitter.Emit(ctx, record)
}

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	redactedKeys := map[string]bool{
		"password":   true,
		"secret":     true,
		"token":      true,
		"auth_token": true,
		"api_key":    true,
		"apiKey":     true,
		"credential": true,
	}
	return redactedKeys[key]
}
