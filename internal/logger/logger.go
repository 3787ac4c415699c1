package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type Level = log.Level

const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

type ctxKey int

const requestIDKey ctxKey = iota

var std = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.InfoLevel,
	ReportTimestamp: true,
	Prefix:          "todo-app",
})

// SetLevel меняет минимальный уровень логирования
func SetLevel(level Level) {
	std.SetLevel(level)
}

// SetOutput перенаправляет вывод (используется в тестах)
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetFormatter выбирает формат вывода: text, json или logfmt
func SetFormatter(format string) {
	switch strings.ToLower(format) {
	case "json":
		std.SetFormatter(log.JSONFormatter)
	case "logfmt":
		std.SetFormatter(log.LogfmtFormatter)
	default:
		std.SetFormatter(log.TextFormatter)
	}
}

// SetReportTimestamp включает или выключает время в каждой строке
func SetReportTimestamp(on bool) {
	std.SetReportTimestamp(on)
}

// ParseLevel разбирает уровень из конфигурации; неизвестное значение = info
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// WithRequestID кладет идентификатор запроса в контекст
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID достает идентификатор запроса из контекста
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withContext(ctx context.Context, fields []any) []any {
	if id := RequestID(ctx); id != "" {
		return append([]any{"request_id", id}, fields...)
	}
	return fields
}

func Debug(ctx context.Context, msg string, fields ...any) {
	std.Debug(msg, withContext(ctx, fields)...)
}

func Info(ctx context.Context, msg string, fields ...any) {
	std.Info(msg, withContext(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...any) {
	std.Warn(msg, withContext(ctx, fields)...)
}

// Error пишет сообщение об ошибке; err может быть nil
func Error(ctx context.Context, err error, msg string, fields ...any) {
	if err != nil {
		fields = append(fields, "err", err)
	}
	std.Error(msg, withContext(ctx, fields)...)
}
