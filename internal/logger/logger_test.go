package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetReportTimestamp(false)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetReportTimestamp(true)
		SetLevel(LevelInfo)
		SetFormatter("text")
	})
	return &buf
}

func TestLogger(t *testing.T) {
	buf := captureOutput(t)
	ctx := context.Background()

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		Info(ctx, "Тестовое сообщение")
		if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "Тестовое сообщение") {
			t.Errorf("Неверный формат лога Info: %s", buf.String())
		}
	})

	t.Run("Error with error", func(t *testing.T) {
		buf.Reset()
		Error(ctx, errors.New("тестовая ошибка"), "Дополнительное сообщение")
		out := buf.String()
		if !strings.Contains(out, "Дополнительное сообщение") || !strings.Contains(out, "тестовая ошибка") {
			t.Errorf("Неверный формат лога Error: %s", out)
		}
	})

	t.Run("Error without error", func(t *testing.T) {
		buf.Reset()
		Error(ctx, nil, "Сообщение без ошибки")
		out := buf.String()
		if !strings.Contains(out, "Сообщение без ошибки") || strings.Contains(out, "err=") {
			t.Errorf("Неверный формат лога Error без ошибки: %s", out)
		}
	})

	t.Run("Debug with level", func(t *testing.T) {
		buf.Reset()
		SetLevel(LevelDebug)
		defer SetLevel(LevelInfo)

		Debug(ctx, "Тестовое debug-сообщение")
		if !strings.Contains(buf.String(), "Тестовое debug-сообщение") {
			t.Errorf("Неверный формат лога Debug: %s", buf.String())
		}
	})

	t.Run("Debug without level", func(t *testing.T) {
		buf.Reset()
		SetLevel(LevelInfo)

		Debug(ctx, "Это не должно логироваться")
		if buf.String() != "" {
			t.Errorf("Debug сообщение не должно логироваться при LevelInfo: %s", buf.String())
		}
	})
}

func TestLoggerWithFields(t *testing.T) {
	buf := captureOutput(t)

	t.Run("Info with fields", func(t *testing.T) {
		buf.Reset()
		Info(context.Background(), "Сообщение с полями", "key1", "value1", "key2", 42)
		output := buf.String()
		if !strings.Contains(output, "Сообщение с полями") ||
			!strings.Contains(output, "key1") ||
			!strings.Contains(output, "value1") ||
			!strings.Contains(output, "42") {
			t.Errorf("Неверный формат лога с полями: %s", output)
		}
	})

	t.Run("request id from context", func(t *testing.T) {
		buf.Reset()
		ctx := WithRequestID(context.Background(), "req-123")
		Warn(ctx, "Запрос")
		if !strings.Contains(buf.String(), "request_id") || !strings.Contains(buf.String(), "req-123") {
			t.Errorf("В логе нет request_id: %s", buf.String())
		}
	})

	t.Run("json formatter", func(t *testing.T) {
		buf.Reset()
		SetFormatter("json")
		defer SetFormatter("text")
		Info(context.Background(), "json", "k", "v")
		if !strings.Contains(buf.String(), `"k":"v"`) {
			t.Errorf("Ожидался JSON: %s", buf.String())
		}
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDEmpty(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Errorf("RequestID = %q, want empty", id)
	}
}
