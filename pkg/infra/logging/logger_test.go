// 指示: miu200521358
package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)
	logger.SetLevel(LOG_LEVEL_INFO)

	logger.Debug("詳細: %d", 1)
	logger.Info("情報: %s", "ok")
	logger.Warn("警告")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 2 {
		t.Fatalf("line count mismatch: got=%d want=%d (%v)", len(lines), 2, lines)
	}
	if lines[0] != "[INFO] 情報: ok" {
		t.Fatalf("info line mismatch: got=%s", lines[0])
	}
	if !strings.Contains(out.String(), "情報: ok") {
		t.Fatalf("slog output missing message: %s", out.String())
	}
	if strings.Contains(out.String(), "詳細") {
		t.Fatalf("debug message should be filtered: %s", out.String())
	}
}

func TestLoggerMessageBufferClear(t *testing.T) {
	logger := NewLogger(nil)
	logger.SetLevel(LOG_LEVEL_DEBUG)
	logger.Debug("a")
	logger.MessageBuffer().Clear()
	if len(logger.MessageBuffer().Lines()) != 0 {
		t.Fatalf("buffer should be empty after clear")
	}
}

func TestSetDefaultLoggerSwapsInstance(t *testing.T) {
	logger := NewLogger(nil)
	prevLogger := DefaultLogger()
	SetDefaultLogger(logger)
	t.Cleanup(func() {
		SetDefaultLogger(prevLogger)
	})

	DefaultLogger().Warn("差し替え確認")
	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 || lines[0] != "[WARN] 差し替え確認" {
		t.Fatalf("default logger was not swapped: %v", lines)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" DEBUG ")
	if err != nil || level != LOG_LEVEL_DEBUG {
		t.Fatalf("parse debug failed: level=%v err=%v", level, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
