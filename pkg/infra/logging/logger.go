// 指示: miu200521358
// Package logging はプロセス共通のレベル付きロガーを提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG は詳細デバッグ出力レベル。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は通常情報出力レベル。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告出力レベル。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラー出力レベル。
	LOG_LEVEL_ERROR
)

// String はレベル名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "DEBUG"
	case LOG_LEVEL_INFO:
		return "INFO"
	case LOG_LEVEL_WARN:
		return "WARN"
	case LOG_LEVEL_ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// slogLevel はslogのレベルへ変換する。
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case LOG_LEVEL_WARN:
		return slog.LevelWarn
	case LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel は文字列からログレベルを解決する。
func ParseLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	case "", "info":
		return LOG_LEVEL_INFO, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "error":
		return LOG_LEVEL_ERROR, nil
	}
	return LOG_LEVEL_INFO, fmt.Errorf("ログレベルが不正です: %s", value)
}

// ILogger はロガーの出力契約を表す。
type ILogger interface {
	// Debug はDEBUGログを出力する。
	Debug(format string, params ...any)
	// Info はINFOログを出力する。
	Info(format string, params ...any)
	// Warn はWARNログを出力する。
	Warn(format string, params ...any)
	// Error はERRORログを出力する。
	Error(format string, params ...any)
	// SetLevel は出力レベルを設定する。
	SetLevel(level LogLevel)
	// Level は現在の出力レベルを返す。
	Level() LogLevel
	// MessageBuffer は出力済みメッセージの保持先を返す。
	MessageBuffer() *MessageBuffer
}

// MessageBuffer は出力済みメッセージ行を保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
}

// Lines は保持中の行を複製して返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Clear は保持中の行を破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

func (b *MessageBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Logger はslogを出力先とするILogger実装。
type Logger struct {
	mu     sync.RWMutex
	level  LogLevel
	vars   *slog.LevelVar
	logger *slog.Logger
	buffer *MessageBuffer
}

// NewLogger は出力先を指定してロガーを生成する。nil の場合は出力を破棄しバッファのみへ記録する。
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	vars := &slog.LevelVar{}
	vars.Set(slog.LevelInfo)
	return &Logger{
		level:  LOG_LEVEL_INFO,
		vars:   vars,
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: vars})),
		buffer: &MessageBuffer{},
	}
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.vars.Set(level.slogLevel())
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// MessageBuffer は出力済みメッセージの保持先を返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// Debug はDEBUGログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.write(LOG_LEVEL_DEBUG, format, params...)
}

// Info はINFOログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.write(LOG_LEVEL_INFO, format, params...)
}

// Warn はWARNログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.write(LOG_LEVEL_WARN, format, params...)
}

// Error はERRORログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.write(LOG_LEVEL_ERROR, format, params...)
}

// write はレベル判定後にslogとバッファへ出力する。
func (l *Logger) write(level LogLevel, format string, params ...any) {
	if level < l.Level() {
		return
	}
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	l.buffer.append(fmt.Sprintf("[%s] %s", level.String(), message))
	l.logger.Log(context.Background(), level.slogLevel(), message)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger ILogger = NewLogger(os.Stderr)
)

// DefaultLogger はプロセス共通ロガーを返す。
func DefaultLogger() ILogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger はプロセス共通ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
