// 指示: miu200521358
// Package mlogging は log/slog を使ったロガー実装を提供する。
package mlogging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/miu200521358/mu_fkrig/pkg/shared/base/logging"
)

const messageBufferLimit = 4096

// MessageBuffer は出力済みログ行を保持する。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
	tail  strings.Builder
}

// Write は io.Writer として受け取ったログを行単位で保持する。
func (b *MessageBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tail.Write(p)
	text := b.tail.String()
	parts := strings.Split(text, "\n")
	b.tail.Reset()
	b.tail.WriteString(parts[len(parts)-1])
	for _, line := range parts[:len(parts)-1] {
		b.lines = append(b.lines, line)
	}
	if over := len(b.lines) - messageBufferLimit; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	return len(p), nil
}

// Lines は保持しているログ行の複製を返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return lines
}

// Clear は保持しているログ行を破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	b.tail.Reset()
}

// Logger は slog を下敷きにした ILogger 実装。
type Logger struct {
	slogger *slog.Logger
	level   *slog.LevelVar
	buffer  *MessageBuffer
}

// NewLogger はロガーを生成する。out がnilの場合はメッセージバッファにのみ出力する。
func NewLogger(out io.Writer) *Logger {
	buffer := &MessageBuffer{}
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)

	var writer io.Writer = buffer
	if out != nil {
		writer = io.MultiWriter(out, buffer)
	}
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	return &Logger{
		slogger: slog.New(handler),
		level:   level,
		buffer:  buffer,
	}
}

// MessageBuffer はログ保持バッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// Slog は内部の slog.Logger を返す。
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.level.Set(toSlogLevel(level))
}

// Level は出力レベルを返す。
func (l *Logger) Level() logging.LogLevel {
	switch current := l.level.Level(); {
	case current <= slog.LevelDebug:
		return logging.LOG_LEVEL_DEBUG
	case current <= slog.LevelInfo:
		return logging.LOG_LEVEL_INFO
	case current <= slog.LevelWarn:
		return logging.LOG_LEVEL_WARN
	default:
		return logging.LOG_LEVEL_ERROR
	}
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(slog.LevelDebug, format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(slog.LevelInfo, format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(slog.LevelWarn, format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(slog.LevelError, format, params...)
}

// log は有効なレベルのときだけ書式化して出力する。
func (l *Logger) log(level slog.Level, format string, params ...any) {
	ctx := context.Background()
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	l.slogger.Log(ctx, level, fmt.Sprintf(format, params...))
}

// toSlogLevel はログレベルを slog のレベルへ変換する。
func toSlogLevel(level logging.LogLevel) slog.Level {
	switch level {
	case logging.LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case logging.LOG_LEVEL_WARN:
		return slog.LevelWarn
	case logging.LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
