// 指示: miu200521358
// Package logging はログ出力の共通契約と既定ロガーを提供する。
package logging

import "sync/atomic"

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグレベル。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は情報レベル。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベル。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベル。
	LOG_LEVEL_ERROR
)

// String はログレベル名を返す。
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
		return "UNKNOWN"
	}
}

// ILogger はログ出力の契約を表す。
type ILogger interface {
	// Debug はデバッグログを出力する。
	Debug(format string, params ...any)
	// Info は情報ログを出力する。
	Info(format string, params ...any)
	// Warn は警告ログを出力する。
	Warn(format string, params ...any)
	// Error はエラーログを出力する。
	Error(format string, params ...any)
	// SetLevel は出力レベルを設定する。
	SetLevel(level LogLevel)
	// Level は出力レベルを返す。
	Level() LogLevel
}

// loggerHolder はインタフェース値をatomicに保持するための箱。
type loggerHolder struct {
	logger ILogger
}

// defaultLogger は既定ロガーを保持する。複数ワーカーから同時に参照される。
var defaultLogger atomic.Pointer[loggerHolder]

// DefaultLogger は既定ロガーを返す。未設定の場合はnilを返す。
func DefaultLogger() ILogger {
	holder := defaultLogger.Load()
	if holder == nil {
		return nil
	}
	return holder.logger
}

// SetDefaultLogger は既定ロガーを設定する。nilを渡すとログ出力を止める。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		defaultLogger.Store(nil)
		return
	}
	defaultLogger.Store(&loggerHolder{logger: logger})
}
